// Package prefilter provides cheap checks that reject start positions before
// the backtracking VM runs.
//
// Two filters are derived from a compiled program:
//   - Ranges: the sorted set of characters a match can start with. The
//     current character is binary searched, with a case-folded variant for
//     insensitive matching.
//   - Literal: strings of which every match contains at least one, searched
//     with an Aho-Corasick automaton. When none occurs at or after a position,
//     no later position in the view can match either.
//
// Ranges is wrapped in a Tracker, which retires it for the rest of a call when
// it rejects too few positions to pay for itself.
//
// Example usage:
//
//	p, _ := bytecode.Build(`(hello|world)\d+`, bytecode.Options{})
//	ranges := prefilter.NewRanges(p.Hints)
//	lit, _ := prefilter.NewLiteral(p.Literals)
//
//	view := []byte("say hello42")
//	ranges.Accept(view, 0, false) // false: 's' cannot start a match
//	lit.Next(view, 0)             // 4: "hello" starts there
package prefilter

// Filter decides whether a match may start at a position of a view.
//
// Accept must never return false for a position where a match can start.
// It may return true for positions that turn out not to match; the VM
// verifies them.
type Filter interface {
	// Accept reports whether a match may start at view[pos:].
	// insensitive selects case-folded comparison.
	Accept(view []byte, pos int, insensitive bool) bool

	// HeapBytes returns the number of bytes of heap memory used by this filter.
	HeapBytes() int
}
