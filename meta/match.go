package meta

import "github.com/coregx/bregex/bytecode"

// Match is one matched span. View is a sub-slice of the scanned view, Column
// its offset inside that view and GlobalOffset its offset in the whole
// subject, counting one separator byte between views.
//
// Example:
//
//	res := m.Match([][]byte{[]byte("abc"), []byte("xay")}, bytecode.Global, nil)
//	res.Matches[1].Line         // 1
//	res.Matches[1].Column       // 1
//	res.Matches[1].GlobalOffset // 5
type Match = bytecode.Match

// Result is the outcome of one match call.
//
// Capture spans are stored in one flat buffer of CaptureGroupsCount entries
// per match; CaptureGroupMatches holds one window into that buffer per match.
// Groups that did not participate hold bytecode.Unset().
type Result struct {
	Success bool
	Count   int

	// Matches holds the whole-match span of each match, in order.
	Matches []Match

	FlatCaptureGroupMatches []Match
	CaptureGroupMatches     [][]Match

	// Operations is the number of VM instructions executed, including
	// those of attempts that failed.
	Operations int

	CaptureGroupsCount      int
	NamedCaptureGroupsCount int
}

// Captures returns the capture spans of match i, group 1 at index 0.
func (r *Result) Captures(i int) []Match {
	if i < 0 || i >= len(r.CaptureGroupMatches) {
		return nil
	}
	return r.CaptureGroupMatches[i]
}

// Cursor is the resume position of a stateful handle: the global offset just
// past the last match. The zero value starts at the beginning of the subject.
//
// A Cursor is owned by one handle and is not safe for concurrent use.
type Cursor struct {
	offset int
}

// Offset returns the stored position.
func (c *Cursor) Offset() int {
	return c.offset
}

// Set moves the cursor. Negative offsets are treated as 0.
func (c *Cursor) Set(offset int) {
	c.offset = max(offset, 0)
}

// Reset moves the cursor back to the start of the subject.
func (c *Cursor) Reset() {
	c.offset = 0
}
