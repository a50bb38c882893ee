package meta

import (
	"fmt"
	"unicode/utf8"

	"github.com/coregx/bregex/bytecode"
)

// Request describes one match call.
type Request struct {
	// Views are the parts of the subject to scan, in order. Views are assumed
	// to be separated by one line break in the subject.
	Views [][]byte

	// Flags are ORed with the flags the pattern was compiled with.
	Flags bytecode.Flags

	// Cursor is read and updated by stateful calls. nil uses a throwaway cursor.
	Cursor *Cursor

	// ForcedFailures makes that many instructions fail without running,
	// counted across every attempt of the call.
	ForcedFailures int

	// Limit ends the call once that many matches are recorded. 0 means no limit.
	Limit int
}

// Matcher runs a Pattern over views. A Matcher holds no per-call state and is
// safe for concurrent use, except that calls sharing one Cursor must be
// serialized by the caller.
type Matcher struct {
	pattern *Pattern
}

// NewMatcher creates a matcher for p.
func NewMatcher(p *Pattern) *Matcher {
	return &Matcher{pattern: p}
}

// Pattern returns the pattern the matcher runs.
func (m *Matcher) Pattern() *Pattern {
	return m.pattern
}

// Match runs the pattern over views with the given call flags.
func (m *Matcher) Match(views [][]byte, flags bytecode.Flags, cur *Cursor) *Result {
	return m.Run(Request{Views: views, Flags: flags, Cursor: cur})
}

// Run executes one match call.
//
// Every position of every view is a candidate start, subject to the search
// policy derived from the effective flags:
//   - Global or Multiline keep scanning after a match, unless Sticky is set
//   - Sticky tries only the first position
//   - SingleMatch stops the whole call after one match, Limit after that many
//   - InternalStateful resumes at the cursor and stores the end of the last
//     match back into it
//
// A zero-length match resumes one character after its position; any other
// match resumes at its end.
func (m *Matcher) Run(req Request) *Result {
	p := m.pattern
	prog := p.prog
	flags := prog.Options.Flags | req.Flags

	cur := req.Cursor
	if cur == nil {
		cur = &Cursor{}
	}
	if !prog.Options.Flags.Has(bytecode.InternalStateful) {
		cur.Reset()
	}

	s := p.states.get()
	defer p.states.put(s)
	s.reset(flags)
	in := &s.input
	in.FailCounter = req.ForcedFailures
	st := s.state

	res := &Result{
		CaptureGroupsCount:      prog.CaptureGroups,
		NamedCaptureGroupsCount: prog.NamedCaptureGroups,
	}

	stateful := flags.Has(bytecode.InternalStateful)
	start, first := 0, 0
	if stateful {
		start = cur.Offset()
		for first < len(req.Views)-1 && start >= len(req.Views[first])+1 {
			start -= len(req.Views[first]) + 1
			in.GlobalOffset += len(req.Views[first]) + 1
			in.Line++
			first++
		}
	}

	sticky := flags.Has(bytecode.Sticky)
	continueSearch := (flags.Has(bytecode.Global) || flags.Has(bytecode.Multiline)) && !sticky
	singleMatchOnly := flags.Has(bytecode.SingleMatch)
	onlyStartOfLine := prog.Hints.OnlyStartOfLine && !flags.Has(bytecode.Multiline)
	insensitive := flags.Has(bytecode.Insensitive)
	skipViewEnd := flags.Has(bytecode.Multiline) && prog.Options.Dialect.SplitsLines()
	notBOL := flags.Has(bytecode.MatchNotBeginOfLine)
	notEOL := flags.Has(bytecode.MatchNotEndOfLine)
	literal := p.literal
	if insensitive {
		literal = nil
	}
	minLength := prog.MinLength

	operations := 0
	lastEnd := -1
	full := func() bool {
		return req.Limit > 0 && res.Count >= req.Limit
	}

	record := func(view []byte, from int) {
		if st.Position < from || st.Position > len(view) {
			panic(fmt.Sprintf("meta: match span [%d:%d] outside view of length %d", from, st.Position, len(view)))
		}
		res.Matches = append(res.Matches, Match{
			View:         view[from:st.Position],
			Line:         in.Line,
			Column:       from,
			GlobalOffset: in.GlobalOffset + from,
		})
		res.FlatCaptureGroupMatches = append(res.FlatCaptureGroupMatches, st.Captures...)
		res.Count++
		lastEnd = in.GlobalOffset + st.Position
	}

views:
	for vi := first; vi < len(req.Views); vi++ {
		view := req.Views[vi]
		viewLen := len(view)
		in.View = view
		pos := 0
		if vi == first {
			pos = start
		}
		succeeded := false

		// A pattern that can match the empty string gets one attempt at the
		// end of the view before the scan, kept only if it consumed nothing.
		if pos == viewLen && minLength == 0 {
			scratch := operations
			in.MatchIndex = res.Count
			in.Column = pos
			st.Reset(pos)
			if s.machine.Execute(prog, in, st, &scratch) && st.Position <= pos {
				operations = scratch
				if res.Count == 0 {
					record(view, pos)
					succeeded = true
					if pos == 0 && viewLen == 0 {
						pos++
					}
					if full() {
						break views
					}
				}
			}
		}

		literalAt := -1
	positions:
		for pos <= viewLen {
			if pos == viewLen && skipViewEnd {
				break
			}
			if minLength > viewLen-pos {
				break
			}

			matched := false
			if s.ranges == nil || s.ranges.Accept(view, pos, insensitive) {
				if literal != nil && pos > literalAt {
					if literalAt = literal.Next(view, pos); literalAt < 0 {
						break positions
					}
				}
				in.MatchIndex = res.Count
				in.Column = pos
				st.Reset(pos)
				matched = s.machine.Execute(prog, in, st, &operations)
			}

			if matched {
				succeeded = true
				end := st.Position
				if (notEOL && end == viewLen) || (notBOL && pos == 0) {
					if !continueSearch {
						break
					}
				} else {
					record(view, pos)
					if !continueSearch {
						break
					}
					if singleMatchOnly || full() {
						break views
					}
					if end > pos {
						pos = end
						continue
					}
				}
			}

			if sticky || onlyStartOfLine {
				break
			}
			pos = nextPosition(view, pos)
		}

		in.Line++
		in.GlobalOffset += viewLen + 1

		if succeeded && !continueSearch {
			break
		}
	}

	if stateful {
		cur.Set(max(lastEnd, 0))
	}

	res.Success = res.Count > 0
	res.Operations = operations
	if res.Count > 0 {
		g := prog.CaptureGroups
		res.CaptureGroupMatches = make([][]Match, res.Count)
		for i := range res.CaptureGroupMatches {
			res.CaptureGroupMatches[i] = res.FlatCaptureGroupMatches[i*g : (i+1)*g : (i+1)*g]
		}
	}
	return res
}

// nextPosition returns the start of the character after pos.
func nextPosition(view []byte, pos int) int {
	if pos >= len(view) || view[pos] < utf8.RuneSelf {
		return pos + 1
	}
	_, width := utf8.DecodeRune(view[pos:])
	return pos + width
}
