package prefilter

import (
	"github.com/coregx/ahocorasick"
)

// Literal finds the next occurrence of any required literal using an
// Aho-Corasick automaton.
type Literal struct {
	auto     *ahocorasick.Automaton
	literals [][]byte
	size     int
}

// NewLiteral builds the automaton for lits.
// Returns nil without error when lits is empty.
func NewLiteral(lits [][]byte) (*Literal, error) {
	if len(lits) == 0 {
		return nil, nil
	}
	builder := ahocorasick.NewBuilder()
	size := 0
	for _, lit := range lits {
		builder.AddPattern(lit)
		size += len(lit)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Literal{auto: auto, literals: lits, size: size}, nil
}

// Next returns the start of the first literal occurrence at or after at, or
// -1 if there is none.
func (l *Literal) Next(view []byte, at int) int {
	if at >= len(view) {
		return -1
	}
	m := l.auto.Find(view, at)
	if m == nil {
		return -1
	}
	return m.Start
}

// Contains reports whether any literal occurs in view.
func (l *Literal) Contains(view []byte) bool {
	return l.auto.IsMatch(view)
}

// Literals returns the literals the automaton was built from.
func (l *Literal) Literals() [][]byte {
	return l.literals
}

// HeapBytes returns an estimate of the automaton's footprint.
func (l *Literal) HeapBytes() int {
	return l.size * 16
}
