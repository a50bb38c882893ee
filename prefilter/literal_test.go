package prefilter

import (
	"testing"

	"github.com/coregx/bregex/bytecode"
)

func TestLiteral_Next(t *testing.T) {
	lit, err := NewLiteral([][]byte{[]byte("hello"), []byte("world")})
	if err != nil {
		t.Fatal(err)
	}
	view := []byte("say hello to the world")

	tests := []struct {
		at   int
		want int
	}{
		{0, 4},
		{4, 4},
		{5, 17},
		{18, -1},
		{len(view), -1},
		{len(view) + 1, -1},
	}
	for _, tt := range tests {
		if got := lit.Next(view, tt.at); got != tt.want {
			t.Errorf("Next(view, %d) = %d, want %d", tt.at, got, tt.want)
		}
	}

	if !lit.Contains(view) {
		t.Error("Contains() = false")
	}
	if lit.Contains([]byte("nothing here")) {
		t.Error("Contains() = true for a view without literals")
	}
	if len(lit.Literals()) != 2 || lit.HeapBytes() <= 0 {
		t.Error("accessors report an empty automaton")
	}
}

func TestLiteral_Empty(t *testing.T) {
	lit, err := NewLiteral(nil)
	if err != nil || lit != nil {
		t.Errorf("NewLiteral(nil) = %v, %v; want nil, nil", lit, err)
	}
}

func TestLiteral_FromProgram(t *testing.T) {
	p, err := bytecode.Build(`(?:foo|bar)\d`, bytecode.Options{})
	if err != nil {
		t.Fatal(err)
	}
	lit, err := NewLiteral(p.Literals)
	if err != nil {
		t.Fatal(err)
	}
	if got := lit.Next([]byte("xxbar1"), 1); got != 2 {
		t.Errorf("Next() = %d, want 2", got)
	}
}
