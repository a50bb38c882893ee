package prefilter_test

import (
	"fmt"

	"github.com/coregx/bregex/bytecode"
	"github.com/coregx/bregex/prefilter"
)

// ExampleNewRanges rejects positions whose character cannot start a match.
func ExampleNewRanges() {
	p, err := bytecode.Build(`[0-9]+px`, bytecode.Options{})
	if err != nil {
		panic(err)
	}
	ranges := prefilter.NewRanges(p.Hints)

	view := []byte("w=12px")
	for pos := range view {
		fmt.Print(ranges.Accept(view, pos, false), " ")
	}
	fmt.Println()
	// Output: false false true true false false
}

// ExampleNewLiteral finds the next position a required literal occurs at.
func ExampleNewLiteral() {
	p, err := bytecode.Build(`(hello|world)\d+`, bytecode.Options{})
	if err != nil {
		panic(err)
	}
	lit, err := prefilter.NewLiteral(p.Literals)
	if err != nil {
		panic(err)
	}

	view := []byte("say hello42 to the world")
	fmt.Println(lit.Next(view, 0))
	fmt.Println(lit.Next(view, 5))
	fmt.Println(lit.Next(view, 20))
	// Output:
	// 4
	// 19
	// -1
}
