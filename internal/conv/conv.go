// Package conv provides checked conversions between program words and the
// integer types the compiler and decoder work with.
//
// Program words are uint64. Signed operands (jump offsets, "unbounded" and
// "no checkpoint" markers) are stored as their two's complement bit pattern.
// The conversions panic when a value cannot be represented, since that means
// the program is corrupt or the pattern exceeds internal limits.
package conv

import (
	"math"
	"unicode/utf8"
)

// IntToWord stores a signed operand in a program word.
//
//go:inline
func IntToWord(n int) uint64 {
	return uint64(int64(n))
}

// WordToInt reads a signed operand back from a program word.
// Panics if the value does not fit in int on this platform.
//
//go:inline
func WordToInt(w uint64) int {
	v := int64(w)
	if v < math.MinInt || v > math.MaxInt {
		panic("integer overflow: program word out of int range")
	}
	return int(v)
}

// WordToUint reads an unsigned operand (counts, group and counter indexes).
// Panics if the value does not fit in a non-negative int.
//
//go:inline
func WordToUint(w uint64) int {
	if w > math.MaxInt {
		panic("integer overflow: program word out of int range")
	}
	return int(w)
}

// RuneToWord stores a rune operand in a program word.
// Panics on negative runes.
//
//go:inline
func RuneToWord(r rune) uint64 {
	if r < 0 {
		panic("integer overflow: negative rune")
	}
	return uint64(r)
}

// WordToRune reads a rune operand back from a program word.
// Panics if the value is above utf8.MaxRune.
//
//go:inline
func WordToRune(w uint64) rune {
	if w > utf8.MaxRune {
		panic("integer overflow: program word out of rune range")
	}
	return rune(w)
}
