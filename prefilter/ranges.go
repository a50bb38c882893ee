package prefilter

import (
	"unicode/utf8"

	"github.com/coregx/bregex/bytecode"
)

// Ranges accepts positions whose character falls in the program's starting
// ranges.
type Ranges struct {
	sensitive   []bytecode.RuneRange
	insensitive []bytecode.RuneRange
	folded      bool // insensitive is usable
}

// NewRanges builds the filter from optimization hints.
// Returns nil if the hints carry no starting ranges.
func NewRanges(h bytecode.Hints) *Ranges {
	if len(h.StartingRanges) == 0 {
		return nil
	}
	return &Ranges{
		sensitive:   h.StartingRanges,
		insensitive: h.StartingRangesInsensitive,
		folded:      h.InsensitiveRanges,
	}
}

// Accept implements Filter. The end of the view never starts a match, since
// every match consumes one of the ranges first. Without a folded variant,
// insensitive checks accept everything.
func (r *Ranges) Accept(view []byte, pos int, insensitive bool) bool {
	if pos >= len(view) {
		return false
	}
	ranges := r.sensitive
	if insensitive {
		if !r.folded {
			return true
		}
		ranges = r.insensitive
	}

	c := rune(view[pos])
	if c >= utf8.RuneSelf {
		c, _ = utf8.DecodeRune(view[pos:])
	}
	return search(ranges, c)
}

// search binary searches sorted, disjoint ranges.
func search(ranges []bytecode.RuneRange, c rune) bool {
	lo, hi := 0, len(ranges)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		switch rr := ranges[mid]; {
		case c < rr.Lo:
			hi = mid
		case c > rr.Hi:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}

// HeapBytes implements Filter.
func (r *Ranges) HeapBytes() int {
	return (len(r.sensitive) + len(r.insensitive)) * 8
}
