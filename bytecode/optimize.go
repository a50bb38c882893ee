package bytecode

import (
	"fmt"
	"unicode"
)

// Optimize flattens p into its opcode table and derives the matching hints.
// It runs once, before the program is shared. Calling it again is a no-op.
func Optimize(p *Program) error {
	if p.Flattened() {
		return nil
	}
	if err := p.flatten(); err != nil {
		return &CompileError{Pattern: p.Source, Err: fmt.Errorf("%w: %v", ErrInvalidPattern, err)}
	}

	var h Hints
	if ranges, ok := startingRanges(p); ok && len(ranges) > 0 {
		h.StartingRanges = ranges
		h.StartingRangesInsensitive, h.InsensitiveRanges = foldClosure(ranges, maxFoldRunes)
	}
	h.OnlyStartOfLine = onlyStartOfLine(p)
	p.Hints = h
	return nil
}

// startingRanges walks every path from the first instruction up to its first
// consuming instruction and collects what that instruction accepts. ok is
// false when some path can start with any character, reaches Exit without
// consuming, or passes through a loop back edge.
func startingRanges(p *Program) (ranges []RuneRange, ok bool) {
	visited := make(map[int]bool)
	var walk func(ip int) bool
	walk = func(ip int) bool {
		if visited[ip] {
			return true
		}
		visited[ip] = true

		op := p.Op(ip)
		next := ip + op.Size()
		switch o := op.(type) {
		case opChar:
			ranges = append(ranges, RuneRange{o.r, o.r})
			if o.fold {
				for f := unicode.SimpleFold(o.r); f != o.r; f = unicode.SimpleFold(f) {
					ranges = append(ranges, RuneRange{f, f})
				}
			}
			return true
		case opCompare:
			ranges = append(ranges, o.ranges...)
			return true
		case opFail:
			return true
		case opJump:
			return walk(next + o.offset)
		case opFork:
			return walk(next) && walk(next+o.offset)
		case opSaveLeft, opSaveRight, opCheckBegin, opCheckEnd, opCheckBoundary,
			opCheckpoint, opRepeatReset:
			return walk(next)
		}
		return false
	}
	if !walk(0) {
		return nil, false
	}
	return normalizeRanges(ranges), true
}

// onlyStartOfLine reports whether every path starts by asserting the
// beginning of the view.
func onlyStartOfLine(p *Program) bool {
	for ip := 0; ip < p.Len(); {
		switch o := p.Op(ip).(type) {
		case opSaveLeft, opCheckpoint, opRepeatReset:
			ip += o.Size()
		case opCheckBegin:
			return o.mode == AnchorText
		default:
			return false
		}
	}
	return false
}
