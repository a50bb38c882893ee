package bytecode

import (
	"regexp/syntax"
	"sort"
	"unicode"
	"unicode/utf8"
)

const (
	// maxMinLength caps the computed minimum length so counted repetitions
	// of long literals cannot overflow.
	maxMinLength = 1 << 24

	// maxLiterals bounds the required literal set handed to the prefilter.
	maxLiterals = 64

	// maxFoldRunes bounds how many runes a fold closure may enumerate.
	maxFoldRunes = 4096
)

// minLength returns a lower bound on the length of any match of re. It
// counts runes, and every rune is at least one byte.
func minLength(re *syntax.Regexp) int {
	n := 0
	switch re.Op {
	case syntax.OpLiteral:
		n = len(re.Rune)
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		n = 1
	case syntax.OpCapture, syntax.OpPlus:
		n = minLength(re.Sub[0])
	case syntax.OpRepeat:
		n = re.Min * minLength(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			n += minLength(sub)
			if n > maxMinLength {
				break
			}
		}
	case syntax.OpAlternate:
		for i, sub := range re.Sub {
			if m := minLength(sub); i == 0 || m < n {
				n = m
			}
		}
	}
	if n > maxMinLength {
		return maxMinLength
	}
	return n
}

// nullable reports whether re can match the empty string.
func nullable(re *syntax.Regexp) bool {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpStar, syntax.OpQuest,
		syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return true
	case syntax.OpLiteral:
		return len(re.Rune) == 0
	case syntax.OpCapture, syntax.OpPlus:
		return nullable(re.Sub[0])
	case syntax.OpRepeat:
		return re.Min == 0 || nullable(re.Sub[0])
	case syntax.OpConcat:
		for _, sub := range re.Sub {
			if !nullable(sub) {
				return false
			}
		}
		return true
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			if nullable(sub) {
				return true
			}
		}
		return false
	}
	return false
}

// singleCharSet returns the runes a one-character expression can consume.
// '.' is treated as matching '\n' too, since SingleLine can be set per call.
func singleCharSet(re *syntax.Regexp) ([]RuneRange, bool) {
	switch re.Op {
	case syntax.OpLiteral:
		if len(re.Rune) != 1 {
			return nil, false
		}
		return []RuneRange{{re.Rune[0], re.Rune[0]}}, true
	case syntax.OpCharClass:
		return pairsToRanges(re.Rune), true
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return []RuneRange{{0, unicode.MaxRune}}, true
	}
	return nil, false
}

// firstSet returns the runes a match of re can start with. ok is false when
// the set cannot be determined.
func firstSet(re *syntax.Regexp) (set []RuneRange, ok bool) {
	switch re.Op {
	case syntax.OpEmptyMatch, syntax.OpNoMatch,
		syntax.OpBeginLine, syntax.OpEndLine, syntax.OpBeginText, syntax.OpEndText,
		syntax.OpWordBoundary, syntax.OpNoWordBoundary:
		return nil, true
	case syntax.OpLiteral:
		if len(re.Rune) == 0 {
			return nil, true
		}
		return []RuneRange{{re.Rune[0], re.Rune[0]}}, true
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return singleCharSet(re)
	case syntax.OpCapture, syntax.OpStar, syntax.OpPlus, syntax.OpQuest:
		return firstSet(re.Sub[0])
	case syntax.OpRepeat:
		if re.Max == 0 {
			return nil, true
		}
		return firstSet(re.Sub[0])
	case syntax.OpConcat:
		return sequenceFirstSet(re.Sub)
	case syntax.OpAlternate:
		for _, sub := range re.Sub {
			s, ok := firstSet(sub)
			if !ok {
				return nil, false
			}
			set = append(set, s...)
		}
		return normalizeRanges(set), true
	}
	return nil, false
}

// sequenceFirstSet returns the first set of the concatenation of subs.
func sequenceFirstSet(subs []*syntax.Regexp) ([]RuneRange, bool) {
	var set []RuneRange
	for _, sub := range subs {
		s, ok := firstSet(sub)
		if !ok {
			return nil, false
		}
		set = append(set, s...)
		if !nullable(sub) {
			break
		}
	}
	return normalizeRanges(set), true
}

// canLoopAtomically reports whether a greedy loop over body, followed by
// rest, can keep only its most recent saved exit state. That holds when body
// consumes exactly one character and no match of rest can start with a
// character body accepts: every older exit position is followed by such a
// character, so resuming there cannot succeed.
func canLoopAtomically(body *syntax.Regexp, rest []*syntax.Regexp) bool {
	bodySet, ok := singleCharSet(body)
	if !ok {
		return false
	}
	restNullable := true
	for _, sub := range rest {
		if !nullable(sub) {
			restNullable = false
			break
		}
	}
	if restNullable {
		return false
	}
	restSet, ok := sequenceFirstSet(rest)
	if !ok {
		return false
	}
	return disjointFolded(bodySet, restSet)
}

// disjointFolded reports whether no rune of a is equal, under Unicode simple
// case folding, to a rune of b. It answers false when both sets are too
// large to enumerate.
func disjointFolded(a, b []RuneRange) bool {
	if runeCount(b) < runeCount(a) {
		a, b = b, a
	}
	if runeCount(a) > maxFoldRunes {
		return false
	}
	for _, rr := range a {
		for r := rr.Lo; r <= rr.Hi; r++ {
			if containsRune(b, r) {
				return false
			}
			for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
				if containsRune(b, f) {
					return false
				}
			}
		}
	}
	return true
}

// foldClosure returns ranges extended with every simple case fold of every
// rune they contain. ok is false when ranges hold more than limit runes.
func foldClosure(ranges []RuneRange, limit int) ([]RuneRange, bool) {
	if runeCount(ranges) > limit {
		return nil, false
	}
	out := append([]RuneRange(nil), ranges...)
	for _, rr := range ranges {
		for r := rr.Lo; r <= rr.Hi; r++ {
			for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
				out = append(out, RuneRange{f, f})
			}
		}
	}
	return normalizeRanges(out), true
}

func runeCount(ranges []RuneRange) int {
	n := 0
	for _, rr := range ranges {
		n += int(rr.Hi-rr.Lo) + 1
	}
	return n
}

func pairsToRanges(pairs []rune) []RuneRange {
	ranges := make([]RuneRange, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		ranges = append(ranges, RuneRange{pairs[i], pairs[i+1]})
	}
	return ranges
}

// normalizeRanges sorts ranges and merges overlapping or adjacent ones.
func normalizeRanges(ranges []RuneRange) []RuneRange {
	if len(ranges) < 2 {
		return ranges
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Lo < ranges[j].Lo })
	out := ranges[:1]
	for _, rr := range ranges[1:] {
		last := &out[len(out)-1]
		if rr.Lo <= last.Hi+1 {
			if rr.Hi > last.Hi {
				last.Hi = rr.Hi
			}
			continue
		}
		out = append(out, rr)
	}
	return out
}

// requiredLiterals returns a set of literals such that every match of re
// contains at least one of them, or nil when no useful set is known.
// Case-folded literals never qualify.
func requiredLiterals(re *syntax.Regexp) [][]byte {
	lits := literalSet(re)
	if len(lits) == 0 || len(lits) > maxLiterals {
		return nil
	}
	for _, lit := range lits {
		if len(lit) == 0 {
			return nil
		}
	}
	return lits
}

func literalSet(re *syntax.Regexp) [][]byte {
	switch re.Op {
	case syntax.OpLiteral:
		if re.Flags&syntax.FoldCase != 0 || len(re.Rune) == 0 {
			return nil
		}
		buf := make([]byte, 0, len(re.Rune))
		for _, r := range re.Rune {
			buf = utf8.AppendRune(buf, r)
		}
		return [][]byte{buf}
	case syntax.OpCapture, syntax.OpPlus:
		return literalSet(re.Sub[0])
	case syntax.OpRepeat:
		if re.Min < 1 {
			return nil
		}
		return literalSet(re.Sub[0])
	case syntax.OpConcat:
		var best [][]byte
		for _, sub := range re.Sub {
			if s := literalSet(sub); betterLiterals(s, best) {
				best = s
			}
		}
		return best
	case syntax.OpAlternate:
		var all [][]byte
		for _, sub := range re.Sub {
			s := literalSet(sub)
			if s == nil {
				return nil
			}
			all = append(all, s...)
			if len(all) > maxLiterals {
				return nil
			}
		}
		return all
	}
	return nil
}

// betterLiterals prefers the set whose shortest literal is longer, then the
// smaller set.
func betterLiterals(a, b [][]byte) bool {
	if len(a) == 0 {
		return false
	}
	if len(b) == 0 {
		return true
	}
	sa, sb := shortest(a), shortest(b)
	if sa != sb {
		return sa > sb
	}
	return len(a) < len(b)
}

func shortest(lits [][]byte) int {
	n := len(lits[0])
	for _, lit := range lits[1:] {
		if len(lit) < n {
			n = len(lit)
		}
	}
	return n
}
