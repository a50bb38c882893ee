package bytecode

import (
	"fmt"
	"regexp/syntax"
	"sort"
	"unicode"
	"unicode/utf8"
)

type opExit struct{}

func (opExit) Kind() OpKind { return OpExit }
func (opExit) Size() int { return 1 }
func (opExit) Execute(*Input, *State) Outcome { return Succeeded }
func (opExit) String() string { return "Exit" }

type opFail struct{}

func (opFail) Kind() OpKind { return OpFail }
func (opFail) Size() int { return 1 }
func (opFail) Execute(*Input, *State) Outcome { return Failed }
func (opFail) String() string { return "Fail" }

type opChar struct {
	r    rune
	fold bool
}

func (opChar) Kind() OpKind { return OpChar }
func (opChar) Size() int { return 3 }

func (o opChar) Execute(in *Input, st *State) Outcome {
	r, width := runeAt(in.View, st.Position)
	if width == 0 {
		return FailedExecuteLowPrioForks
	}
	if r != o.r && !foldEqual(in.Flags, o.fold, r, o.r) {
		return FailedExecuteLowPrioForks
	}
	st.advance(width)
	return Continue
}

func (o opChar) String() string {
	if o.fold {
		return fmt.Sprintf("Char %q (fold)", o.r)
	}
	return fmt.Sprintf("Char %q", o.r)
}

type opCompare struct {
	ranges []RuneRange
}

func (opCompare) Kind() OpKind { return OpCompare }
func (o opCompare) Size() int { return 2 + 2*len(o.ranges) }

func (o opCompare) Execute(in *Input, st *State) Outcome {
	r, width := runeAt(in.View, st.Position)
	if width == 0 {
		return FailedExecuteLowPrioForks
	}
	if !o.contains(r) {
		if !in.Flags.Has(Insensitive) {
			return FailedExecuteLowPrioForks
		}
		matched := false
		forEachFold(in.Flags.UnicodeAware(), r, func(f rune) bool {
			matched = o.contains(f)
			return !matched
		})
		if !matched {
			return FailedExecuteLowPrioForks
		}
	}
	st.advance(width)
	return Continue
}

func (o opCompare) contains(r rune) bool {
	return containsRune(o.ranges, r)
}

func (o opCompare) String() string {
	return "Compare " + formatRanges(o.ranges)
}

type opAny struct {
	newline bool
}

func (opAny) Kind() OpKind { return OpAny }
func (opAny) Size() int { return 2 }

func (o opAny) Execute(in *Input, st *State) Outcome {
	r, width := runeAt(in.View, st.Position)
	if width == 0 {
		return FailedExecuteLowPrioForks
	}
	if r == '\n' && !o.newline && !in.Flags.Has(SingleLine) {
		return FailedExecuteLowPrioForks
	}
	st.advance(width)
	return Continue
}

func (o opAny) String() string {
	if o.newline {
		return "Any (newline)"
	}
	return "Any"
}

type opJump struct {
	offset int
}

func (opJump) Kind() OpKind { return OpJump }
func (opJump) Size() int { return 2 }

func (o opJump) Execute(_ *Input, st *State) Outcome {
	st.IP += o.offset
	return Continue
}

func (o opJump) String() string { return fmt.Sprintf("Jump %+d", o.offset) }

// opFork covers the four fork flavours. Every flavour records the jump
// target in State.ForkAt; the replace flavours also ask the VM to overwrite
// the state this instruction saved previously.
type opFork struct {
	kind   OpKind
	offset int
}

func (o opFork) Kind() OpKind { return o.kind }
func (opFork) Size() int { return 2 }

func (o opFork) Execute(in *Input, st *State) Outcome {
	st.ForkAt = st.IP + 2 + o.offset
	switch o.kind {
	case OpForkReplaceJump:
		in.ForkToReplace = st.IP
		return ForkPrioHigh
	case OpForkReplaceStay:
		in.ForkToReplace = st.IP
		return ForkPrioLow
	case OpForkJump:
		return ForkPrioHigh
	default:
		return ForkPrioLow
	}
}

func (o opFork) String() string { return fmt.Sprintf("%s %+d", o.kind, o.offset) }

type opSaveLeft struct {
	group int
}

func (opSaveLeft) Kind() OpKind { return OpSaveLeft }
func (opSaveLeft) Size() int { return 2 }

func (o opSaveLeft) Execute(_ *Input, st *State) Outcome {
	st.captureStarts[o.group-1] = st.Position
	return Continue
}

func (o opSaveLeft) String() string { return fmt.Sprintf("SaveLeftCaptureGroup %d", o.group) }

type opSaveRight struct {
	group int
	name  string
}

func (opSaveRight) Kind() OpKind { return OpSaveRight }
func (opSaveRight) Size() int { return 2 }

func (o opSaveRight) Execute(in *Input, st *State) Outcome {
	start := st.captureStarts[o.group-1]
	if start < 0 || start > st.Position || st.Position > len(in.View) {
		panic(fmt.Sprintf("bytecode: capture group %d span [%d:%d] outside view of length %d",
			o.group, start, st.Position, len(in.View)))
	}
	st.Captures[o.group-1] = Match{
		View:         in.View[start:st.Position],
		Line:         in.Line,
		Column:       start,
		GlobalOffset: in.GlobalOffset + start,
		Name:         o.name,
	}
	return Continue
}

func (o opSaveRight) String() string {
	if o.name != "" {
		return fmt.Sprintf("SaveRightNamedCaptureGroup %d %q", o.group, o.name)
	}
	return fmt.Sprintf("SaveRightCaptureGroup %d", o.group)
}

type opCheckBegin struct {
	mode uint64
}

func (opCheckBegin) Kind() OpKind { return OpCheckBegin }
func (opCheckBegin) Size() int { return 2 }

func (o opCheckBegin) Execute(in *Input, st *State) Outcome {
	pos := st.Position
	if pos == 0 {
		if in.Flags.Has(MatchNotBeginOfLine) {
			return Failed
		}
		return Continue
	}
	if (o.mode == AnchorLine || in.Flags.Has(Multiline)) && in.View[pos-1] == '\n' {
		return Continue
	}
	return Failed
}

func (o opCheckBegin) String() string { return "CheckBegin" + anchorSuffix(o.mode) }

type opCheckEnd struct {
	mode uint64
}

func (opCheckEnd) Kind() OpKind { return OpCheckEnd }
func (opCheckEnd) Size() int { return 2 }

func (o opCheckEnd) Execute(in *Input, st *State) Outcome {
	pos := st.Position
	if pos == len(in.View) {
		if in.Flags.Has(MatchNotEndOfLine) {
			return Failed
		}
		return Continue
	}
	if (o.mode == AnchorLine || in.Flags.Has(Multiline)) && pos < len(in.View) && in.View[pos] == '\n' {
		return Continue
	}
	return Failed
}

func (o opCheckEnd) String() string { return "CheckEnd" + anchorSuffix(o.mode) }

func anchorSuffix(mode uint64) string {
	if mode == AnchorLine {
		return " (line)"
	}
	return ""
}

type opCheckBoundary struct {
	negate bool
}

func (opCheckBoundary) Kind() OpKind { return OpCheckBoundary }
func (opCheckBoundary) Size() int { return 2 }

func (o opCheckBoundary) Execute(in *Input, st *State) Outcome {
	pos := st.Position
	before := pos > 0 && syntax.IsWordChar(rune(in.View[pos-1]))
	after := pos < len(in.View) && syntax.IsWordChar(rune(in.View[pos]))
	if (before != after) != o.negate {
		return Continue
	}
	return Failed
}

func (o opCheckBoundary) String() string {
	if o.negate {
		return "CheckBoundary (not)"
	}
	return "CheckBoundary"
}

type opCheckpoint struct {
	id int
}

func (opCheckpoint) Kind() OpKind { return OpCheckpoint }
func (opCheckpoint) Size() int { return 2 }

func (o opCheckpoint) Execute(_ *Input, st *State) Outcome {
	st.Checkpoints[o.id] = st.Position
	return Continue
}

func (o opCheckpoint) String() string { return fmt.Sprintf("Checkpoint %d", o.id) }

type opLoopBack struct {
	checkpoint int
	greedy     bool
	offset     int
}

func (opLoopBack) Kind() OpKind { return OpLoopBack }
func (opLoopBack) Size() int { return 4 }

func (o opLoopBack) Execute(_ *Input, st *State) Outcome {
	if st.Position == st.Checkpoints[o.checkpoint] {
		// An empty iteration would loop forever; leave the loop instead.
		return Continue
	}
	st.ForkAt = st.IP + 4 + o.offset
	if o.greedy {
		return ForkPrioHigh
	}
	return ForkPrioLow
}

func (o opLoopBack) String() string {
	return fmt.Sprintf("LoopBack checkpoint=%d greedy=%t %+d", o.checkpoint, o.greedy, o.offset)
}

type opRepeatReset struct {
	id int
}

func (opRepeatReset) Kind() OpKind { return OpRepeatReset }
func (opRepeatReset) Size() int { return 2 }

func (o opRepeatReset) Execute(_ *Input, st *State) Outcome {
	st.Repetitions[o.id] = 0
	return Continue
}

func (o opRepeatReset) String() string { return fmt.Sprintf("RepeatReset %d", o.id) }

type opRepeat struct {
	id         int
	min        int
	max        int // -1 means unbounded
	checkpoint int // -1 when the body cannot match empty
	greedy     bool
	offset     int
}

func (opRepeat) Kind() OpKind { return OpRepeat }
func (opRepeat) Size() int { return 7 }

func (o opRepeat) Execute(_ *Input, st *State) Outcome {
	st.Repetitions[o.id]++
	count := st.Repetitions[o.id]
	target := st.IP + 7 + o.offset
	if count < o.min {
		st.IP = target - 7
		return Continue
	}
	if o.max >= 0 && count >= o.max {
		return Continue
	}
	if o.checkpoint >= 0 && st.Position == st.Checkpoints[o.checkpoint] {
		return Continue
	}
	st.ForkAt = target
	if o.greedy {
		return ForkPrioHigh
	}
	return ForkPrioLow
}

func (o opRepeat) String() string {
	return fmt.Sprintf("Repeat id=%d min=%d max=%d checkpoint=%d greedy=%t %+d",
		o.id, o.min, o.max, o.checkpoint, o.greedy, o.offset)
}

// runeAt decodes the rune at pos. A zero width means pos is at or past the end.
func runeAt(view []byte, pos int) (rune, int) {
	if pos >= len(view) {
		return 0, 0
	}
	if c := view[pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRune(view[pos:])
}

// foldEqual reports whether r and want are equal under the case folding
// selected by the compile-time fold bit or the Insensitive flag.
func foldEqual(flags Flags, fold bool, r, want rune) bool {
	if !fold && !flags.Has(Insensitive) {
		return false
	}
	equal := false
	forEachFold(fold || flags.UnicodeAware(), want, func(f rune) bool {
		equal = f == r
		return !equal
	})
	return equal
}

// forEachFold calls fn with every case variant of r other than r itself,
// until fn returns false. Without unicode only ASCII letters have variants.
func forEachFold(unicodeFold bool, r rune, fn func(rune) bool) {
	if !unicodeFold {
		switch {
		case 'a' <= r && r <= 'z':
			fn(r - 'a' + 'A')
		case 'A' <= r && r <= 'Z':
			fn(r - 'A' + 'a')
		}
		return
	}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if !fn(f) {
			return
		}
	}
}

// containsRune binary searches sorted, non-overlapping ranges.
func containsRune(ranges []RuneRange, r rune) bool {
	if len(ranges) <= 4 {
		for _, rr := range ranges {
			if rr.Lo <= r && r <= rr.Hi {
				return true
			}
		}
		return false
	}
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].Hi >= r })
	return i < len(ranges) && ranges[i].Lo <= r
}

// ContainsRune reports whether r falls in one of the sorted ranges.
func ContainsRune(ranges []RuneRange, r rune) bool {
	return containsRune(ranges, r)
}
