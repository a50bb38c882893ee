package bytecode

import (
	"fmt"
	"strings"

	"github.com/coregx/bregex/internal/conv"
)

// OpKind identifies an opcode. It is stored in the first word of every
// instruction; operands follow in the next words.
type OpKind uint64

const (
	// OpExit ends the attempt successfully. Layout: [kind]
	OpExit OpKind = iota

	// OpChar consumes one rune equal to the operand. Layout: [kind, rune, fold]
	OpChar

	// OpCompare consumes one rune inside one of the operand ranges.
	// Layout: [kind, n, lo0, hi0, ..., lo(n-1), hi(n-1)]
	OpCompare

	// OpAny consumes any rune; '\n' only when the operand is 1 or SingleLine is set.
	// Layout: [kind, matchNewline]
	OpAny

	// OpJump continues at the relative target. Layout: [kind, offset]
	OpJump

	// OpForkJump prefers the jump target and saves the fall-through. Layout: [kind, offset]
	OpForkJump

	// OpForkStay prefers the fall-through and saves the jump target. Layout: [kind, offset]
	OpForkStay

	// OpForkReplaceJump is OpForkJump that overwrites the state it saved last time.
	// Layout: [kind, offset]
	OpForkReplaceJump

	// OpForkReplaceStay is OpForkStay that overwrites the state it saved last time.
	// Layout: [kind, offset]
	OpForkReplaceStay

	// OpSaveLeft records the start of a capture group. Layout: [kind, group]
	OpSaveLeft

	// OpSaveRight closes a capture group. Layout: [kind, group]
	OpSaveRight

	// OpCheckBegin asserts the beginning of the view (or line). Layout: [kind, mode]
	OpCheckBegin

	// OpCheckEnd asserts the end of the view (or line). Layout: [kind, mode]
	OpCheckEnd

	// OpCheckBoundary asserts a word boundary, or its absence. Layout: [kind, negate]
	OpCheckBoundary

	// OpCheckpoint records the current position for a loop. Layout: [kind, id]
	OpCheckpoint

	// OpLoopBack jumps back to a loop body unless the last iteration was empty.
	// Layout: [kind, checkpoint, greedy, offset]
	OpLoopBack

	// OpRepeatReset zeroes a repetition counter. Layout: [kind, id]
	OpRepeatReset

	// OpRepeat counts one iteration of a bounded repetition and decides
	// whether to loop. Layout: [kind, id, min, max, checkpoint, greedy, offset]
	OpRepeat

	// OpFail always fails. Layout: [kind]
	OpFail

	opKindCount
)

var opNames = [...]string{
	OpExit:            "Exit",
	OpChar:            "Char",
	OpCompare:         "Compare",
	OpAny:             "Any",
	OpJump:            "Jump",
	OpForkJump:        "ForkJump",
	OpForkStay:        "ForkStay",
	OpForkReplaceJump: "ForkReplaceJump",
	OpForkReplaceStay: "ForkReplaceStay",
	OpSaveLeft:        "SaveLeftCaptureGroup",
	OpSaveRight:       "SaveRightCaptureGroup",
	OpCheckBegin:      "CheckBegin",
	OpCheckEnd:        "CheckEnd",
	OpCheckBoundary:   "CheckBoundary",
	OpCheckpoint:      "Checkpoint",
	OpLoopBack:        "LoopBack",
	OpRepeatReset:     "RepeatReset",
	OpRepeat:          "Repeat",
	OpFail:            "Fail",
}

// String returns the opcode name.
func (k OpKind) String() string {
	if k < opKindCount {
		return opNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", uint64(k))
}

// Anchor modes for OpCheckBegin and OpCheckEnd.
const (
	// AnchorText matches only at the view edge (or at a line break when the
	// Multiline flag is set at match time).
	AnchorText uint64 = iota

	// AnchorLine matches at the view edge and next to any '\n'.
	AnchorLine
)

// Opcode is one decoded instruction.
type Opcode interface {
	// Kind returns the opcode identity.
	Kind() OpKind

	// Size returns the instruction width in program words.
	Size() int

	// Execute runs the instruction against the input and the register file.
	Execute(in *Input, st *State) Outcome

	// String returns a disassembly of the instruction.
	String() string
}

// RuneRange is an inclusive range of runes.
type RuneRange struct {
	Lo, Hi rune
}

func (r RuneRange) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("%q", r.Lo)
	}
	return fmt.Sprintf("%q-%q", r.Lo, r.Hi)
}

func opSize(words []uint64, ip int) (int, error) {
	if ip >= len(words) {
		return 0, fmt.Errorf("instruction %d out of range", ip)
	}
	var size int
	switch OpKind(words[ip]) {
	case OpExit, OpFail:
		size = 1
	case OpAny, OpJump, OpForkJump, OpForkStay, OpForkReplaceJump, OpForkReplaceStay,
		OpSaveLeft, OpSaveRight, OpCheckBegin, OpCheckEnd, OpCheckBoundary,
		OpCheckpoint, OpRepeatReset:
		size = 2
	case OpChar:
		size = 3
	case OpLoopBack:
		size = 4
	case OpRepeat:
		size = 7
	case OpCompare:
		if ip+1 >= len(words) {
			return 0, fmt.Errorf("truncated Compare at %d", ip)
		}
		size = 2 + 2*conv.WordToUint(words[ip+1])
	default:
		return 0, fmt.Errorf("unknown opcode %d at %d", words[ip], ip)
	}
	if ip+size > len(words) {
		return 0, fmt.Errorf("truncated %s at %d", OpKind(words[ip]), ip)
	}
	return size, nil
}

// decode builds the Opcode for the instruction at ip.
func decode(p *Program, ip int) (Opcode, error) {
	size, err := opSize(p.words, ip)
	if err != nil {
		return nil, err
	}
	w := p.words[ip : ip+size]
	switch OpKind(w[0]) {
	case OpExit:
		return opExit{}, nil
	case OpFail:
		return opFail{}, nil
	case OpChar:
		return opChar{r: conv.WordToRune(w[1]), fold: w[2] != 0}, nil
	case OpCompare:
		ranges := make([]RuneRange, 0, (size-2)/2)
		for i := 2; i < size; i += 2 {
			ranges = append(ranges, RuneRange{Lo: conv.WordToRune(w[i]), Hi: conv.WordToRune(w[i+1])})
		}
		return opCompare{ranges: ranges}, nil
	case OpAny:
		return opAny{newline: w[1] != 0}, nil
	case OpJump:
		return opJump{offset: conv.WordToInt(w[1])}, nil
	case OpForkJump, OpForkStay, OpForkReplaceJump, OpForkReplaceStay:
		return opFork{kind: OpKind(w[0]), offset: conv.WordToInt(w[1])}, nil
	case OpSaveLeft:
		return opSaveLeft{group: conv.WordToUint(w[1])}, nil
	case OpSaveRight:
		g := conv.WordToUint(w[1])
		if g < 1 || g > p.CaptureGroups {
			return nil, fmt.Errorf("capture group %d out of range at %d", g, ip)
		}
		return opSaveRight{group: g, name: p.GroupNames[g-1]}, nil
	case OpCheckBegin:
		return opCheckBegin{mode: w[1]}, nil
	case OpCheckEnd:
		return opCheckEnd{mode: w[1]}, nil
	case OpCheckBoundary:
		return opCheckBoundary{negate: w[1] != 0}, nil
	case OpCheckpoint:
		return opCheckpoint{id: conv.WordToUint(w[1])}, nil
	case OpLoopBack:
		return opLoopBack{checkpoint: conv.WordToUint(w[1]), greedy: w[2] != 0, offset: conv.WordToInt(w[3])}, nil
	case OpRepeatReset:
		return opRepeatReset{id: conv.WordToUint(w[1])}, nil
	case OpRepeat:
		return opRepeat{
			id:         conv.WordToUint(w[1]),
			min:        conv.WordToUint(w[2]),
			max:        conv.WordToInt(w[3]),
			checkpoint: conv.WordToInt(w[4]),
			greedy:     w[5] != 0,
			offset:     conv.WordToInt(w[6]),
		}, nil
	}
	return nil, fmt.Errorf("unknown opcode %d at %d", w[0], ip)
}

func formatRanges(ranges []RuneRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
