package bytecode

import (
	"fmt"
	"strings"
)

// WordSize is the size in bytes of one program word.
const WordSize = 8

// Hints are derived by Optimize from the flattened program and let the
// matcher skip positions without running the VM.
type Hints struct {
	// StartingRanges holds every rune a match can start with, sorted and
	// merged. Empty means no restriction is known.
	StartingRanges []RuneRange

	// StartingRangesInsensitive is StartingRanges closed under case folding.
	// Only meaningful when InsensitiveRanges is true.
	StartingRangesInsensitive []RuneRange
	InsensitiveRanges         bool

	// OnlyStartOfLine is set when the program begins with a text anchor,
	// so no position after the first one can match.
	OnlyStartOfLine bool
}

// Program is a compiled pattern: a flat sequence of opcode words plus the
// metadata the parser produced. A Program is immutable once Optimize has run
// and may be shared between goroutines.
type Program struct {
	words []uint64
	ops   []Opcode // ops[ip] is set for every instruction start

	// Source is the pattern text the program was compiled from.
	Source string

	// Options are the dialect and flags the program was compiled with.
	Options Options

	// CaptureGroups is the number of capture groups, not counting the whole match.
	CaptureGroups int

	// NamedCaptureGroups is the number of groups that have a name.
	NamedCaptureGroups int

	// GroupNames holds the name of each group (group 1 at index 0).
	GroupNames []string

	// RepeatCounters and Checkpoints size the matching State slices.
	RepeatCounters int
	Checkpoints    int

	// MinLength is a lower bound on the number of characters in any match,
	// and so also on its length in bytes.
	MinLength int

	// Literals, when not nil, are strings of which every match contains at least one.
	Literals [][]byte

	Hints Hints
}

var exitInstruction Opcode = opExit{}

// Len returns the number of words in the program.
func (p *Program) Len() int {
	return len(p.words)
}

// ByteSize returns the encoded size of the program.
func (p *Program) ByteSize() int {
	return len(p.words) * WordSize
}

// Words returns a copy of the encoded program.
func (p *Program) Words() []uint64 {
	return append([]uint64(nil), p.words...)
}

// Flattened reports whether the opcode table has been built.
func (p *Program) Flattened() bool {
	return p.ops != nil
}

// Op returns the instruction at ip. Positions past the end execute as Exit.
// A position inside an instruction means the program is corrupt and panics.
func (p *Program) Op(ip int) Opcode {
	if ip >= len(p.ops) {
		return exitInstruction
	}
	op := p.ops[ip]
	if op == nil {
		panic(fmt.Sprintf("bytecode: no instruction starts at %d in %q", ip, p.Source))
	}
	return op
}

// flatten decodes every instruction once into the opcode table.
func (p *Program) flatten() error {
	ops := make([]Opcode, len(p.words))
	for ip := 0; ip < len(p.words); {
		op, err := decode(p, ip)
		if err != nil {
			return err
		}
		ops[ip] = op
		ip += op.Size()
	}
	p.ops = ops
	return nil
}

// String returns a disassembly, one instruction per line.
func (p *Program) String() string {
	var sb strings.Builder
	for ip := 0; ip < len(p.words); {
		var op Opcode
		if p.ops != nil {
			op = p.ops[ip]
		} else {
			var err error
			if op, err = decode(p, ip); err != nil {
				fmt.Fprintf(&sb, "%4d: <%v>\n", ip, err)
				break
			}
		}
		fmt.Fprintf(&sb, "%4d: %s\n", ip, op)
		ip += op.Size()
	}
	return sb.String()
}
