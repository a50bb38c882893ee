package bytecode

// Outcome is the result of executing one opcode.
type Outcome uint8

const (
	// Continue proceeds to the next instruction.
	Continue Outcome = iota

	// ForkPrioLow keeps executing the current path and saves the jump target
	// (State.ForkAt) as a lower priority alternative.
	ForkPrioLow

	// ForkPrioHigh saves the current path as the fallback and jumps to
	// State.ForkAt.
	ForkPrioHigh

	// Succeeded ends the attempt with a match.
	Succeeded

	// Failed resumes the most recently saved alternative.
	Failed

	// FailedExecuteLowPrioForks behaves like Failed. It is also what the VM
	// substitutes for an opcode's own outcome while a forced-failure budget
	// remains.
	FailedExecuteLowPrioForks
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Continue:
		return "Continue"
	case ForkPrioLow:
		return "Fork_PrioLow"
	case ForkPrioHigh:
		return "Fork_PrioHigh"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	case FailedExecuteLowPrioForks:
		return "Failed_ExecuteLowPrioForks"
	default:
		return "Outcome(?)"
	}
}

// NoFork is the value of Input.ForkToReplace and State.InitiatingFork when
// no fork is involved.
const NoFork = -1

// Match is one matched span: a sub-slice of the view it was found in, plus
// coordinates that translate it back to the whole subject.
type Match struct {
	// View is the matched bytes (a sub-slice of the scanned view, not a copy).
	View []byte

	// Line is the index of the view the match was found in.
	Line int

	// Column is the byte offset of the match inside its view, or -1 for an
	// unset capture group.
	Column int

	// GlobalOffset is the byte offset of the match in the whole subject,
	// assuming views are separated by one line break.
	GlobalOffset int

	// Name is the capture group name, empty for unnamed groups and whole matches.
	Name string
}

// Unset returns the value stored in capture slots that did not participate.
func Unset() Match {
	return Match{Line: -1, Column: -1, GlobalOffset: -1}
}

// Matched reports whether m holds a span.
func (m Match) Matched() bool {
	return m.Column >= 0
}

// String returns the matched text.
func (m Match) String() string {
	return string(m.View)
}

// End returns the byte offset just past the match inside its view.
func (m Match) End() int {
	return m.Column + len(m.View)
}

// Input is the per-call, per-view execution context shared by every attempt.
// The VM and opcodes may update ForkToReplace and FailCounter.
type Input struct {
	Flags        Flags
	View         []byte
	MatchIndex   int
	Column       int
	Line         int
	GlobalOffset int

	// ForkToReplace, when not NoFork, names the fork instruction whose most
	// recently saved state must be overwritten instead of saving a new one.
	ForkToReplace int

	// FailCounter forces that many opcode executions to fail before any
	// opcode is actually run.
	FailCounter int
}

// NewInput returns an Input with no pending fork replacement.
func NewInput(flags Flags) *Input {
	return &Input{Flags: flags, ForkToReplace: NoFork}
}

// State is the VM register file. It is copied, never shared, when a fork
// saves an alternative.
type State struct {
	IP                   int
	Position             int
	PositionInCodePoints int

	// Captures holds one slot per capture group (group 1 at index 0).
	Captures []Match

	// captureStarts holds the pending left edge of each group.
	captureStarts []int

	// Repetitions holds the counters used by bounded repetition.
	Repetitions []int

	// Checkpoints holds string positions recorded at loop entries.
	Checkpoints []int

	// ForkAt is the instruction a pending fork jumps to.
	ForkAt int

	// InitiatingFork is the instruction position of the fork that saved this state.
	InitiatingFork int
}

// NewState returns a state sized for p.
func NewState(p *Program) *State {
	s := &State{}
	s.Init(p)
	return s
}

// Init sizes the slots for p and resets the state.
func (s *State) Init(p *Program) {
	s.Captures = resizeMatches(s.Captures, p.CaptureGroups)
	s.captureStarts = resizeInts(s.captureStarts, p.CaptureGroups)
	s.Repetitions = resizeInts(s.Repetitions, p.RepeatCounters)
	s.Checkpoints = resizeInts(s.Checkpoints, p.Checkpoints)
	s.Reset(0)
}

// Reset prepares the state for a new attempt starting at position.
func (s *State) Reset(position int) {
	s.IP = 0
	s.Position = position
	s.PositionInCodePoints = position
	for i := range s.Captures {
		s.Captures[i] = Unset()
		s.captureStarts[i] = -1
	}
	for i := range s.Repetitions {
		s.Repetitions[i] = 0
	}
	for i := range s.Checkpoints {
		s.Checkpoints[i] = -1
	}
	s.ForkAt = 0
	s.InitiatingFork = NoFork
}

// CopyTo makes dst an independent copy of s, reusing dst's slice capacity.
func (s *State) CopyTo(dst *State) {
	dst.IP = s.IP
	dst.Position = s.Position
	dst.PositionInCodePoints = s.PositionInCodePoints
	dst.Captures = append(dst.Captures[:0], s.Captures...)
	dst.captureStarts = append(dst.captureStarts[:0], s.captureStarts...)
	dst.Repetitions = append(dst.Repetitions[:0], s.Repetitions...)
	dst.Checkpoints = append(dst.Checkpoints[:0], s.Checkpoints...)
	dst.ForkAt = s.ForkAt
	dst.InitiatingFork = s.InitiatingFork
}

// Hash returns a 64-bit FNV-1a hash over the fields that determine how the
// state continues: instruction, position, repetition counters and loop
// checkpoints. Captures are deliberately left out.
func (s *State) Hash() uint64 {
	const (
		offset64 = 0xcbf29ce484222325
		prime64  = 0x100000001b3
	)
	h := uint64(offset64)
	mix := func(v int) {
		h ^= uint64(v)
		h *= prime64
	}
	mix(s.IP)
	mix(s.Position)
	for _, r := range s.Repetitions {
		mix(r)
	}
	for _, c := range s.Checkpoints {
		mix(c)
	}
	return h
}

func (s *State) advance(width int) {
	s.Position += width
	s.PositionInCodePoints++
}

func resizeInts(buf []int, n int) []int {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]int, n)
}

func resizeMatches(buf []Match, n int) []Match {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]Match, n)
}
