package bytecode

import (
	"regexp/syntax"

	"github.com/coregx/bregex/internal/conv"
)

// CompilerConfig configures bytecode compilation
type CompilerConfig struct {
	// MaxRecursionDepth limits nesting during compilation to prevent stack overflow
	// Default: 100
	MaxRecursionDepth int

	// AtomicLoops rewrites greedy single-character loops whose continuation
	// can never start with a character of the loop into replace-forks, so a
	// loop keeps one saved state instead of one per iteration.
	// Default: true
	AtomicLoops bool
}

// DefaultCompilerConfig returns a compiler configuration with sensible defaults
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxRecursionDepth: 100,
		AtomicLoops:       true,
	}
}

// Compiler turns pattern text into a Program. It is the parser side of the
// engine: syntax is delegated to regexp/syntax, and the result is lowered to
// opcode words. A Compiler is not safe for concurrent use.
type Compiler struct {
	config CompilerConfig
	words  []uint64
	depth  int
	repeat int
	checks int
}

// NewCompiler creates a new compiler with the given configuration
func NewCompiler(config CompilerConfig) *Compiler {
	if config.MaxRecursionDepth == 0 {
		config.MaxRecursionDepth = 100
	}
	return &Compiler{config: config}
}

// NewDefaultCompiler creates a new compiler with default configuration
func NewDefaultCompiler() *Compiler {
	return NewCompiler(DefaultCompilerConfig())
}

// Compile parses pattern under opts with a default compiler. The returned
// program still needs Optimize before it can run.
func Compile(pattern string, opts Options) (*Program, error) {
	return NewDefaultCompiler().Compile(pattern, opts)
}

// Build compiles and optimizes pattern in one step.
func Build(pattern string, opts Options) (*Program, error) {
	p, err := Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	if err := Optimize(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Compile parses pattern under opts and emits its program.
func (c *Compiler) Compile(pattern string, opts Options) (*Program, error) {
	flags, err := opts.Dialect.syntaxFlags()
	if err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	if opts.Flags.Has(Insensitive) {
		flags |= syntax.FoldCase
	}
	if opts.Flags.Has(Ungreedy) {
		flags |= syntax.NonGreedy
	}
	if opts.Flags.Has(SingleLine) {
		flags |= syntax.DotNL
	}
	if opts.Flags.Has(Multiline) {
		flags &^= syntax.OneLine
	}

	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		return nil, newParseError(pattern, err)
	}
	if opts.Flags.Has(NoSubExpressions) {
		re = stripCaptures(re)
	}
	return c.CompileRegexp(re, pattern, opts)
}

// CompileRegexp emits the program for an already parsed expression.
func (c *Compiler) CompileRegexp(re *syntax.Regexp, pattern string, opts Options) (*Program, error) {
	c.words = nil
	c.depth = 0
	c.repeat = 0
	c.checks = 0

	if err := c.compile(re); err != nil {
		return nil, &CompileError{Pattern: pattern, Err: err}
	}
	c.emit(OpExit)

	p := &Program{
		words:          c.words,
		Source:         pattern,
		Options:        opts,
		CaptureGroups:  re.MaxCap(),
		RepeatCounters: c.repeat,
		Checkpoints:    c.checks,
		MinLength:      minLength(re),
		Literals:       requiredLiterals(re),
	}
	p.GroupNames = make([]string, p.CaptureGroups)
	for i, name := range re.CapNames() {
		if i == 0 {
			continue
		}
		p.GroupNames[i-1] = name
		if name != "" {
			p.NamedCaptureGroups++
		}
	}
	c.words = nil
	return p, nil
}

// compile recursively emits re.
func (c *Compiler) compile(re *syntax.Regexp) error {
	c.depth++
	if c.depth > c.config.MaxRecursionDepth {
		return ErrTooComplex
	}
	defer func() { c.depth-- }()

	switch re.Op {
	case syntax.OpNoMatch:
		c.emit(OpFail)
	case syntax.OpEmptyMatch:
	case syntax.OpLiteral:
		fold := uint64(0)
		if re.Flags&syntax.FoldCase != 0 {
			fold = 1
		}
		for _, r := range re.Rune {
			c.emit(OpChar, conv.RuneToWord(r), fold)
		}
	case syntax.OpCharClass:
		c.emitClass(re.Rune)
	case syntax.OpAnyCharNotNL:
		c.emit(OpAny, 0)
	case syntax.OpAnyChar:
		c.emit(OpAny, 1)
	case syntax.OpBeginLine:
		c.emit(OpCheckBegin, AnchorLine)
	case syntax.OpEndLine:
		c.emit(OpCheckEnd, AnchorLine)
	case syntax.OpBeginText:
		c.emit(OpCheckBegin, AnchorText)
	case syntax.OpEndText:
		c.emit(OpCheckEnd, AnchorText)
	case syntax.OpWordBoundary:
		c.emit(OpCheckBoundary, 0)
	case syntax.OpNoWordBoundary:
		c.emit(OpCheckBoundary, 1)
	case syntax.OpCapture:
		c.emit(OpSaveLeft, uint64(re.Cap))
		if err := c.compile(re.Sub[0]); err != nil {
			return err
		}
		c.emit(OpSaveRight, uint64(re.Cap))
	case syntax.OpConcat:
		return c.compileConcat(re.Sub)
	case syntax.OpAlternate:
		return c.compileAlternate(re.Sub)
	case syntax.OpStar:
		return c.compileLoop(re.Sub[0], true, greedy(re), false)
	case syntax.OpPlus:
		return c.compileLoop(re.Sub[0], false, greedy(re), false)
	case syntax.OpQuest:
		return c.compileQuest(re.Sub[0], greedy(re))
	case syntax.OpRepeat:
		return c.compileRepeat(re)
	default:
		return ErrInvalidPattern
	}
	return nil
}

func greedy(re *syntax.Regexp) bool {
	return re.Flags&syntax.NonGreedy == 0
}

func (c *Compiler) emitClass(pairs []rune) {
	if len(pairs) == 0 {
		c.emit(OpFail)
		return
	}
	args := make([]uint64, 0, 1+len(pairs))
	args = append(args, uint64(len(pairs)/2))
	for _, r := range pairs {
		args = append(args, conv.RuneToWord(r))
	}
	c.emit(OpCompare, args...)
}

func (c *Compiler) compileConcat(subs []*syntax.Regexp) error {
	for i, sub := range subs {
		if c.config.AtomicLoops && (sub.Op == syntax.OpStar || sub.Op == syntax.OpPlus) &&
			greedy(sub) && canLoopAtomically(sub.Sub[0], subs[i+1:]) {
			if err := c.compileLoop(sub.Sub[0], sub.Op == syntax.OpStar, true, true); err != nil {
				return err
			}
			continue
		}
		if err := c.compile(sub); err != nil {
			return err
		}
	}
	return nil
}

// compileAlternate emits
//
//	    ForkStay next1
//	    <alt0>
//	    Jump end
//	next1:
//	    ForkStay next2
//	    <alt1>
//	    Jump end
//	next2:
//	    <alt2>
//	end:
func (c *Compiler) compileAlternate(subs []*syntax.Regexp) error {
	var jumps []int
	for i, sub := range subs {
		if i == len(subs)-1 {
			if err := c.compile(sub); err != nil {
				return err
			}
			break
		}
		fork := c.emit(OpForkStay, 0)
		if err := c.compile(sub); err != nil {
			return err
		}
		jumps = append(jumps, c.emit(OpJump, 0))
		c.patch(fork, c.pc())
	}
	for _, j := range jumps {
		c.patch(j, c.pc())
	}
	return nil
}

// compileLoop emits star (optional) and plus loops. Bodies that can match the
// empty string get a checkpoint so an empty iteration leaves the loop.
//
//	    ForkStay end         (star only; ForkJump when lazy)
//	body:
//	    Checkpoint k         (nullable body only)
//	    <sub>
//	    ForkJump body        (LoopBack k when nullable; ForkStay when lazy)
//	end:
func (c *Compiler) compileLoop(sub *syntax.Regexp, optional, isGreedy, atomic bool) error {
	entry := -1
	if optional {
		if isGreedy {
			entry = c.emit(OpForkStay, 0)
		} else {
			entry = c.emit(OpForkJump, 0)
		}
	}

	body := c.pc()
	checkpoint := -1
	if nullable(sub) {
		checkpoint = c.checkpoint()
		c.emit(OpCheckpoint, uint64(checkpoint))
	}
	if err := c.compile(sub); err != nil {
		return err
	}

	switch {
	case checkpoint >= 0:
		back := c.emit(OpLoopBack, uint64(checkpoint), boolWord(isGreedy), 0)
		c.patch(back, body)
	case atomic:
		c.patch(c.emit(OpForkReplaceJump, 0), body)
	case isGreedy:
		c.patch(c.emit(OpForkJump, 0), body)
	default:
		c.patch(c.emit(OpForkStay, 0), body)
	}

	if entry >= 0 {
		c.patch(entry, c.pc())
	}
	return nil
}

func (c *Compiler) compileQuest(sub *syntax.Regexp, isGreedy bool) error {
	var fork int
	if isGreedy {
		fork = c.emit(OpForkStay, 0)
	} else {
		fork = c.emit(OpForkJump, 0)
	}
	if err := c.compile(sub); err != nil {
		return err
	}
	c.patch(fork, c.pc())
	return nil
}

// compileRepeat emits counted repetition x{min,max} with a single copy of
// the body.
//
//	    RepeatReset r
//	    ForkStay end         (min == 0 only; ForkJump when lazy)
//	body:
//	    Checkpoint k         (nullable body only)
//	    <sub>
//	    Repeat r min max k body
//	end:
func (c *Compiler) compileRepeat(re *syntax.Regexp) error {
	sub := re.Sub[0]
	lo, hi := re.Min, re.Max
	switch {
	case hi == 0:
		return nil
	case lo == 1 && hi == 1:
		return c.compile(sub)
	case lo == 0 && hi == 1:
		return c.compileQuest(sub, greedy(re))
	case lo == 0 && hi < 0:
		return c.compileLoop(sub, true, greedy(re), false)
	case lo == 1 && hi < 0:
		return c.compileLoop(sub, false, greedy(re), false)
	}

	id := c.repeat
	c.repeat++
	c.emit(OpRepeatReset, uint64(id))

	entry := -1
	if lo == 0 {
		if greedy(re) {
			entry = c.emit(OpForkStay, 0)
		} else {
			entry = c.emit(OpForkJump, 0)
		}
	}

	body := c.pc()
	checkpoint := -1
	if nullable(sub) {
		checkpoint = c.checkpoint()
		c.emit(OpCheckpoint, uint64(checkpoint))
	}
	if err := c.compile(sub); err != nil {
		return err
	}
	rep := c.emit(OpRepeat, uint64(id), uint64(lo), conv.IntToWord(hi), conv.IntToWord(checkpoint), boolWord(greedy(re)), 0)
	c.patch(rep, body)

	if entry >= 0 {
		c.patch(entry, c.pc())
	}
	return nil
}

func (c *Compiler) checkpoint() int {
	id := c.checks
	c.checks++
	return id
}

func (c *Compiler) pc() int {
	return len(c.words)
}

func (c *Compiler) emit(kind OpKind, args ...uint64) int {
	ip := len(c.words)
	c.words = append(c.words, uint64(kind))
	c.words = append(c.words, args...)
	return ip
}

// patch points the jump-like instruction at ip to target. Offsets are
// relative to the end of the instruction.
func (c *Compiler) patch(ip, target int) {
	size, err := opSize(c.words, ip)
	if err != nil {
		panic("bytecode: patch: " + err.Error())
	}
	c.words[ip+size-1] = conv.IntToWord(target - (ip + size))
}

func boolWord(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func stripCaptures(re *syntax.Regexp) *syntax.Regexp {
	if re.Op == syntax.OpCapture {
		return stripCaptures(re.Sub[0])
	}
	for i, sub := range re.Sub {
		re.Sub[i] = stripCaptures(sub)
	}
	return re
}
