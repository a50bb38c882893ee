package meta

import (
	"github.com/coregx/bregex/bytecode"
	"github.com/coregx/bregex/cache"
	"github.com/coregx/bregex/prefilter"
)

// Pattern is an optimized program together with the prefilters derived from
// it. A Pattern is immutable and safe for concurrent use; the scratch memory
// each match needs is pooled per pattern.
type Pattern struct {
	prog    *bytecode.Program
	ranges  *prefilter.Ranges
	literal *prefilter.Literal
	config  Config
	states  *searchStatePool
}

// Compile returns the pattern for (pattern, opts), compiling and caching it on
// a miss. Only successful compilations are cached. The settings of config that
// change what gets built are part of the cache key, so a hit never hands out a
// pattern the caller's config would have rejected or built differently.
func Compile(pattern string, opts bytecode.Options, config Config) (*Pattern, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := config.patternCache()
	key := cache.Key{Pattern: pattern, Options: opts, Build: config.buildKey()}
	if v, ok := c.Lookup(key); ok {
		if p, ok := v.(*Pattern); ok {
			return p, nil
		}
	}

	compiler := bytecode.NewCompiler(bytecode.CompilerConfig{
		MaxRecursionDepth: config.MaxRecursionDepth,
		AtomicLoops:       config.AtomicLoops,
	})
	prog, err := compiler.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	p, err := NewPattern(prog, config)
	if err != nil {
		return nil, err
	}
	c.Insert(key, p)
	return p, nil
}

// NewPattern optimizes prog if needed and builds its prefilters.
// The pattern takes ownership of prog.
func NewPattern(prog *bytecode.Program, config Config) (*Pattern, error) {
	if err := bytecode.Optimize(prog); err != nil {
		return nil, err
	}

	p := &Pattern{prog: prog, config: config}
	if config.EnablePrefilter {
		p.ranges = prefilter.NewRanges(prog.Hints)
		lit, err := prefilter.NewLiteral(prog.Literals)
		if err != nil {
			return nil, &bytecode.CompileError{Pattern: prog.Source, Err: err}
		}
		p.literal = lit
	}
	p.states = newSearchStatePool(p)
	return p, nil
}

// Program returns the compiled program.
func (p *Pattern) Program() *bytecode.Program {
	return p.prog
}

// Source returns the pattern text.
func (p *Pattern) Source() string {
	return p.prog.Source
}

// Options returns the dialect and flags the pattern was compiled with.
func (p *Pattern) Options() bytecode.Options {
	return p.prog.Options
}

// NumCaptures returns the number of capture groups, not counting the whole match.
func (p *Pattern) NumCaptures() int {
	return p.prog.CaptureGroups
}

// GroupNames returns the name of each capture group, empty for unnamed groups.
// Group 1 is at index 0.
func (p *Pattern) GroupNames() []string {
	return p.prog.GroupNames
}

// ByteSize returns the encoded program size. It is what the pattern cache
// charges against its budget.
func (p *Pattern) ByteSize() int {
	return p.prog.ByteSize()
}

// HasRanges reports whether the starting-range filter is in use.
func (p *Pattern) HasRanges() bool {
	return p.ranges != nil
}

// HasLiterals reports whether the required-literal filter is in use.
func (p *Pattern) HasLiterals() bool {
	return p.literal != nil
}

// String returns the pattern text.
func (p *Pattern) String() string {
	return p.prog.Source
}
