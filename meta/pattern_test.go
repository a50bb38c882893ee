package meta

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/coregx/bregex/bytecode"
	"github.com/coregx/bregex/cache"
)

func TestCompile_CachesByPatternAndOptions(t *testing.T) {
	c := cache.NewFIFO(cache.Options{})
	config := DefaultConfig()
	config.Cache = c

	p1, err := Compile(`a+b`, bytecode.Options{}, config)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := Compile(`a+b`, bytecode.Options{}, config)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Error("second Compile did not reuse the cached pattern")
	}

	p3, err := Compile(`a+b`, bytecode.Options{Flags: bytecode.Insensitive}, config)
	if err != nil {
		t.Fatal(err)
	}
	if p3 == p1 {
		t.Error("different options shared a cache entry")
	}
	if c.Len() != 2 || c.Size() != p1.ByteSize()+p3.ByteSize() {
		t.Errorf("Len, Size = %d, %d", c.Len(), c.Size())
	}
}

func TestCompile_ErrorsAreNotCached(t *testing.T) {
	c := cache.NewFIFO(cache.Options{})
	config := DefaultConfig()
	config.Cache = c

	_, err := Compile(`a(b`, bytecode.Options{}, config)
	var perr *bytecode.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Compile error = %v, want *bytecode.ParseError", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed compile was cached: Len() = %d", c.Len())
	}
}

func TestCompile_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.MaxRecursionDepth = 1
	if _, err := Compile(`a`, bytecode.Options{}, config); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Compile error = %v, want ErrInvalidConfig", err)
	}
}

func TestCompile_CacheKeyIncludesBuildConfig(t *testing.T) {
	c := cache.NewFIFO(cache.Options{})
	deep := strings.Repeat("(", 20) + "a" + strings.Repeat(")", 20)

	config := DefaultConfig()
	config.Cache = c
	p1, err := Compile(deep, bytecode.Options{}, config)
	if err != nil {
		t.Fatal(err)
	}

	shallow := config
	shallow.MaxRecursionDepth = 10
	if _, err := Compile(deep, bytecode.Options{}, shallow); !errors.Is(err, bytecode.ErrTooComplex) {
		t.Errorf("Compile with a lower depth limit = %v, want ErrTooComplex", err)
	}

	plain := config
	plain.EnablePrefilter = false
	p2, err := Compile(deep, bytecode.Options{}, plain)
	if err != nil {
		t.Fatal(err)
	}
	if p2 == p1 || p2.HasLiterals() {
		t.Error("pattern built with prefilters served to a config without them")
	}

	p3, err := Compile(deep, bytecode.Options{}, config)
	if err != nil {
		t.Fatal(err)
	}
	if p3 != p1 {
		t.Error("same config did not hit the cache")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCompile_FIFOEviction(t *testing.T) {
	config := DefaultConfig()
	config.Cache = cache.Nop{}
	probe, err := Compile(`x{40}`, bytecode.Options{}, config)
	if err != nil {
		t.Fatal(err)
	}

	// room for two programs of that size, not three
	c := cache.NewFIFO(cache.Options{Budget: 2*probe.ByteSize() + probe.ByteSize()/2})
	config.Cache = c
	for _, pattern := range []string{`x{40}`, `y{40}`, `z{40}`} {
		if _, err := Compile(pattern, bytecode.Options{}, config); err != nil {
			t.Fatal(err)
		}
	}
	keys := c.Keys()
	if len(keys) != 2 || keys[0].Pattern != `y{40}` || keys[1].Pattern != `z{40}` {
		t.Errorf("cache keys = %v, want y{40} then z{40}", keys)
	}
}

func TestCompile_OversizedNotCached(t *testing.T) {
	c := cache.NewFIFO(cache.Options{Budget: 64})
	config := DefaultConfig()
	config.Cache = c

	pattern := strings.Repeat("abcdefgh", 8)
	p1, err := Compile(pattern, bytecode.Options{}, config)
	if err != nil {
		t.Fatal(err)
	}
	if p1.ByteSize() <= 64 {
		t.Fatalf("program of %d bytes fits the budget", p1.ByteSize())
	}
	p2, err := Compile(pattern, bytecode.Options{}, config)
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 || c.Len() != 0 {
		t.Errorf("oversized pattern was cached (Len() = %d)", c.Len())
	}
}

func TestCompile_ConcurrentDefaultCache(t *testing.T) {
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				p, err := Compile(`concurrent-(\d+)`, bytecode.Options{}, DefaultConfig())
				if err != nil {
					t.Error(err)
					return
				}
				res := NewMatcher(p).Match(views("concurrent-42"), 0, nil)
				if !res.Success || res.Captures(0)[0].String() != "42" {
					t.Error("cached pattern did not match")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewPattern_Accessors(t *testing.T) {
	prog, err := bytecode.Compile(`(?P<word>hello|world)(\d)`, bytecode.Options{Flags: bytecode.Global})
	if err != nil {
		t.Fatal(err)
	}
	p, err := NewPattern(prog, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !prog.Flattened() {
		t.Error("NewPattern did not optimize the program")
	}
	if p.Program() != prog || p.Source() != prog.Source || p.String() != prog.Source {
		t.Error("accessors do not reflect the program")
	}
	if p.Options().Flags != bytecode.Global {
		t.Errorf("Options() = %v", p.Options())
	}
	if p.NumCaptures() != 2 || len(p.GroupNames()) != 2 || p.GroupNames()[0] != "word" {
		t.Errorf("NumCaptures, GroupNames = %d, %q", p.NumCaptures(), p.GroupNames())
	}
	if !p.HasRanges() || !p.HasLiterals() {
		t.Errorf("HasRanges, HasLiterals = %v, %v", p.HasRanges(), p.HasLiterals())
	}
	if p.ByteSize() != prog.ByteSize() {
		t.Errorf("ByteSize() = %d, want %d", p.ByteSize(), prog.ByteSize())
	}
}
