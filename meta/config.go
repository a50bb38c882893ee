// Package meta implements the match orchestrator that drives the backtracking
// VM across views and start positions.
//
// A Pattern bundles an optimized program with the prefilters derived from it
// and is safe to share. A Matcher runs a Pattern over one or more views:
//   - positions that cannot start a match are skipped using the minimum match
//     length, the starting-character ranges and the required literals
//   - every remaining position gets one VM attempt
//   - successes are collected together with their capture spans, translated
//     into line and global coordinates
//
// Compiled patterns are shared through a cache keyed by pattern text and
// options, so compiling the same pattern twice reuses the first program.
package meta

import (
	"errors"

	"github.com/coregx/bregex/cache"
)

// ErrInvalidConfig is wrapped by every ConfigError.
var ErrInvalidConfig = errors.New("invalid config")

// Config controls pattern compilation and prefiltering.
//
// Example:
//
//	config := meta.DefaultConfig()
//	config.EnablePrefilter = false // run the VM at every position
//	p, err := meta.Compile(`\d+`, bytecode.Options{}, config)
type Config struct {
	// EnablePrefilter enables the starting-range and required-literal
	// filters. When false, every position is handed to the VM.
	// Default: true
	EnablePrefilter bool

	// AdaptiveRanges retires the starting-range filter for the rest of a call
	// once it stops rejecting enough positions to pay for itself.
	// Default: true
	AdaptiveRanges bool

	// MaxRecursionDepth limits recursion while compiling nested expressions.
	// Default: 100
	MaxRecursionDepth int

	// AtomicLoops enables the single-saved-state rewrite of greedy loops
	// whose continuation cannot start with a character of the loop body.
	// Default: true
	AtomicLoops bool

	// Cache stores compiled patterns. nil selects cache.Default().
	// Use cache.Nop{} to always recompile.
	Cache cache.Cache
}

// DefaultConfig returns the configuration used by Compile in the root package.
func DefaultConfig() Config {
	return Config{
		EnablePrefilter:   true,
		AdaptiveRanges:    true,
		MaxRecursionDepth: 100,
		AtomicLoops:       true,
	}
}

// Validate checks if the configuration is valid.
//
// Valid ranges:
//   - MaxRecursionDepth: 10 to 1,000
func (c Config) Validate() error {
	if c.MaxRecursionDepth < 10 || c.MaxRecursionDepth > 1_000 {
		return &ConfigError{
			Field:   "MaxRecursionDepth",
			Message: "must be between 10 and 1,000",
		}
	}
	return nil
}

// buildKey packs the fields that affect the compiled pattern. Cache is not
// one of them.
func (c Config) buildKey() uint64 {
	k := uint64(c.MaxRecursionDepth) << 3
	if c.EnablePrefilter {
		k |= 1
	}
	if c.AdaptiveRanges {
		k |= 1 << 1
	}
	if c.AtomicLoops {
		k |= 1 << 2
	}
	return k
}

func (c Config) patternCache() cache.Cache {
	if c.Cache == nil {
		return cache.Default()
	}
	return c.Cache
}

// ConfigError represents an invalid configuration parameter.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "regexp: invalid config: " + e.Field + ": " + e.Message
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
