package prefilter

// Tracker wraps a Filter with effectiveness tracking.
//
// The tracker counts how many positions the filter was asked about and how
// many it rejected. A filter that rejects almost nothing (a starting set like
// \w on ordinary text) only adds a binary search per position, so once the
// rejection ratio drops below a threshold the filter is retired and Accept
// answers true without consulting it.
//
// Algorithm:
//  1. Track checks (Accept calls) and rejects (false answers)
//  2. Every N checks after a warmup, compute rejects/checks
//  3. If the ratio is below the threshold, disable the filter
//  4. Once disabled, stay disabled until Reset
//
// A Tracker holds per-search state and must not be shared between
// goroutines; the matcher keeps one per pooled search state.
type Tracker struct {
	inner Filter

	// Statistics
	checks  uint64
	rejects uint64

	// Configuration
	checkInterval  uint64
	minEfficiency  float64
	warmupPeriod   uint64
	lastCheckpoint uint64

	active bool
}

// TrackerConfig holds configuration for the effectiveness tracker.
type TrackerConfig struct {
	// CheckInterval is how often to check effectiveness (in checks).
	// Default: 64
	CheckInterval uint64

	// MinEfficiency is the minimum acceptable ratio of rejects/checks.
	// If efficiency drops below this, the filter is disabled.
	// Default: 0.1 (10%)
	MinEfficiency float64

	// WarmupPeriod is the minimum number of checks before checking effectiveness.
	// Default: 128
	WarmupPeriod uint64
}

// DefaultTrackerConfig returns the default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		CheckInterval: 64,
		MinEfficiency: 0.1,
		WarmupPeriod:  128,
	}
}

// NewTracker creates a new tracker for the given filter with default config.
//
// Returns nil if the inner filter is nil.
func NewTracker(inner Filter) *Tracker {
	return NewTrackerWithConfig(inner, DefaultTrackerConfig())
}

// NewTrackerWithConfig creates a new tracker with custom configuration.
//
// Returns nil if the inner filter is nil.
func NewTrackerWithConfig(inner Filter, config TrackerConfig) *Tracker {
	if inner == nil {
		return nil
	}
	return &Tracker{
		inner:         inner,
		checkInterval: config.CheckInterval,
		minEfficiency: config.MinEfficiency,
		warmupPeriod:  config.WarmupPeriod,
		active:        true,
	}
}

// Accept implements Filter with tracking.
func (t *Tracker) Accept(view []byte, pos int, insensitive bool) bool {
	if !t.active {
		return true
	}
	ok := t.inner.Accept(view, pos, insensitive)
	t.checks++
	if !ok {
		t.rejects++
	}
	t.checkEffectiveness()
	return ok
}

// IsActive returns true if the filter is still being consulted.
func (t *Tracker) IsActive() bool {
	return t.active
}

// HeapBytes returns the memory used by the inner filter.
func (t *Tracker) HeapBytes() int {
	return t.inner.HeapBytes()
}

// Stats returns the current tracking statistics.
//
// Returns (checks, rejects, efficiency, active).
func (t *Tracker) Stats() (checks, rejects uint64, efficiency float64, active bool) {
	checks = t.checks
	rejects = t.rejects
	if checks > 0 {
		efficiency = float64(rejects) / float64(checks)
	}
	active = t.active
	return
}

// Reset clears statistics and re-enables the filter.
func (t *Tracker) Reset() {
	t.checks = 0
	t.rejects = 0
	t.lastCheckpoint = 0
	t.active = true
}

// Inner returns the underlying filter.
func (t *Tracker) Inner() Filter {
	return t.inner
}

// checkEffectiveness evaluates whether to disable the filter.
func (t *Tracker) checkEffectiveness() {
	if t.checks < t.warmupPeriod {
		return
	}
	if t.checks-t.lastCheckpoint < t.checkInterval {
		return
	}
	t.lastCheckpoint = t.checks

	if float64(t.rejects)/float64(t.checks) < t.minEfficiency {
		t.active = false
	}
}
