package meta

import (
	"sync"

	"github.com/coregx/bregex/bytecode"
	"github.com/coregx/bregex/prefilter"
	"github.com/coregx/bregex/vm"
)

// searchState holds the mutable memory of one match call. It is obtained
// from the pattern's pool so that one Pattern can serve concurrent calls.
//
// Usage pattern:
//
//	s := p.states.get()
//	defer p.states.put(s)
//
// A searchState must not be shared between goroutines.
type searchState struct {
	// machine owns the backtrack stack arena and the seen set; both keep
	// their capacity across calls.
	machine *vm.Machine

	// state is the VM register file, sized for the pattern.
	state *bytecode.State

	// input is reused to avoid an allocation per call.
	input bytecode.Input

	// ranges wraps the pattern's starting-range filter, nil without one.
	ranges *prefilter.Tracker
}

func newSearchState(p *Pattern) *searchState {
	s := &searchState{
		machine: vm.New(),
		state:   bytecode.NewState(p.prog),
	}
	if p.ranges != nil {
		if p.config.AdaptiveRanges {
			s.ranges = prefilter.NewTracker(p.ranges)
		} else {
			config := prefilter.DefaultTrackerConfig()
			config.MinEfficiency = 0
			s.ranges = prefilter.NewTrackerWithConfig(p.ranges, config)
		}
	}
	return s
}

// reset prepares the state for a new call.
func (s *searchState) reset(flags bytecode.Flags) {
	s.input = bytecode.Input{Flags: flags, ForkToReplace: bytecode.NoFork}
	if s.ranges != nil {
		s.ranges.Reset()
	}
}

// searchStatePool manages a pool of searchState instances for one pattern.
// This follows the stdlib regexp pattern of using sync.Pool for concurrent safety.
type searchStatePool struct {
	pool sync.Pool
}

func newSearchStatePool(p *Pattern) *searchStatePool {
	sp := &searchStatePool{}
	sp.pool = sync.Pool{
		New: func() any {
			return newSearchState(p)
		},
	}
	return sp
}

// get retrieves a searchState from the pool, creating one if necessary.
func (sp *searchStatePool) get() *searchState {
	return sp.pool.Get().(*searchState)
}

// put returns a searchState to the pool for reuse. Captured views are
// dropped so pooled memory does not pin the caller's buffers.
func (sp *searchStatePool) put(s *searchState) {
	if s == nil {
		return
	}
	s.input.View = nil
	for i := range s.state.Captures {
		s.state.Captures[i] = bytecode.Unset()
	}
	sp.pool.Put(s)
}
