// Package seen provides a set of 64-bit hashes with O(1) clearing.
//
// The backtracking VM records the hash of every state it resumes and skips
// states it has already explored in the current attempt. Attempts are short
// and frequent, so the set is cleared far more often than it grows: Clear
// bumps a generation counter instead of touching the table.
package seen

const minCapacity = 64

type slot struct {
	hash uint64
	gen  uint32
}

// Set is an open-addressing hash set of uint64 values.
// The zero value is ready to use.
type Set struct {
	slots []slot
	gen   uint32 // slots with a different generation are empty
	size  int
}

// New creates a set sized for about capacity elements before it grows.
func New(capacity int) *Set {
	s := &Set{}
	s.init(capacity)
	return s
}

func (s *Set) init(capacity int) {
	n := minCapacity
	for n < capacity*2 {
		n <<= 1
	}
	s.slots = make([]slot, n)
	s.gen = 1
	s.size = 0
}

// Insert adds h to the set and reports whether it was absent.
func (s *Set) Insert(h uint64) bool {
	if s.slots == nil {
		s.init(0)
	}
	if (s.size+1)*4 > len(s.slots)*3 {
		s.grow()
	}
	mask := uint64(len(s.slots) - 1)
	for i := mix(h) & mask; ; i = (i + 1) & mask {
		sl := &s.slots[i]
		if sl.gen != s.gen {
			sl.hash = h
			sl.gen = s.gen
			s.size++
			return true
		}
		if sl.hash == h {
			return false
		}
	}
}

// Contains reports whether h is in the set.
func (s *Set) Contains(h uint64) bool {
	if s.size == 0 {
		return false
	}
	mask := uint64(len(s.slots) - 1)
	for i := mix(h) & mask; ; i = (i + 1) & mask {
		sl := &s.slots[i]
		if sl.gen != s.gen {
			return false
		}
		if sl.hash == h {
			return true
		}
	}
}

// Len returns the number of elements in the set.
func (s *Set) Len() int {
	return s.size
}

// Cap returns the number of slots currently allocated.
func (s *Set) Cap() int {
	return len(s.slots)
}

// Clear removes all elements in O(1) time.
func (s *Set) Clear() {
	s.size = 0
	s.gen++
	if s.gen == 0 {
		// the generation wrapped: stale slots could look live again
		for i := range s.slots {
			s.slots[i] = slot{}
		}
		s.gen = 1
	}
}

func (s *Set) grow() {
	old := s.slots
	oldGen := s.gen
	s.init(len(old))
	for _, sl := range old {
		if sl.gen == oldGen {
			s.Insert(sl.hash)
		}
	}
}

// mix spreads hashes that differ only in their high bits.
func mix(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}
