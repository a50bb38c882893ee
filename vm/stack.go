package vm

import (
	"github.com/coregx/bregex/bytecode"
)

const nilNode = -1

// node is one saved state in the arena. prev and next are arena indexes.
type node struct {
	state bytecode.State
	prev  int
	next  int
}

// Stack is the backtrack stack: a doubly linked list of saved states whose
// nodes live in one arena slice. Nodes are recycled through a free list and
// Reset releases every node at once, so the capture and counter slices
// inside saved states are reused across attempts.
//
// Pointers returned by Last are valid until the next Append.
type Stack struct {
	nodes []node
	used  int // nodes[:used] have been handed out at least once since Reset
	head  int
	tail  int
	free  int
	n     int
}

// NewStack creates an empty stack with room for capacity states.
func NewStack(capacity int) *Stack {
	s := &Stack{nodes: make([]node, 0, capacity)}
	s.Reset()
	return s
}

// Reset empties the stack in O(1), keeping the arena for reuse.
func (s *Stack) Reset() {
	s.used = 0
	s.head = nilNode
	s.tail = nilNode
	s.free = nilNode
	s.n = 0
}

// Len returns the number of saved states.
func (s *Stack) Len() int {
	return s.n
}

// Empty reports whether the stack holds no state.
func (s *Stack) Empty() bool {
	return s.n == 0
}

// Append saves a copy of st on top of the stack.
func (s *Stack) Append(st *bytecode.State) {
	i := s.alloc()
	nd := &s.nodes[i]
	st.CopyTo(&nd.state)
	nd.prev = s.tail
	nd.next = nilNode
	if s.tail != nilNode {
		s.nodes[s.tail].next = i
	} else {
		s.head = i
	}
	s.tail = i
	s.n++
}

// TakeLast copies the top state into dst and removes it.
// It returns false when the stack is empty.
func (s *Stack) TakeLast(dst *bytecode.State) bool {
	if s.tail == nilNode {
		return false
	}
	i := s.tail
	nd := &s.nodes[i]
	nd.state.CopyTo(dst)
	s.unlink(i)
	return true
}

// Last returns the top state without removing it, or nil.
func (s *Stack) Last() *bytecode.State {
	if s.tail == nilNode {
		return nil
	}
	return &s.nodes[s.tail].state
}

// ReplaceLast overwrites the most recently saved state created by the fork
// instruction at fork with a copy of st. It scans from the top and reports
// whether such a state was found.
func (s *Stack) ReplaceLast(fork int, st *bytecode.State) bool {
	for i := s.tail; i != nilNode; i = s.nodes[i].prev {
		if s.nodes[i].state.InitiatingFork == fork {
			st.CopyTo(&s.nodes[i].state)
			return true
		}
	}
	return false
}

// Reverse calls fn for every saved state from the top down until fn
// returns false.
func (s *Stack) Reverse(fn func(*bytecode.State) bool) {
	for i := s.tail; i != nilNode; i = s.nodes[i].prev {
		if !fn(&s.nodes[i].state) {
			return
		}
	}
}

func (s *Stack) alloc() int {
	if s.free != nilNode {
		i := s.free
		s.free = s.nodes[i].next
		return i
	}
	if s.used < len(s.nodes) {
		i := s.used
		s.used++
		return i
	}
	s.nodes = append(s.nodes, node{})
	s.used++
	return len(s.nodes) - 1
}

func (s *Stack) unlink(i int) {
	nd := &s.nodes[i]
	if nd.prev != nilNode {
		s.nodes[nd.prev].next = nd.next
	} else {
		s.head = nd.next
	}
	if nd.next != nilNode {
		s.nodes[nd.next].prev = nd.prev
	} else {
		s.tail = nd.prev
	}
	nd.next = s.free
	nd.prev = nilNode
	s.free = i
	s.n--
}
