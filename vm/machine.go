// Package vm runs compiled programs against a view with a backtracking
// virtual machine.
//
// Execution is priority ordered: when an instruction forks, one path
// continues immediately and the other is saved on an arena-backed stack.
// Failure resumes the most recently saved path. Every resumed state is
// hashed, and a state already explored in the current attempt is skipped,
// which keeps patterns like (a|aa)*c from going exponential.
package vm

import (
	"fmt"

	"github.com/coregx/bregex/bytecode"
	"github.com/coregx/bregex/internal/seen"
)

// Machine holds the scratch memory of one execution. It is not safe for
// concurrent use; the matcher pools machines per pattern.
type Machine struct {
	stack   *Stack
	seen    *seen.Set
	scratch bytecode.State
}

// New creates a machine.
func New() *Machine {
	return &Machine{
		stack: NewStack(16),
		seen:  seen.New(64),
	}
}

// Stack exposes the backtrack stack, mainly for inspection in tests.
func (m *Machine) Stack() *Stack {
	return m.stack
}

// Execute runs p from st until the program exits or every alternative has
// failed. st must be positioned at the candidate start with IP 0. On success
// st holds the final position and captures.
//
// operations is incremented once per instruction executed, across calls.
// While in.FailCounter is positive, instructions are not run: each one
// consumes one unit of the budget and fails.
func (m *Machine) Execute(p *bytecode.Program, in *bytecode.Input, st *bytecode.State, operations *int) bool {
	m.stack.Reset()
	m.seen.Clear()
	in.ForkToReplace = bytecode.NoFork

	for {
		ip := st.IP
		op := p.Op(ip)
		*operations++

		var outcome bytecode.Outcome
		if in.FailCounter > 0 {
			in.FailCounter--
			outcome = bytecode.FailedExecuteLowPrioForks
		} else {
			outcome = op.Execute(in, st)
		}

		switch outcome {
		case bytecode.Continue:
			st.IP += op.Size()

		case bytecode.ForkPrioLow:
			st.CopyTo(&m.scratch)
			m.scratch.IP = st.ForkAt
			m.scratch.InitiatingFork = ip
			m.save(in)
			st.IP = ip + op.Size()

		case bytecode.ForkPrioHigh:
			st.CopyTo(&m.scratch)
			m.scratch.IP = ip + op.Size()
			m.scratch.InitiatingFork = ip
			m.save(in)
			st.IP = st.ForkAt

		case bytecode.Succeeded:
			return true

		case bytecode.Failed, bytecode.FailedExecuteLowPrioForks:
			if !m.resume(st) {
				return false
			}

		default:
			panic(fmt.Sprintf("vm: unexpected outcome %v from %s at %d", outcome, op, ip))
		}
	}
}

// save pushes the scratch state, or overwrites the state saved earlier by
// the same fork when the instruction asked for a replacement.
func (m *Machine) save(in *bytecode.Input) {
	if fork := in.ForkToReplace; fork != bytecode.NoFork {
		in.ForkToReplace = bytecode.NoFork
		if m.stack.ReplaceLast(fork, &m.scratch) {
			return
		}
	}
	m.stack.Append(&m.scratch)
}

// resume pops saved states into st until it finds one not explored yet in
// this attempt.
func (m *Machine) resume(st *bytecode.State) bool {
	for m.stack.TakeLast(st) {
		if m.seen.Insert(st.Hash()) {
			return true
		}
	}
	return false
}
