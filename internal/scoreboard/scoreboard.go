// Package scoreboard implements the register scoreboard: a physical-register
// state table tracking whether each register is Free, has a writer in
// flight (PendingUpdate), or holds a committed value (Valid).
package scoreboard

import (
	"fmt"
	"sync"
)

// State is a scoreboard entry's readiness.
type State uint8

const (
	Free State = iota
	PendingUpdate
	Valid
)

func (s State) String() string {
	switch s {
	case Free:
		return "Free"
	case PendingUpdate:
		return "PendingUpdate"
	case Valid:
		return "Valid"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

type entry struct {
	state State
	value uint64
}

// Table is one scoreboard (integer or floating-point), indexed by physical
// register number. The unmapped-register sentinel always reads Valid with
// value 0 and silently ignores writes.
type Table struct {
	mu       sync.RWMutex
	regs     []entry
	unmapped uint8
}

// NewTable allocates a scoreboard with numRegs physical registers. unmapped
// is the sentinel register index (conventionally 31) that always reads
// Valid/0.
func NewTable(numRegs int, unmapped uint8) *Table {
	t := &Table{
		regs:     make([]entry, numRegs),
		unmapped: unmapped,
	}
	t.regs[unmapped] = entry{state: Valid}
	return t
}

// State returns reg's current scoreboard state.
func (t *Table) State(reg uint8) State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.regs[reg].state
}

// Value returns reg's committed value. Only meaningful when State(reg) ==
// Valid.
func (t *Table) Value(reg uint8) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.regs[reg].value
}

// MarkPendingUpdate marks reg as having a writer in flight, as performed by
// the (external) rename/issue stage before an instruction is enqueued. A
// write to the unmapped register is silently ignored.
func (t *Table) MarkPendingUpdate(reg uint8) {
	if reg == t.unmapped {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.regs[reg] = entry{state: PendingUpdate}
}

// MarkFree releases reg back to Free, as performed by the (external) retire
// stage once a physical register is no longer referenced.
func (t *Table) MarkFree(reg uint8) {
	if reg == t.unmapped {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.regs[reg] = entry{state: Free}
}

// CompleteUpdate implements the register-file update protocol: it sets
// reg's value and marks it Valid. Called by the dispatcher via
// cpu.CPU.CompleteWrite, never directly by a worker.
func (t *Table) CompleteUpdate(reg uint8, value uint64) {
	if reg == t.unmapped {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.regs[reg] = entry{state: Valid, value: value}
}
