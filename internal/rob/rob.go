// Package rob provides the reorder-buffer view the execution core consults:
// per-instruction lifecycle state and exception mask, guarded by a single
// ROB mutex, with the Aborted transition observable without acquiring that
// mutex.
package rob

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// State is an instruction's position in the reorder-buffer lifecycle.
type State int32

const (
	Retired State = iota
	Queued
	Executing
	WaitingRetirement
	Aborted
)

func (s State) String() string {
	switch s {
	case Retired:
		return "Retired"
	case Queued:
		return "Queued"
	case Executing:
		return "Executing"
	case WaitingRetirement:
		return "WaitingRetirement"
	case Aborted:
		return "Aborted"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ExceptionMask is a bitset of architectural exception kinds recognized
// within the execution core's scope.
type ExceptionMask uint32

const NoException ExceptionMask = 0

const (
	FloatingDisabledFault ExceptionMask = 1 << iota
	AccessViolation
	AlignmentFault
	FaultOnRead
	FaultOnWrite
	TranslationNotValid
)

// Instruction is the decoded instruction record owned by the ROB. The
// pointer to it is shared by the issue queue entry, the execution worker,
// and the dispatcher. Mutations of the lifecycle state and ExcRegMask go
// through View so the locking discipline holds; the operand slots (Src1V,
// Src2V, DestV) are written directly by the readiness check and dispatcher.
type Instruction struct {
	PC           uint64
	Opcode       uint8
	Displacement int64

	Src1, Src2, Dest          uint8
	Src1IsFP, Src2IsFP, DestIsFP bool

	Src1V, Src2V, DestV uint64

	ExcRegMask ExceptionMask // guarded by the owning View's mutex

	state atomic.Int32
}

// NewInstruction returns an Instruction in the Queued state, as produced by
// the (external) issue stage.
func NewInstruction() *Instruction {
	ins := &Instruction{}
	ins.state.Store(int32(Queued))
	return ins
}

// State reads the instruction's current lifecycle state. This is safe to
// call without holding the ROB mutex — in particular the issue stage's
// "Queued → Aborted is observable at any time" invariant relies on this
// being a plain atomic load, not a robMutex-guarded field access.
func (ins *Instruction) State() State {
	return State(ins.state.Load())
}

func (ins *Instruction) setState(s State) {
	ins.state.Store(int32(s))
}

// View is the ROB's mutex-guarded transition surface. All state transitions,
// including Queued→Aborted (performed by external speculative-rollback logic
// via Abort), go through View so they are serialized against each other.
type View struct {
	mu sync.Mutex
}

// NewView returns an empty ROB view.
func NewView() *View {
	return &View{}
}

// TryBeginExecution attempts the Queued→Executing transition and reports the
// instruction's state as observed under the ROB lock. If the observed state
// is Aborted, the caller must not dispatch and must instead flush the entry.
func (v *View) TryBeginExecution(ins *Instruction) State {
	v.mu.Lock()
	defer v.mu.Unlock()

	prev := ins.State()
	if prev == Queued {
		ins.setState(Executing)
	}
	return prev
}

// SetWaitingRetirement transitions ins to WaitingRetirement, as performed by
// the dispatcher on successful completion.
func (v *View) SetWaitingRetirement(ins *Instruction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ins.setState(WaitingRetirement)
}

// Fault records an exception on ins and transitions it to WaitingRetirement
// for the retire stage to observe: exceptions are surfaced, never locally
// recovered.
func (v *View) Fault(ins *Instruction, mask ExceptionMask) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ins.ExcRegMask |= mask
	ins.setState(WaitingRetirement)
}

// Abort marks ins Aborted. Called by external speculative-rollback logic
// (issue or retire stage), not by a worker.
func (v *View) Abort(ins *Instruction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	ins.setState(Aborted)
}
