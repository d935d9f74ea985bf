// Package worker implements the execution worker: the perpetual
// wait/scan/abort-check/dispatch loop bound to one pipeline slot, grounded
// almost line-for-line on AXP_Execution_Box in AXP_Execute_Box.c.
package worker

import (
	"github.com/jasonKoogler/axpcore/internal/affinity"
	"github.com/jasonKoogler/axpcore/internal/issuequeue"
	"github.com/jasonKoogler/axpcore/internal/rob"
)

// Dispatcher is the external collaborator contract: given the decoded
// instruction, compute its semantics, write the result via the
// register-file update protocol, and transition state to WaitingRetirement.
type Dispatcher func(ins *rob.Instruction)

// Worker is one of the six execution workers (E0-E3, F0, F1). Every field
// is supplied by cpu.CPU.NewWorker; the per-cluster differences (which
// queue, which pool, whether the FPE gate applies) are captured here as
// plain struct fields and closures rather than dispatched through a
// function-pointer table.
type Worker struct {
	Slot affinity.Slot

	Queue *issuequeue.Queue
	Pool  *issuequeue.Pool
	ROB   *rob.View

	RegistersReady issuequeue.ReadyFunc
	ShuttingDown   func() bool
	Dispatch       Dispatcher

	// FPGate reports whether dispatch is currently permitted. Always true
	// for integer workers; reads the IPR FPE bit for FP workers.
	FPGate func() bool

	// OnAbort and OnFault are optional observability hooks invoked on the
	// abort-flush and FP-disabled-fault paths respectively; nil is fine.
	OnAbort func()
	OnFault func()
}

// Run executes the worker's perpetual loop until ShuttingDown reports true.
// It returns holding no locks.
func (w *Worker) Run() {
	for !w.ShuttingDown() {
		// W1 + W2: wait for work, scan for an eligible entry.
		e := w.Queue.Dequeue(w.Slot, w.ShuttingDown, w.RegistersReady)
		if e == nil {
			return
		}

		// W3: check abort under the ROB lock.
		prev := w.ROB.TryBeginExecution(e.Ins)
		if prev == rob.Aborted {
			w.flush(e)
			continue
		}

		w.dispatch(e)
	}
}

// flush implements W4a: unlink the entry, return it to the pool, without
// invoking the dispatcher.
func (w *Worker) flush(e *issuequeue.Entry) {
	w.Queue.Remove(e)
	w.Pool.Put(e)
	if w.OnAbort != nil {
		w.OnAbort()
	}
}

// dispatch implements W4b: unlink the entry, gate on FPE for FP workers,
// invoke the dispatcher (or raise FloatingDisabledFault), return the entry
// to the pool.
func (w *Worker) dispatch(e *issuequeue.Entry) {
	w.Queue.Remove(e)

	if w.FPGate() {
		w.Dispatch(e.Ins)
	} else {
		w.ROB.Fault(e.Ins, rob.FloatingDisabledFault)
		if w.OnFault != nil {
			w.OnFault()
		}
	}

	w.Pool.Put(e)
}
