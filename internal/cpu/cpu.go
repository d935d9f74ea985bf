// Package cpu provides the execution core's aggregate: both issue queues
// and their free pools, both scoreboard tables, the ROB view, the IPR FPE
// block, and the glue operations (registers_ready, the issue-stage
// convenience helper, the register-file update protocol) that only make
// sense with the whole aggregate in scope.
package cpu

import (
	"sync/atomic"

	"github.com/jasonKoogler/axpcore/internal/affinity"
	"github.com/jasonKoogler/axpcore/internal/config"
	"github.com/jasonKoogler/axpcore/internal/ipr"
	"github.com/jasonKoogler/axpcore/internal/issuequeue"
	"github.com/jasonKoogler/axpcore/internal/rob"
	"github.com/jasonKoogler/axpcore/internal/scoreboard"
	"github.com/jasonKoogler/axpcore/internal/worker"
)

// lifecycleState is a lock-free running/shutting-down flag for the core's
// workers.
type lifecycleState int32

const (
	stateRunning lifecycleState = iota
	stateShuttingDown
)

// CPU is the execution core's shared state.
type CPU struct {
	EBox  *issuequeue.Queue
	FBox  *issuequeue.Queue
	EPool *issuequeue.Pool
	FPool *issuequeue.Pool

	IntRegs *scoreboard.Table
	FPRegs  *scoreboard.Table

	ROB *rob.View
	IPR *ipr.Block

	Dispatcher  worker.Dispatcher
	UnmappedReg uint8

	state lifecycleState

	executed atomic.Int64
	aborted  atomic.Int64
	faulted  atomic.Int64
}

// New builds a CPU from cfg, with dispatch as the external Dispatcher. The
// six worker goroutines are not started here; see internal/engine.
func New(cfg *config.Config, dispatch worker.Dispatcher) *CPU {
	c := &CPU{
		EBox:        issuequeue.NewQueue(),
		FBox:        issuequeue.NewQueue(),
		EPool:       issuequeue.NewPool(cfg.EBoxPoolSize),
		FPool:       issuequeue.NewPool(cfg.FBoxPoolSize),
		IntRegs:     scoreboard.NewTable(cfg.NumIntPhysRegs, cfg.UnmappedReg),
		FPRegs:      scoreboard.NewTable(cfg.NumFPPhysRegs, cfg.UnmappedReg),
		ROB:         rob.NewView(),
		IPR:         ipr.NewBlock(cfg.FPEnabledAtStartup),
		Dispatcher:  dispatch,
		UnmappedReg: cfg.UnmappedReg,
	}
	return c
}

// ShuttingDown reports whether Shutdown has been called. Workers poll this
// both in their outer loop and inside the queue's wait predicate.
func (c *CPU) ShuttingDown() bool {
	return lifecycleState(atomic.LoadInt32((*int32)(&c.state))) == stateShuttingDown
}

// Shutdown transitions the core to ShuttingDown and wakes every worker
// suspended on either queue's condition variable.
func (c *CPU) Shutdown() {
	atomic.StoreInt32((*int32)(&c.state), int32(stateShuttingDown))
	c.EBox.Broadcast()
	c.FBox.Broadcast()
}

// RegistersReady implements registers_ready, selecting the integer or FP
// scoreboard table per operand per the instruction's type bits. src2's
// value is always copied from src2's own table into ins.Src2V, never from
// src1's table.
func (c *CPU) RegistersReady(e *issuequeue.Entry) bool {
	ins := e.Ins

	src1Table := c.IntRegs
	if ins.Src1IsFP {
		src1Table = c.FPRegs
	}
	src2Table := c.IntRegs
	if ins.Src2IsFP {
		src2Table = c.FPRegs
	}
	destTable := c.IntRegs
	if ins.DestIsFP {
		destTable = c.FPRegs
	}

	if src1Table.State(ins.Src1) != scoreboard.Valid {
		return false
	}
	if src2Table.State(ins.Src2) != scoreboard.Valid {
		return false
	}

	wantDest := scoreboard.PendingUpdate
	if ins.Dest == c.UnmappedReg {
		wantDest = scoreboard.Valid
	}
	if destTable.State(ins.Dest) != wantDest {
		return false
	}

	ins.Src1V = src1Table.Value(ins.Src1)
	ins.Src2V = src2Table.Value(ins.Src2)
	return true
}

// Issue is the concrete Go surface for the issue stage's enqueue(queue,
// entry) contract: it marks the destination register PendingUpdate (unless
// it is the unmapped register), obtains an Entry from the correct cluster's
// pool, and enqueues it. Full rename/decode logic remains external and out
// of scope; this is plumbing for constructing realistic scenarios, not a
// rename implementation.
func (c *CPU) Issue(ins *rob.Instruction, cap affinity.Cap) *issuequeue.Entry {
	destTable := c.IntRegs
	if ins.DestIsFP {
		destTable = c.FPRegs
	}
	if ins.Dest != c.UnmappedReg {
		destTable.MarkPendingUpdate(ins.Dest)
	}

	queue, pool := c.EBox, c.EPool
	if cap == affinity.CapMul || cap == affinity.CapOther {
		queue, pool = c.FBox, c.FPool
	}

	e := pool.Get()
	e.Ins = ins
	e.Cap = cap
	queue.Enqueue(e)
	return e
}

// CompleteWrite implements the register-file update protocol: it is called
// by the dispatcher, never by a worker, on successful completion of an
// instruction's semantics. It marks the destination register Valid and
// wakes both queues, since completion may make a previously-blocked entry
// elsewhere in either queue newly ready.
func (c *CPU) CompleteWrite(ins *rob.Instruction, result uint64) {
	destTable := c.IntRegs
	if ins.DestIsFP {
		destTable = c.FPRegs
	}
	destTable.CompleteUpdate(ins.Dest, result)

	c.EBox.Broadcast()
	c.FBox.Broadcast()
}

// NewWorker constructs a worker.Worker bound to slot, wired to the correct
// cluster's queue and pool and to this CPU's shared state. The FPE gate
// only applies to FP-cluster workers.
func (c *CPU) NewWorker(slot affinity.Slot) *worker.Worker {
	queue, pool := c.EBox, c.EPool
	if slot.IsFP() {
		queue, pool = c.FBox, c.FPool
	}

	return &worker.Worker{
		Slot:           slot,
		Queue:          queue,
		Pool:           pool,
		ROB:            c.ROB,
		RegistersReady: c.RegistersReady,
		ShuttingDown:   c.ShuttingDown,
		Dispatch: func(ins *rob.Instruction) {
			c.Dispatcher(ins)
			c.executed.Add(1)
		},
		FPGate: func() bool {
			if !slot.IsFP() {
				return true
			}
			return c.IPR.FPE()
		},
		OnAbort: func() { c.aborted.Add(1) },
		OnFault: func() { c.faulted.Add(1) },
	}
}

// Stats is a point-in-time snapshot of the core's execution counters.
type Stats struct {
	Executed int64
	Aborted  int64
	Faulted  int64
}

// Stats returns the current execution counters.
func (c *CPU) Stats() Stats {
	return Stats{
		Executed: c.executed.Load(),
		Aborted:  c.aborted.Load(),
		Faulted:  c.faulted.Load(),
	}
}
