// Package engine owns the execution core's worker goroutines: starting one
// per pipeline slot and shutting all of them down cleanly.
package engine

import (
	"sync"

	"github.com/jasonKoogler/axpcore/internal/affinity"
	"github.com/jasonKoogler/axpcore/internal/cpu"
	"github.com/jasonKoogler/axpcore/internal/worker"
)

// slots is the fixed set of pipeline slots the core dispatches across: the
// four integer clusters, plus the two FP clusters.
var slots = [...]affinity.Slot{
	affinity.SlotL0,
	affinity.SlotL1,
	affinity.SlotU0,
	affinity.SlotU1,
	affinity.SlotMul,
	affinity.SlotOther,
}

// Engine starts and stops the worker goroutines bound to a CPU.
type Engine struct {
	cpu *cpu.CPU
	wg  sync.WaitGroup
}

// New returns an Engine for c. Start has not been called yet.
func New(c *cpu.CPU) *Engine {
	return &Engine{cpu: c}
}

// Start spawns one goroutine per pipeline slot, each running
// worker.Worker.Run until Shutdown is called. Start must not be called more
// than once on the same Engine.
func (e *Engine) Start() {
	for _, slot := range slots {
		w := e.cpu.NewWorker(slot)
		e.wg.Add(1)
		go func(w *worker.Worker) {
			defer e.wg.Done()
			w.Run()
		}(w)
	}
}

// Shutdown signals every worker to stop and waits for all of them to
// return.
func (e *Engine) Shutdown() {
	e.cpu.Shutdown()
	e.wg.Wait()
}
