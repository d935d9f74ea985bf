package issuequeue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jasonKoogler/axpcore/internal/affinity"
	"github.com/jasonKoogler/axpcore/internal/rob"
)

func alwaysReady(*Entry) bool { return true }

func TestEnqueueUpdatesOccupancyForU0U1(t *testing.T) {
	q := NewQueue()
	e := &Entry{Ins: rob.NewInstruction(), Cap: affinity.CapU0U1}

	q.Enqueue(e)

	if got := q.Occupancy(affinity.SlotU0); got != 1 {
		t.Errorf("Occupancy(U0) = %d, want 1", got)
	}
	if got := q.Occupancy(affinity.SlotU1); got != 1 {
		t.Errorf("Occupancy(U1) = %d, want 1", got)
	}
	if got := q.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestRemoveDecrementsOccupancy(t *testing.T) {
	q := NewQueue()
	e := &Entry{Ins: rob.NewInstruction(), Cap: affinity.CapL0L1U0U1}

	q.Enqueue(e)
	q.Remove(e)

	for _, slot := range []affinity.Slot{affinity.SlotL0, affinity.SlotL1, affinity.SlotU0, affinity.SlotU1} {
		if got := q.Occupancy(slot); got != 0 {
			t.Errorf("Occupancy(%v) = %d, want 0 after remove", slot, got)
		}
	}
	if got := q.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestScanLockedOrdersOldestFirst(t *testing.T) {
	q := NewQueue()
	first := &Entry{Ins: rob.NewInstruction(), Cap: affinity.CapU0}
	second := &Entry{Ins: rob.NewInstruction(), Cap: affinity.CapU0}
	q.Enqueue(first)
	q.Enqueue(second)

	q.mu.Lock()
	got := q.scanLocked(affinity.SlotU0, alwaysReady)
	q.mu.Unlock()

	if got != first {
		t.Errorf("scanLocked returned %p, want the oldest entry %p", got, first)
	}
}

func TestScanLockedSkipsProcessing(t *testing.T) {
	q := NewQueue()
	first := &Entry{Ins: rob.NewInstruction(), Cap: affinity.CapU0, Processing: true}
	second := &Entry{Ins: rob.NewInstruction(), Cap: affinity.CapU0}
	q.Enqueue(first)
	q.Enqueue(second)

	q.mu.Lock()
	got := q.scanLocked(affinity.SlotU0, alwaysReady)
	q.mu.Unlock()

	if got != second {
		t.Errorf("scanLocked returned %p, want %p (the non-processing entry)", got, second)
	}
}

func TestScanLockedAbortedEntryBypassesAffinityAndReadiness(t *testing.T) {
	q := NewQueue()
	ins := rob.NewInstruction()
	v := rob.NewView()
	v.Abort(ins)
	// Capability deliberately does not match the slot under test, and ready
	// always returns false, to show the abort check short-circuits both.
	e := &Entry{Ins: ins, Cap: affinity.CapL0}
	q.Enqueue(e)

	never := func(*Entry) bool { return false }

	q.mu.Lock()
	got := q.scanLocked(affinity.SlotU0, never)
	q.mu.Unlock()

	if got != e {
		t.Fatal("scanLocked did not return the aborted entry")
	}
	if !e.Processing {
		t.Error("aborted entry should be marked Processing so only one worker flushes it")
	}
}

func TestDequeueBlocksUntilEligibleEntryIsEnqueued(t *testing.T) {
	q := NewQueue()
	shuttingDown := func() bool { return false }

	result := make(chan *Entry, 1)
	go func() {
		result <- q.Dequeue(affinity.SlotL0, shuttingDown, alwaysReady)
	}()

	select {
	case <-result:
		t.Fatal("Dequeue returned before any entry was enqueued")
	case <-time.After(20 * time.Millisecond):
	}

	e := &Entry{Ins: rob.NewInstruction(), Cap: affinity.CapL0}
	q.Enqueue(e)

	select {
	case got := <-result:
		if got != e {
			t.Errorf("Dequeue returned %p, want %p", got, e)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake up after Enqueue")
	}
}

func TestDequeueReturnsNilOnShutdown(t *testing.T) {
	q := NewQueue()
	var shuttingDown atomic.Bool

	result := make(chan *Entry, 1)
	go func() {
		result <- q.Dequeue(affinity.SlotL0, shuttingDown.Load, alwaysReady)
	}()

	time.Sleep(20 * time.Millisecond)
	shuttingDown.Store(true)
	q.Broadcast()

	select {
	case got := <-result:
		if got != nil {
			t.Errorf("Dequeue returned %p, want nil on shutdown", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after shutdown broadcast")
	}
}

func TestPoolGetPutRoundTrip(t *testing.T) {
	p := NewPool(2)
	e := p.Get()
	e.Ins = rob.NewInstruction()
	e.Cap = affinity.CapMul
	e.Processing = true

	p.Put(e)

	if e.Ins != nil || e.Cap != affinity.CapNone || e.Processing {
		t.Error("Put did not reset entry before returning it to the pool")
	}
}

func TestPoolGrowsWhenExhausted(t *testing.T) {
	p := NewPool(0)
	e := p.Get()
	if e == nil {
		t.Fatal("Get() returned nil when pool was exhausted, want a freshly allocated Entry")
	}
}
