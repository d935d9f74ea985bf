// Package issuequeue implements the counted issue queue: a doubly-linked
// list of loaned Entry records with a per-cluster occupancy vector, drained
// by execution workers under a mutex/condition-variable pair.
package issuequeue

import (
	"fmt"
	"sync"

	"github.com/jasonKoogler/axpcore/internal/affinity"
	"github.com/jasonKoogler/axpcore/internal/rob"
)

// Entry is a queue node, owned by a Pool and on loan to exactly one Queue
// while linked: an intrusive list node whose prev/next live on the entry
// itself rather than in a wrapper element.
type Entry struct {
	Ins        *rob.Instruction
	Cap        affinity.Cap
	Processing bool

	prev, next *Entry
}

// reset clears an entry back to its pool-owned zero state.
func (e *Entry) reset() {
	e.Ins = nil
	e.Cap = affinity.CapNone
	e.Processing = false
	e.prev = nil
	e.next = nil
}

// Pool is the free-pool allocator/deallocator for Entry records.
type Pool struct {
	mu   sync.Mutex
	free []*Entry
}

// NewPool preallocates a pool of size entries.
func NewPool(size int) *Pool {
	p := &Pool{free: make([]*Entry, 0, size)}
	for i := 0; i < size; i++ {
		p.free = append(p.free, &Entry{})
	}
	return p
}

// Get removes and returns an entry from the pool, allocating a fresh one if
// the pool is exhausted.
func (p *Pool) Get() *Entry {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.free)
	if n == 0 {
		return &Entry{}
	}
	e := p.free[n-1]
	p.free = p.free[:n-1]
	return e
}

// Put returns e to the pool after resetting it.
func (p *Pool) Put(e *Entry) {
	e.reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.free = append(p.free, e)
}

// Queue is a counted, doubly-linked FIFO of Entry records guarded by a
// single mutex, with a condition variable execution workers suspend on. The
// list uses a sentinel header node so insertion/removal never special-cases
// the empty list.
type Queue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	sentinel  Entry
	count     int
	occupancy [6]int // indexed by affinity.Slot
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.sentinel.next = &q.sentinel
	q.sentinel.prev = &q.sentinel
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends e to the tail, updates the cluster-occupancy vector for
// every slot e's capability matches, and broadcasts the condition variable
// so any suspended worker re-scans. This is the issue stage's enqueue(queue,
// entry) contract.
func (q *Queue) Enqueue(e *Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e.prev = q.sentinel.prev
	e.next = &q.sentinel
	q.sentinel.prev.next = e
	q.sentinel.prev = e
	q.count++

	for _, slot := range affinity.AffectedSlots(e.Cap) {
		q.occupancy[slot]++
	}

	q.cond.Broadcast()
}

// unlink removes e from the list and updates occupancy counters. Caller
// must hold q.mu.
func (q *Queue) unlink(e *Entry) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
	q.count--

	for _, slot := range affinity.AffectedSlots(e.Cap) {
		if q.occupancy[slot] <= 0 {
			panic(fmt.Sprintf("issuequeue: occupancy underflow for slot %v", slot))
		}
		q.occupancy[slot]--
	}
}

// Remove unlinks e from the queue and clears its Processing flag, returning
// it unlinked but still pool-owned (the caller is responsible for returning
// it to the pool).
func (q *Queue) Remove(e *Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.unlink(e)
	e.Processing = false
}

// Broadcast wakes every worker suspended on the queue's condition variable,
// without otherwise touching queue state. Used by shutdown and by the
// register-file update protocol (completion may make a previously-blocked
// entry's registers ready).
func (q *Queue) Broadcast() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cond.Broadcast()
}

// Len reports the number of linked entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Occupancy reports the cluster-occupancy counter for slot.
func (q *Queue) Occupancy(slot affinity.Slot) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.occupancy[slot]
}

// ReadyFunc reports whether e's registers are ready for dispatch, copying
// operand values as a side effect when it returns true. Implemented by
// cpu.CPU.RegistersReady; kept as a function value here so this package has
// no dependency on the scoreboard package.
type ReadyFunc func(e *Entry) bool

// scanLocked implements find_eligible. Caller must hold q.mu.
func (q *Queue) scanLocked(slot affinity.Slot, ready ReadyFunc) *Entry {
	for e := q.sentinel.next; e != &q.sentinel; e = e.next {
		if e.Processing {
			continue
		}
		if e.Ins.State() == rob.Aborted {
			e.Processing = true
			return e
		}
		if affinity.Eligible(slot, e.Cap) && ready(e) {
			e.Processing = true
			return e
		}
	}
	return nil
}

// Dequeue implements the wait-and-scan steps of the execution worker loop:
// it blocks until an entry is eligible for slot or shuttingDown reports
// true, in which case it returns nil holding no lock. On return with a
// non-nil entry, the entry is still linked in the queue with Processing
// set; the caller (the worker) is responsible for the ROB abort check
// before unlinking it via Remove.
func (q *Queue) Dequeue(slot affinity.Slot, shuttingDown func() bool, ready ReadyFunc) *Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	nothingReadyForMe := false
	for {
		for !shuttingDown() && (q.count == 0 || q.occupancy[slot] == 0 || nothingReadyForMe) {
			nothingReadyForMe = false
			q.cond.Wait()
		}
		if shuttingDown() {
			return nil
		}
		if e := q.scanLocked(slot, ready); e != nil {
			return e
		}
		nothingReadyForMe = true
	}
}
