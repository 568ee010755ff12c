package taskpool

import (
	"sync"
	"time"
)

// simpleQueue is one (priority, worker) cell (spec §4.10.1). A buffered Go
// channel already gives a bounded, try-lock-pushable, try-lock-poppable
// queue natively, so this wraps one instead of hand-rolling a mutex-guarded
// ring buffer the way core/connection_pool.go guards its conn slices — the
// channel's own internal lock plays that role here.
type simpleQueue struct {
	ch chan Simple
}

func newSimpleQueue(capacity int) *simpleQueue {
	return &simpleQueue{ch: make(chan Simple, capacity)}
}

// tryPush attempts a non-blocking send, returning false on QUEUE_FULL.
func (q *simpleQueue) tryPush(t Simple) bool {
	select {
	case q.ch <- t:
		return true
	default:
		return false
	}
}

// forcePush blocks until there is room: the fallback path spec §4.10.2 step
// 5 names for callers (re-awakened sleepy tasks, the maintenance pass) that
// must never silently drop work.
func (q *simpleQueue) forcePush(t Simple) {
	q.ch <- t
}

// tryPop attempts a non-blocking receive.
func (q *simpleQueue) tryPop() (Simple, bool) {
	select {
	case t := <-q.ch:
		return t, true
	default:
		return Simple{}, false
	}
}

// sleepyQueue is one worker's sleepy-task store (spec §4.10.1): a
// mutex-guarded slice scanned for the smallest wake time on claim, grounded
// on core/connection_pool.go's mutex-guarded slice idiom (its idle-conn
// list, reaped the same way this sweeps DEAD entries).
type sleepyQueue struct {
	mu    sync.Mutex
	tasks []Sleepy
}

func newSleepyQueue() *sleepyQueue {
	return &sleepyQueue{}
}

func (q *sleepyQueue) push(t Sleepy) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
}

// peekEarliest returns the not-yet-claimed task with the smallest wake time
// without claiming it, so the caller can decide how long to wait.
func (q *sleepyQueue) peekEarliest() (Sleepy, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.earliestUnclaimedLocked()
}

func (q *sleepyQueue) earliestUnclaimedLocked() (Sleepy, bool) {
	var best Sleepy
	found := false
	for _, t := range q.tasks {
		if t.status.load() != Unclaimed {
			continue
		}
		if !found || t.WakeTime.Before(best.WakeTime) {
			best, found = t, true
		}
	}
	return best, found
}

// claimEarliest attempts the UNCLAIMED -> RESERVED transition on the
// earliest unclaimed task (spec §4.10.3 step 2).
func (q *sleepyQueue) claimEarliest() (Sleepy, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		t, ok := q.earliestUnclaimedLocked()
		if !ok {
			return Sleepy{}, false
		}
		if t.status.compareAndSwap(Unclaimed, Reserved) {
			return t, true
		}
		// Lost a race to another claimant on the same slot; retry against
		// whatever is now earliest.
	}
}

// release returns a reserved task to UNCLAIMED (spec §4.10.3 step 5: "a
// simple task became available mid-wait").
func (q *sleepyQueue) release(t Sleepy) {
	t.status.compareAndSwap(Reserved, Unclaimed)
}

// sweepDead removes every DEAD entry (spec §4.10.4 maintenance pass).
func (q *sleepyQueue) sweepDead() {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.tasks[:0]
	for _, t := range q.tasks {
		if t.status.load() == Dead {
			continue
		}
		kept = append(kept, t)
	}
	q.tasks = kept
}

// forceAwaken zeroes every sleeping task's wake-time so the next claim
// attempt fires immediately (spec §4.10.7 shutdown: "force-awakened by
// zeroing their wake-times").
func (q *sleepyQueue) forceAwaken() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.tasks {
		q.tasks[i].WakeTime = time.Time{}
	}
}
