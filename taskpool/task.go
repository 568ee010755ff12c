// Package taskpool implements the multi-priority, work-stealing-adjacent
// task pool (spec §4.10): bounded per-priority simple queues, sleepy tasks
// with a wake-time ordered claim protocol, a three-class waiter manager, and
// loop-based (non-recursive) continuation submission.
package taskpool

import (
	"time"

	"github.com/google/uuid"
)

// SleepyStatus is the atomic state of a Sleepy task (spec §3.10).
type SleepyStatus byte

const (
	Unclaimed SleepyStatus = iota
	Reserved
	Dead
)

func (s SleepyStatus) String() string {
	switch s {
	case Unclaimed:
		return "UNCLAIMED"
	case Reserved:
		return "RESERVED"
	case Dead:
		return "DEAD"
	default:
		return "?"
	}
}

// Fn is the executable body of a Simple task. It returns the next
// TaskVariant to run as a continuation, or Empty{} to end the chain.
type Fn func() TaskVariant

// TaskVariant is the closed sum type a task evaluates to (spec §3.10):
// Simple, Sleepy, ScopedNotification, or Empty. Its method set is
// unexported so nothing outside this package can add a fifth variant.
type TaskVariant interface {
	isTaskVariant()
}

// Empty is the terminal continuation: nothing left to run.
type Empty struct{}

func (Empty) isTaskVariant() {}

// Simple is an ordinary prioritized unit of work.
type Simple struct {
	Priority int
	Fn       Fn
	debugID  uuid.UUID
}

func (Simple) isTaskVariant() {}

// NewSimple builds a Simple task carrying a fresh debug id, grounded on the
// teacher's use of uuid for correlating asynchronous work across logs.
func NewSimple(priority int, fn Fn) Simple {
	return Simple{Priority: priority, Fn: fn, debugID: uuid.New()}
}

// Sleepy wraps an inner Simple task with a wake-time; it is not eligible to
// run until wall-clock reaches WakeTime (spec §4.10.3). Status transitions
// are single-writer per slot (spec §3.10's "RESERVED transitions are
// strictly single-writer").
type Sleepy struct {
	Inner    Simple
	WakeTime time.Time
	status   *atomicStatus
}

func (Sleepy) isTaskVariant() {}

// NewSleepy builds a Sleepy task that wakes at start.Add(duration).
func NewSleepy(inner Simple, start time.Time, duration time.Duration) Sleepy {
	return Sleepy{Inner: inner, WakeTime: start.Add(duration), status: newAtomicStatus(Unclaimed)}
}

// ScopedNotification fires FnOnDestroy exactly once when it is dropped —
// i.e. when the worker loop discards it after running its (no-op) body —
// regardless of which exit path triggers the drop (spec §4.10.5). A
// panicking callback is recovered so it can never abort the worker loop
// (Open Question decision, see DESIGN.md).
type ScopedNotification struct {
	FnOnDestroy func()
}

func (ScopedNotification) isTaskVariant() {}

// fire invokes FnOnDestroy exactly once, swallowing any panic — drop-time
// callbacks must not throw (spec §7 Open Questions: "the ScopedNotification
// swallows exceptions in destructors; that pattern is deliberate").
func (s ScopedNotification) fire() {
	if s.FnOnDestroy == nil {
		return
	}
	defer func() { _ = recover() }()
	s.FnOnDestroy()
}

// atomicStatus is a tiny acquire/release byte wrapper (spec §5: "Sleepy task
// status: atomic byte, acquire/release ordering"), grounded on sync/atomic's
// Uint32 (no native Uint8 in the stdlib).
type atomicStatus struct {
	v uint32
}

func newAtomicStatus(s SleepyStatus) *atomicStatus {
	a := &atomicStatus{}
	a.store(s)
	return a
}
