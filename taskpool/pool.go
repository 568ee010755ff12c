package taskpool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// SetLogger overrides the package logger (mirrors core/wallet.go's
// SetWalletLogger pattern).
func SetLogger(l *logrus.Logger) { log = l }

// Config shapes a Pool (spec §4.10.1).
type Config struct {
	NumPriorityLevels      int
	NumWorkers             int
	MaxQueueSize           int
	NumSubmitCycleAttempts int
	MaxWaitDuration        time.Duration
	NumConditionalSlots    int
}

// defaulted fills in zero-value fields with sane minimums so a caller that
// only sets NumWorkers still gets a usable pool.
func (c Config) defaulted() Config {
	if c.NumPriorityLevels < 1 {
		c.NumPriorityLevels = 1
	}
	if c.NumWorkers < 1 {
		c.NumWorkers = 1
	}
	if c.MaxQueueSize < 1 {
		c.MaxQueueSize = 64
	}
	if c.NumSubmitCycleAttempts < 1 {
		c.NumSubmitCycleAttempts = 2
	}
	if c.MaxWaitDuration <= 0 {
		c.MaxWaitDuration = 50 * time.Millisecond
	}
	if c.NumConditionalSlots < 1 {
		c.NumConditionalSlots = c.NumWorkers
	}
	return c
}

// Pool is the multi-priority, work-stealing-adjacent task pool (spec
// §4.10). Every worker slot, 0 included, has its own worker goroutine; no
// slot is reserved for the owner thread. An owner that wants to help drain
// a slot calls WorkWhileWaiting on it, alongside that slot's worker.
type Pool struct {
	cfg Config

	// queues[priority][worker]
	queues  [][]*simpleQueue
	sleepy  []*sleepyQueue
	counter atomic.Uint64

	waiters *waiterManager

	shuttingDown atomic.Bool
	wg           sync.WaitGroup
}

// New builds a Pool and starts one worker goroutine per slot, cfg.NumWorkers
// in all (spec §4.10.1).
func New(cfg Config) *Pool {
	cfg = cfg.defaulted()
	p := &Pool{
		cfg:     cfg,
		waiters: newWaiterManager(cfg.NumConditionalSlots),
	}
	p.queues = make([][]*simpleQueue, cfg.NumPriorityLevels)
	for lvl := range p.queues {
		p.queues[lvl] = make([]*simpleQueue, cfg.NumWorkers)
		for w := range p.queues[lvl] {
			p.queues[lvl][w] = newSimpleQueue(cfg.MaxQueueSize)
		}
	}
	p.sleepy = make([]*sleepyQueue, cfg.NumWorkers)
	for w := range p.sleepy {
		p.sleepy[w] = newSleepyQueue()
	}

	for w := 0; w < cfg.NumWorkers; w++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.Run(id)
		}(w)
	}
	return p
}

func (p *Pool) clampPriority(priority int) int {
	if priority < 0 {
		return 0
	}
	if priority >= p.cfg.NumPriorityLevels {
		return p.cfg.NumPriorityLevels - 1
	}
	return priority
}

func (p *Pool) numQueuesAtLevel() int { return p.cfg.NumWorkers }

// Submit runs the submission algorithm of spec §4.10.2. now is the
// wall-clock time to compare a Sleepy task's wake time against.
func (p *Pool) Submit(v TaskVariant, now time.Time) {
	switch t := v.(type) {
	case Simple:
		p.submitSimple(t)
	case Sleepy:
		if !now.Before(t.WakeTime) {
			p.submitSimple(t.Inner)
			return
		}
		worker := int(p.counter.Add(1)) % p.cfg.NumWorkers
		p.sleepy[worker].push(t)
		p.waiters.NotifyOne()
	case ScopedNotification:
		t.fire()
	case Empty:
		// nothing to do
	}
}

// submitSimple runs steps 2-4 of spec §4.10.2: cycle queues with try-lock
// pushes, and fall back to an inline push-pop under sustained backpressure.
func (p *Pool) submitSimple(t Simple) {
	priority := p.clampPriority(t.Priority)
	n := p.numQueuesAtLevel()
	start := int(p.counter.Add(1)) % n

	attempts := p.cfg.NumSubmitCycleAttempts * n
	lastFull := start
	for i := 0; i < attempts; i++ {
		idx := (start + i) % n
		if p.queues[priority][idx].tryPush(t) {
			p.waiters.NotifyOne()
			return
		}
		lastFull = idx
	}

	// Every try returned QUEUE_FULL: force-push into the last known full
	// queue, then pop and run its oldest task in-line on this goroutine
	// (spec §4.10.2 step 4).
	q := p.queues[priority][lastFull]
	q.forcePush(t)
	if oldest, ok := q.tryPop(); ok {
		p.execute(oldest)
	}
}

// ForcePush bypasses try-lock cycling entirely, for paths that must never
// block the submitter — re-awakened sleepy tasks and the maintenance pass
// (spec §4.10.2 step 5).
func (p *Pool) ForcePush(t Simple, worker int) {
	priority := p.clampPriority(t.Priority)
	n := p.numQueuesAtLevel()
	if worker < 0 || worker >= n {
		worker = int(p.counter.Add(1)) % n
	}
	p.queues[priority][worker].forcePush(t)
	p.waiters.NotifyOne()
}

// execute runs t and drains its continuation chain in a loop rather than by
// recursing (spec §4.10.5), so a long Simple -> Simple -> ... chain never
// grows the call stack.
func (p *Pool) execute(t Simple) {
	next := t.Fn()
	for {
		switch v := next.(type) {
		case Simple:
			next = v.Fn()
		case Sleepy:
			p.Submit(v, time.Now())
			return
		case ScopedNotification:
			v.fire()
			return
		case Empty:
			return
		default:
			return
		}
	}
}

// Run is one worker's main loop (spec §4.10.3's "Worker loop" and §4.10.4's
// maintenance pass). New already starts one Run per slot.
func (p *Pool) Run(worker int) {
	for !p.shuttingDown.Load() {
		if p.dispatchOnce(worker) {
			p.maintain(worker)
			continue
		}
		p.waitForWork(worker)
	}
	// Drain whatever remains before exiting (spec §4.10.7: "at least one
	// worker finishes all remaining tasks before exiting").
	for p.dispatchOnce(worker) {
		p.maintain(worker)
	}
}

// dispatchOnce cycles simple queues highest-priority-first with try-pop; on
// a miss it attempts to claim the nearest-wake sleepy task (spec §4.10.3
// steps 1-2). It returns true if it ran something.
func (p *Pool) dispatchOnce(worker int) bool {
	for lvl := 0; lvl < p.cfg.NumPriorityLevels; lvl++ {
		if t, ok := p.queues[lvl][worker].tryPop(); ok {
			p.execute(t)
			return true
		}
	}

	sleepyT, ok := p.sleepy[worker].claimEarliest()
	if !ok {
		return false
	}
	return p.runClaimedSleepy(worker, sleepyT)
}

// runClaimedSleepy implements spec §4.10.3 steps 3-5: wait until wake-time
// or max_wait_duration, then re-check. On wake, if a simple task became
// available in the meantime, release the claim back to UNCLAIMED instead of
// running early.
func (p *Pool) runClaimedSleepy(worker int, t Sleepy) bool {
	wait := time.Until(t.WakeTime)
	if wait > p.cfg.MaxWaitDuration {
		wait = p.cfg.MaxWaitDuration
	}
	if wait > 0 && !p.shuttingDown.Load() {
		timer := time.NewTimer(wait)
		<-timer.C
		timer.Stop()
	}

	if p.shuttingDown.Load() || !time.Now().Before(t.WakeTime) {
		t.status.compareAndSwap(Reserved, Dead)
		p.execute(t.Inner)
		p.waiters.NotifyOne()
		return true
	}

	for lvl := 0; lvl < p.cfg.NumPriorityLevels; lvl++ {
		if s, ok := p.queues[lvl][worker].tryPop(); ok {
			p.sleepy[worker].release(t)
			p.execute(s)
			return true
		}
	}
	// Not yet time and nothing else to do; put the claim back and let the
	// caller loop around (a subsequent call re-claims or finds newer work).
	p.sleepy[worker].release(t)
	return false
}

// maintain runs the post-dispatch pass: reap DEAD sleepy tasks and
// force-submit any that are past their wake time, bypassing queue-size
// limits (spec §4.10.4).
func (p *Pool) maintain(worker int) {
	q := p.sleepy[worker]
	if t, ok := q.peekEarliest(); ok && !time.Now().Before(t.WakeTime) {
		if t.status.compareAndSwap(Unclaimed, Dead) {
			p.ForcePush(t.Inner, worker)
		}
	}
	q.sweepDead()
}

// waitForWork blocks worker on the pool's condition variable, bounded by
// MaxWaitDuration to recover from a lost notification (spec §5).
func (p *Pool) waitForWork(worker int) {
	done := make(chan struct{})
	go func() {
		p.waiters.WaitConditional(worker%p.cfg.NumConditionalSlots, func() bool {
			return p.shuttingDown.Load() || p.hasWork(worker)
		})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(p.cfg.MaxWaitDuration):
	}
}

func (p *Pool) hasWork(worker int) bool {
	for lvl := 0; lvl < p.cfg.NumPriorityLevels; lvl++ {
		if len(p.queues[lvl][worker].ch) > 0 {
			return true
		}
	}
	_, ok := p.sleepy[worker].peekEarliest()
	return ok
}

// Shutdown sets the shutdown flag, broadcasts every condition variable, and
// force-awakens sleeping sleepy tasks by zeroing their wake times (spec
// §4.10.7). It waits for every spawned worker to finish draining.
func (p *Pool) Shutdown() {
	p.shuttingDown.Store(true)
	for _, q := range p.sleepy {
		q.forceAwaken()
	}
	p.waiters.BroadcastAll()
	p.wg.Wait()
	log.Info("taskpool: shutdown complete")
}

// WorkWhileWaiting lets the thread owning the pool (or any worker) drain
// tasks from its own slot until ctx is cancelled or until is satisfied
// (Open Question decision: a clean cancellation-flag API rather than the
// incomplete signalling channel the original sources left as a known gap —
// see DESIGN.md).
func WorkWhileWaiting(ctx context.Context, p *Pool, worker int, until func() bool) {
	for {
		if until != nil && until() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !p.dispatchOnce(worker) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Millisecond):
			}
		} else {
			p.maintain(worker)
		}
	}
}
