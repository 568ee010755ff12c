package taskpool

import "sync/atomic"

func (a *atomicStatus) load() SleepyStatus {
	return SleepyStatus(atomic.LoadUint32(&a.v))
}

func (a *atomicStatus) store(s SleepyStatus) {
	atomic.StoreUint32(&a.v, uint32(s))
}

// compareAndSwap performs the single-writer-per-slot UNCLAIMED -> RESERVED
// (and RESERVED -> UNCLAIMED / RESERVED -> DEAD) transitions spec §3.10 and
// §4.10.3 require.
func (a *atomicStatus) compareAndSwap(old, new SleepyStatus) bool {
	return atomic.CompareAndSwapUint32(&a.v, uint32(old), uint32(new))
}
