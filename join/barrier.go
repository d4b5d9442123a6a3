// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "sync"

// Barrier is a one-shot, thread-safe, reusable rendezvous point for all N
// worker threads. Arrive blocks the calling goroutine until all N
// goroutines have called Arrive on this cycle, then releases all of them
// together; the barrier can immediately be reused for the next phase.
//
// Arrive establishes happens-before between the pre- and post-barrier
// actions of every worker: the mutex plus condition variable give every
// waiter a full acquire/release on release.
type Barrier struct {
	n int

	mu      sync.Mutex
	cond    *sync.Cond
	count   int
	release int  // incremented each time the barrier releases, guards spurious wakeups
	aborted bool // set by Abort when a worker hit a fatal error and can't arrive
}

// NewBarrier creates a barrier for exactly n participants.
func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Arrive blocks until all n participants have called Arrive for the
// current cycle, or returns immediately if the barrier has been aborted.
func (b *Barrier) Arrive() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.aborted {
		return
	}

	gen := b.release
	b.count++
	if b.count == b.n {
		b.count = 0
		b.release++
		b.cond.Broadcast()
		return
	}
	for gen == b.release && !b.aborted {
		b.cond.Wait()
	}
}

// Abort releases every goroutine currently or later blocked in Arrive
// without requiring the full participant count, so a worker that hit a
// fatal error and can never call Arrive again doesn't strand its peers.
func (b *Barrier) Abort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.aborted = true
	b.cond.Broadcast()
}
