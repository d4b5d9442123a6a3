// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import (
	"runtime"
	"sync/atomic"
)

// sbarrierSlots is the number of rotating slots the staged barrier keeps.
// Four is enough that, with the single-slot clear-the-previous-slot rule
// below, a thread can never lap another thread still spinning on an old
// slot in the ColBP iteration patterns this engine uses (at most one
// sbarrier call outstanding at a time per phase boundary).
const sbarrierSlots = 4

// StagedBarrier is a rotating-slot, all-threads rendezvous built from
// plain atomic counters and busy-waiting, for the high-frequency phase
// synchronization inside ColBP iterations where Barrier's mutex would
// dominate. It busy-waits intentionally: contention windows inside a
// ColBP iteration are short, and an OS-scheduled wait would cost far more
// than the spin.
//
// StagedBarrier is correct only if every one of the n participating
// threads calls Arrive the same number of times per phase — this is an
// implementer contract, not something StagedBarrier can check.
type StagedBarrier struct {
	n       int32
	slots   [sbarrierSlots]atomic.Int32
	aborted atomic.Bool
}

// NewStagedBarrier creates a staged barrier for exactly n participants.
func NewStagedBarrier(n int) *StagedBarrier {
	return &StagedBarrier{n: int32(n)}
}

// stepCounter tracks, per worker, how many times it has called Arrive.
// Callers own one of these per worker and pass it to every Arrive call
// for that worker.
type stepCounter struct {
	step int
}

// NewStepCounter returns a fresh per-worker step counter starting at 0.
func NewStepCounter() *stepCounter { return &stepCounter{} }

// Arrive increments the current slot's counter, spins until it reaches n,
// applies an acquire/release fence (implicit in the atomic operations
// Go's memory model guarantees), and — for exactly one designated thread —
// clears the *previous* slot so it's ready for reuse four steps later.
// tid identifies the calling worker only to select the single thread (tid
// == 0) that performs the previous-slot clear; every worker must still
// call Arrive itself.
func (b *StagedBarrier) Arrive(tid int, sc *stepCounter) {
	if b.aborted.Load() {
		return
	}

	slot := sc.step % sbarrierSlots
	prevSlot := (sc.step - 1 + sbarrierSlots) % sbarrierSlots
	sc.step++

	counter := &b.slots[slot]
	if counter.Add(1) != b.n {
		for counter.Load() != b.n {
			if b.aborted.Load() {
				return
			}
			runtime.Gosched()
		}
	}

	// The rendezvous for this slot has completed (via the fast path above
	// or by observing the spin condition), regardless of which thread's
	// Add happened to land on b.n. Exactly one thread must reset the prior
	// slot so it's ready for reuse sbarrierSlots steps from now; tid == 0
	// always participates in this round, so it's a safe single elector.
	if tid == 0 {
		b.slots[prevSlot].Store(0)
	}
}

// Abort releases every goroutine currently or later spinning in Arrive
// without requiring the full participant count, so a worker that hit a
// fatal error and can never call Arrive again doesn't strand its peers.
func (b *StagedBarrier) Abort() {
	b.aborted.Store(true)
}
