// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStagedBarrierRendezvous(t *testing.T) {
	const n = 6
	const steps = 10
	bar := NewStagedBarrier(n)

	var wg sync.WaitGroup
	wg.Add(n)
	var maxObserved atomic.Int32

	for tid := 0; tid < n; tid++ {
		go func(tid int) {
			defer wg.Done()
			sc := NewStepCounter()
			var inPhase atomic.Int32
			for s := 0; s < steps; s++ {
				inPhase.Add(1)
				bar.Arrive(tid, sc)
				if v := inPhase.Load(); v > maxObserved.Load() {
					maxObserved.Store(v)
				}
			}
		}(tid)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("staged barrier never completed all steps")
	}
}

// TestStagedBarrierSurvivesManyRoundsWhenTidZeroIsNeverLast runs far more
// rounds than sbarrierSlots while holding tid 0 back on every Arrive call,
// so it is essentially never the thread whose Add lands on n. If the
// previous-slot clear only happened on that fast path, a slot would be
// reused with a stale counter after sbarrierSlots rounds and every
// goroutine would hang forever.
func TestStagedBarrierSurvivesManyRoundsWhenTidZeroIsNeverLast(t *testing.T) {
	const n = 5
	const steps = sbarrierSlots*20 + 3
	bar := NewStagedBarrier(n)

	var wg sync.WaitGroup
	wg.Add(n)
	for tid := 0; tid < n; tid++ {
		go func(tid int) {
			defer wg.Done()
			sc := NewStepCounter()
			for s := 0; s < steps; s++ {
				if tid == 0 {
					time.Sleep(time.Microsecond)
				}
				bar.Arrive(tid, sc)
			}
		}(tid)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("staged barrier deadlocked across repeated slot reuse")
	}
}

func TestStagedBarrierAbortUnblocksWaiters(t *testing.T) {
	const n = 4
	bar := NewStagedBarrier(n)

	var wg sync.WaitGroup
	wg.Add(n - 1)
	for tid := 0; tid < n-1; tid++ {
		go func(tid int) {
			defer wg.Done()
			sc := NewStepCounter()
			bar.Arrive(tid, sc)
		}(tid)
	}

	time.Sleep(20 * time.Millisecond)
	bar.Abort()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Abort did not unblock spinning goroutines")
	}
}
