// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync"
)

// Pinner pins the calling OS thread to a specific logical CPU. Implementations
// live outside this package (see internal/affinity) so that workerpool has no
// platform-specific build tags of its own; Launch only needs the interface.
type Pinner interface {
	Pin(cpu int) error
}

// noopPinner implements Pinner without pinning anything, used when callers
// don't have (or don't want) CPU affinity control.
type noopPinner struct{}

func (noopPinner) Pin(int) error { return nil }

// NoopPinner is a Pinner that never pins, for tests and platforms without
// affinity support.
var NoopPinner Pinner = noopPinner{}

// Launch starts exactly len(cpus) persistent worker goroutines, one per
// entry in cpus, and blocks until all of them return from fn.
//
// Launch is for a single long-lived parallel phase where each worker needs
// a stable identity (its index into cpus) for the lifetime of the call —
// e.g. a barrier-synchronized pipeline where worker tid must satisfy
// `tid mod numGroups == group` throughout. Each goroutine locks itself to
// its OS thread (runtime.LockOSThread) before attempting to pin, since CPU
// affinity is a property of the OS thread, not the goroutine.
//
// pinErrs[i] is set to the error, if any, returned by pinner.Pin(cpus[i]);
// callers that treat pinning as a performance hint rather than a
// correctness requirement can log and ignore these errors.
func Launch(cpus []int, pinner Pinner, fn func(tid int)) (pinErrs []error) {
	if pinner == nil {
		pinner = NoopPinner
	}

	n := len(cpus)
	pinErrs = make([]error, n)

	var wg sync.WaitGroup
	wg.Add(n)

	for tid := range n {
		cpu := cpus[tid]
		go func(tid, cpu int) {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()

			pinErrs[tid] = pinner.Pin(cpu)
			fn(tid)
		}(tid, cpu)
	}

	wg.Wait()
	return pinErrs
}
