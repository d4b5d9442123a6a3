// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

//go:build linux

package affinity

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Pin pins the calling OS thread to logical CPU cpu via sched_setaffinity.
// It must be called after runtime.LockOSThread from the goroutine that will
// run the pinned work, since affinity is a property of the OS thread.
func Pin(cpu int) error {
	if cpu < 0 {
		return fmt.Errorf("affinity: invalid cpu %d", cpu)
	}

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)

	// A pid of 0 targets the calling thread (the Linux thread, i.e. the
	// current goroutine's OS thread after LockOSThread).
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("affinity: sched_setaffinity(cpu=%d): %w", cpu, err)
	}
	return nil
}
