// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

//go:build !linux

package affinity

// Pin is a no-op stub on platforms without sched_setaffinity. It always
// returns ErrUnsupported so callers can warn once and continue unpinned.
func Pin(cpu int) error {
	return ErrUnsupported
}
