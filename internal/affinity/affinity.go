// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package affinity pins the calling OS thread to a specific logical CPU.
//
// The join engine's thread-placement logic (join.Place) computes, for every
// worker, which hardware thread it should run on; affinity.Pin is the
// primitive that makes that assignment actually stick. Pinning is a
// performance hint for cache/NUMA locality, not a correctness requirement of
// the join itself, so callers should log a failed Pin and continue rather
// than treat it as fatal.
package affinity

import "errors"

// ErrUnsupported is returned by Pin on platforms without CPU affinity
// control. Callers should treat it as a one-time warning, not a fatal error.
var ErrUnsupported = errors.New("affinity: CPU pinning not supported on this platform")

// Pinner matches hwy/contrib/workerpool.Pinner without importing it, so
// package affinity stays free of a dependency on the workerpool package.
type Pinner interface {
	Pin(cpu int) error
}

// Default is the Pinner appropriate for the running GOOS, selected by the
// platform-specific files in this package.
var Default Pinner = platformPinner{}

type platformPinner struct{}

func (platformPinner) Pin(cpu int) error { return Pin(cpu) }
