// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

//go:build !linux

package sysinfo

import (
	"errors"
	"runtime"
)

// Discover always returns the conservative Fallback topology on platforms
// without a /sys/devices/system/cpu hierarchy to read.
func Discover() (Topology, error) {
	return Fallback(runtime.NumCPU()), errors.New("sysinfo: topology discovery only implemented for linux, using fallback")
}
