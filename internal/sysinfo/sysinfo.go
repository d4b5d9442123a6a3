// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package sysinfo discovers the machine's cache/core/hardware-thread
// topology that the join engine's placement logic needs: how many last-level
// caches (LLCs) exist, how many cores share each one, how many hardware
// threads (SMT siblings) each core exposes, and the LLC/cache-line sizes.
//
// No example library in this codebase's dependency corpus wraps Linux
// topology discovery (no hwloc/libnuma binding, no sysfs-walking package),
// so this package reads /sys/devices/system/cpu directly with the standard
// library, as the last resort the project's ambient-stack rule allows.
package sysinfo

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ajroetker/radixjoin/join"
)

// Topology describes the discovered (or assumed) cache/core hierarchy.
//
// It carries the facts join.Place needs: NumLLCs, CoresPerLLC,
// CPUsPerCore, LLCSizeBytes, LineSizeBytes. cpuID additionally resolves a
// logical (llc, core, hwThread) position to an OS logical CPU id, which
// join.Place needs for the thread-spawn primitive.
type Topology struct {
	NumLLCs       int
	CoresPerLLC   int
	CPUsPerCore   int
	LLCSizeBytes  int
	LineSizeBytes int

	// cpuID[llc][core][hwThread] is the OS logical CPU id for that position.
	// Built so that every LLC has exactly CoresPerLLC cores and every core
	// has exactly CPUsPerCore hardware threads — topologies that don't fit
	// this rectangular shape are degraded to the Fallback() topology by
	// Discover, which keeps join.Place's invariants simple.
	cpuID [][][]int
}

// Facts converts the discovered topology into the facts join.Place consumes.
func (t Topology) Facts() join.TopologyFacts {
	return join.TopologyFacts{
		NumLLCs:       t.NumLLCs,
		CoresPerLLC:   t.CoresPerLLC,
		CPUsPerCore:   t.CPUsPerCore,
		LLCSizeBytes:  t.LLCSizeBytes,
		LineSizeBytes: t.LineSizeBytes,
	}
}

// NumCores returns the total number of physical cores across all LLCs.
func (t Topology) NumCores() int { return t.NumLLCs * t.CoresPerLLC }

// NumCPUs returns the total number of hardware threads (logical CPUs).
func (t Topology) NumCPUs() int { return t.NumCores() * t.CPUsPerCore }

// CPU resolves a logical (llc, core, hwThread) position to an OS CPU id,
// suitable for affinity.Pin.
func (t Topology) CPU(llc, core, hwThread int) (int, error) {
	if llc < 0 || llc >= len(t.cpuID) {
		return 0, fmt.Errorf("sysinfo: llc index %d out of range [0,%d)", llc, len(t.cpuID))
	}
	cores := t.cpuID[llc]
	if core < 0 || core >= len(cores) {
		return 0, fmt.Errorf("sysinfo: core index %d out of range [0,%d)", core, len(cores))
	}
	hws := cores[core]
	if hwThread < 0 || hwThread >= len(hws) {
		return 0, fmt.Errorf("sysinfo: hw-thread index %d out of range [0,%d)", hwThread, len(hws))
	}
	return hws[hwThread], nil
}

// Fallback returns a conservative, always-available topology: one LLC, one
// hw-thread per core, runtime.NumCPU() cores, an 8MiB assumed LLC and a
// 64-byte assumed cache line. Discover falls back to this whenever sysfs
// can't be read or doesn't describe a clean rectangular hierarchy.
func Fallback(numCPUs int) Topology {
	if numCPUs < 1 {
		numCPUs = 1
	}
	cores := make([][]int, numCPUs)
	for i := range cores {
		cores[i] = []int{i}
	}
	return Topology{
		NumLLCs:       1,
		CoresPerLLC:   numCPUs,
		CPUsPerCore:   1,
		LLCSizeBytes:  8 << 20,
		LineSizeBytes: 64,
		cpuID:         [][][]int{cores},
	}
}

// parseCPUList parses sysfs list syntax like "0-3,8,10-11", as found in
// files such as .../cpuN/cache/indexM/shared_cpu_list.
func parseCPUList(s string) ([]int, error) {
	var out []int
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if dash := strings.IndexByte(part, '-'); dash >= 0 {
			lo, err := strconv.Atoi(part[:dash])
			if err != nil {
				return nil, err
			}
			hi, err := strconv.Atoi(part[dash+1:])
			if err != nil {
				return nil, err
			}
			for i := lo; i <= hi; i++ {
				out = append(out, i)
			}
		} else {
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out, nil
}

// newRectangular builds a Topology from a fully populated cpuID tree
// (llc -> core -> hwThread -> OS cpu id) that has already been verified
// rectangular by the caller.
func newRectangular(llcSize, lineSize int, cpuID [][][]int) Topology {
	return Topology{
		NumLLCs:       len(cpuID),
		CoresPerLLC:   len(cpuID[0]),
		CPUsPerCore:   len(cpuID[0][0]),
		LLCSizeBytes:  llcSize,
		LineSizeBytes: lineSize,
		cpuID:         cpuID,
	}
}
