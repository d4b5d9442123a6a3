// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

//go:build linux

package sysinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

const sysCPUDir = "/sys/devices/system/cpu"

// Discover reads /sys/devices/system/cpu to build the LLC -> core ->
// hw-thread tree. If anything about the hierarchy can't be read, or the
// result isn't rectangular (every LLC with the same core count, every core
// with the same hw-thread count — true on any symmetric multi-socket
// server this engine targets), Discover degrades to Fallback and returns a
// non-nil warning error describing why, rather than failing the whole run:
// topology discovery is an optimization hint for placement, not a
// correctness requirement.
func Discover() (Topology, error) {
	cpus, err := onlineCPUs()
	if err != nil || len(cpus) == 0 {
		return Fallback(runtime.NumCPU()), fmt.Errorf("sysinfo: reading online CPUs: %w", err)
	}

	llcOf := map[int]int{}   // cpu -> llc group id
	coreOf := map[int]int{}  // cpu -> global core id (package_id*1e6 + core_id)
	llcSize := 0
	lineSize := 64

	llcGroups := map[string]int{} // shared_cpu_list string -> llc group id
	nextLLC := 0

	for _, cpu := range cpus {
		level, shared, size, line, err := highestCache(cpu)
		if err != nil {
			return Fallback(runtime.NumCPU()), fmt.Errorf("sysinfo: reading cache info for cpu%d: %w", cpu, err)
		}
		_ = level
		if g, ok := llcGroups[shared]; ok {
			llcOf[cpu] = g
		} else {
			llcGroups[shared] = nextLLC
			llcOf[cpu] = nextLLC
			nextLLC++
		}
		if size > llcSize {
			llcSize = size
		}
		if line > 0 {
			lineSize = line
		}

		pkg, core, err := coreID(cpu)
		if err != nil {
			return Fallback(runtime.NumCPU()), fmt.Errorf("sysinfo: reading core id for cpu%d: %w", cpu, err)
		}
		coreOf[cpu] = pkg*1_000_000 + core
	}

	tree, err := buildRectangularTree(cpus, llcOf, coreOf)
	if err != nil {
		return Fallback(runtime.NumCPU()), fmt.Errorf("sysinfo: %w", err)
	}
	if llcSize == 0 {
		llcSize = 8 << 20
	}

	return newRectangular(llcSize, lineSize, tree), nil
}

func onlineCPUs() ([]int, error) {
	data, err := os.ReadFile(filepath.Join(sysCPUDir, "online"))
	if err != nil {
		// Fall back to enumerating cpuN directories.
		entries, derr := os.ReadDir(sysCPUDir)
		if derr != nil {
			return nil, err
		}
		var cpus []int
		for _, e := range entries {
			var n int
			if _, serr := fmt.Sscanf(e.Name(), "cpu%d", &n); serr == nil {
				cpus = append(cpus, n)
			}
		}
		sort.Ints(cpus)
		return cpus, nil
	}
	return parseCPUList(strings.TrimSpace(string(data)))
}

// highestCache returns the deepest cache level for cpu along with its
// shared_cpu_list (used to group CPUs into LLCs), size in bytes and
// coherency line size.
func highestCache(cpu int) (level int, sharedList string, sizeBytes int, lineBytes int, err error) {
	base := filepath.Join(sysCPUDir, fmt.Sprintf("cpu%d/cache", cpu))
	entries, err := os.ReadDir(base)
	if err != nil {
		return 0, "", 0, 0, err
	}

	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "index") {
			continue
		}
		dir := filepath.Join(base, e.Name())

		lvl, lerr := readInt(filepath.Join(dir, "level"))
		if lerr != nil {
			continue
		}
		typ, _ := readString(filepath.Join(dir, "type"))
		// Skip pure instruction caches; the engine cares about the data/unified LLC.
		if typ == "Instruction" {
			continue
		}
		if lvl < level {
			continue
		}

		shared, serr := readString(filepath.Join(dir, "shared_cpu_list"))
		if serr != nil {
			continue
		}
		size, _ := readSizeKB(filepath.Join(dir, "size"))
		line, _ := readInt(filepath.Join(dir, "coherency_line_size"))

		level = lvl
		sharedList = shared
		sizeBytes = size
		lineBytes = line
	}

	if sharedList == "" {
		return 0, "", 0, 0, fmt.Errorf("no usable cache entries under %s", base)
	}
	return level, sharedList, sizeBytes, lineBytes, nil
}

func coreID(cpu int) (pkg, core int, err error) {
	dir := filepath.Join(sysCPUDir, fmt.Sprintf("cpu%d/topology", cpu))
	pkg, err = readInt(filepath.Join(dir, "physical_package_id"))
	if err != nil {
		return 0, 0, err
	}
	core, err = readInt(filepath.Join(dir, "core_id"))
	if err != nil {
		return 0, 0, err
	}
	return pkg, core, nil
}

func readString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readInt(path string) (int, error) {
	s, err := readString(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

// readSizeKB parses sysfs cache size strings like "32K" or "1024K" into bytes.
func readSizeKB(path string) (int, error) {
	s, err := readString(path)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	mult := 1
	switch {
	case strings.HasSuffix(s, "K"):
		mult = 1 << 10
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		mult = 1 << 20
		s = strings.TrimSuffix(s, "M")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return v * mult, nil
}

// buildRectangularTree groups cpus into [llc][core][hwThread] and verifies
// the result is rectangular: every LLC has the same core count and every
// core the same hw-thread count.
func buildRectangularTree(cpus []int, llcOf, coreOf map[int]int) ([][][]int, error) {
	// llc -> core -> []cpu
	byLLC := map[int]map[int][]int{}
	for _, cpu := range cpus {
		llc := llcOf[cpu]
		core := coreOf[cpu]
		if byLLC[llc] == nil {
			byLLC[llc] = map[int][]int{}
		}
		byLLC[llc][core] = append(byLLC[llc][core], cpu)
	}

	var llcIDs []int
	for llc := range byLLC {
		llcIDs = append(llcIDs, llc)
	}
	sort.Ints(llcIDs)

	var tree [][][]int
	coresPerLLC := -1
	cpusPerCore := -1

	for _, llc := range llcIDs {
		cores := byLLC[llc]
		var coreIDs []int
		for core := range cores {
			coreIDs = append(coreIDs, core)
		}
		sort.Ints(coreIDs)

		if coresPerLLC == -1 {
			coresPerLLC = len(coreIDs)
		} else if len(coreIDs) != coresPerLLC {
			return nil, fmt.Errorf("irregular topology: llc %d has %d cores, want %d", llc, len(coreIDs), coresPerLLC)
		}

		var coreRows [][]int
		for _, core := range coreIDs {
			hws := append([]int(nil), cores[core]...)
			sort.Ints(hws)
			if cpusPerCore == -1 {
				cpusPerCore = len(hws)
			} else if len(hws) != cpusPerCore {
				return nil, fmt.Errorf("irregular topology: core %d has %d hw-threads, want %d", core, len(hws), cpusPerCore)
			}
			coreRows = append(coreRows, hws)
		}
		tree = append(tree, coreRows)
	}

	return tree, nil
}
