// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

// TopologyFacts are the hardware facts the placement logic consumes: LLC
// count, cores per LLC, hardware threads per core, LLC size, and cache
// line size. The core never discovers these itself (internal/sysinfo
// does); it only reasons about them.
type TopologyFacts struct {
	NumLLCs       int
	CoresPerLLC   int
	CPUsPerCore   int
	LLCSizeBytes  int
	LineSizeBytes int
}

// CPUResolver maps a logical (llc, core, hwThread) position to an OS
// logical CPU id suitable for the thread-spawn primitive's pinning. A
// sysinfo.Topology value's CPU method satisfies this signature directly.
type CPUResolver func(llc, core, hwThread int) (int, error)

// ThreadPlacement is one worker's assignment: which OS CPU it pins to and
// which LLC group it belongs to for ColBP's per-group table rotation.
type ThreadPlacement struct {
	CPU   int
	Group int
}

// Place computes a placement for numThreads workers over facts:
//
//	utilized_llcs = ceil(N / cpus_per_llc_effective)
//
// where cpus_per_llc_effective is cores_per_llc*cpus_per_core, unless
// favorPhysicalCores is set and there are at least N physical cores, in
// which case only one hw-thread per core is used
// (cpus_per_llc_effective = cores_per_llc).
//
// Threads are dealt round-robin across utilized LLCs, filling cores
// within an LLC before moving to the next LLC, and filling hw-threads
// within a core (up to utilized_cpus_per_core) before advancing to the
// next core. Thread t's group is t mod numGroups where
// numGroups = utilized_llcs, which — combined with the round-robin deal —
// guarantees tid mod numGroups == group, the invariant ColBP relies on.
func Place(facts TopologyFacts, resolve CPUResolver, numThreads int, favorPhysicalCores bool) ([]ThreadPlacement, int, error) {
	if numThreads <= 0 {
		return nil, 0, Fatalf("thread-count", "requested thread count must be positive, got %d", numThreads)
	}

	cpusPerLLCEffective := facts.CoresPerLLC * facts.CPUsPerCore
	numCores := facts.NumLLCs * facts.CoresPerLLC
	if favorPhysicalCores && numCores >= numThreads {
		cpusPerLLCEffective = facts.CoresPerLLC
	}
	if cpusPerLLCEffective <= 0 {
		return nil, 0, Fatalf("topology", "cores_per_llc and cpus_per_core must be positive")
	}

	utilizedLLCs := ceilDiv(numThreads, cpusPerLLCEffective)
	if utilizedLLCs > facts.NumLLCs {
		return nil, 0, Fatalf("topology-mismatch",
			"requested %d threads need %d LLCs but only %d are available", numThreads, utilizedLLCs, facts.NumLLCs)
	}
	if utilizedLLCs <= 0 {
		utilizedLLCs = 1
	}

	utilizedCPUsPerCore := ceilDiv(numThreads, utilizedLLCs*facts.CoresPerLLC)
	if utilizedCPUsPerCore > facts.CPUsPerCore {
		return nil, 0, Fatalf("topology-mismatch",
			"requested %d threads need %d hw-threads per core but only %d are available", numThreads, utilizedCPUsPerCore, facts.CPUsPerCore)
	}

	numGroups := utilizedLLCs
	placements := make([]ThreadPlacement, numThreads)

	t := 0
	for core := 0; core < facts.CoresPerLLC && t < numThreads; core++ {
		for hw := 0; hw < utilizedCPUsPerCore && t < numThreads; hw++ {
			for llc := 0; llc < utilizedLLCs && t < numThreads; llc++ {
				cpu, err := resolve(llc, core, hw)
				if err != nil {
					return nil, 0, Fatalf("topology", "resolving cpu for (llc=%d,core=%d,hw=%d): %v", llc, core, hw, err)
				}
				placements[t] = ThreadPlacement{CPU: cpu, Group: t % numGroups}
				t++
			}
		}
	}

	return placements, numGroups, nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
