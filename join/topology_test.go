// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "testing"

func identityResolver(llc, core, hw int) (int, error) {
	return llc*1000 + core*10 + hw, nil
}

func TestPlaceSingleLLC(t *testing.T) {
	facts := TopologyFacts{NumLLCs: 1, CoresPerLLC: 4, CPUsPerCore: 1}

	placements, numGroups, err := Place(facts, identityResolver, 4, false)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if numGroups != 1 {
		t.Errorf("numGroups = %d, want 1", numGroups)
	}
	if len(placements) != 4 {
		t.Fatalf("len(placements) = %d, want 4", len(placements))
	}
	for tid, p := range placements {
		if p.Group != tid%numGroups {
			t.Errorf("placements[%d].Group = %d, want %d", tid, p.Group, tid%numGroups)
		}
	}
}

func TestPlaceMultiLLCGroupInvariant(t *testing.T) {
	facts := TopologyFacts{NumLLCs: 2, CoresPerLLC: 4, CPUsPerCore: 1}

	placements, numGroups, err := Place(facts, identityResolver, 8, false)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if numGroups != 2 {
		t.Errorf("numGroups = %d, want 2", numGroups)
	}
	for tid, p := range placements {
		if p.Group != tid%numGroups {
			t.Errorf("tid %d: group %d, want %d (tid mod numGroups invariant)", tid, p.Group, tid%numGroups)
		}
	}
}

func TestPlaceFavorPhysicalCores(t *testing.T) {
	facts := TopologyFacts{NumLLCs: 1, CoresPerLLC: 4, CPUsPerCore: 2}

	placements, numGroups, err := Place(facts, identityResolver, 4, true)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if numGroups != 1 {
		t.Errorf("numGroups = %d, want 1", numGroups)
	}
	seen := map[int]bool{}
	for _, p := range placements {
		if seen[p.CPU] {
			t.Fatalf("CPU %d placed twice", p.CPU)
		}
		seen[p.CPU] = true
	}
}

func TestPlaceRejectsNonPositiveThreads(t *testing.T) {
	facts := TopologyFacts{NumLLCs: 1, CoresPerLLC: 4, CPUsPerCore: 1}
	if _, _, err := Place(facts, identityResolver, 0, false); err == nil {
		t.Error("Place(0 threads) should error")
	}
}

func TestPlaceRejectsOversubscription(t *testing.T) {
	facts := TopologyFacts{NumLLCs: 1, CoresPerLLC: 2, CPUsPerCore: 1}
	if _, _, err := Place(facts, identityResolver, 10, false); err == nil {
		t.Error("Place(10 threads over 2 cores) should error")
	}
}

func TestPlaceResolverError(t *testing.T) {
	facts := TopologyFacts{NumLLCs: 1, CoresPerLLC: 2, CPUsPerCore: 1}
	boom := func(llc, core, hw int) (int, error) { return 0, errBoom }
	if _, _, err := Place(facts, boom, 2, false); err == nil {
		t.Error("Place should propagate resolver errors")
	}
}

var errBoom = Fatalf("test", "boom")
