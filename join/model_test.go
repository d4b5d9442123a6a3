// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "testing"

func TestSelectModelDispatch(t *testing.T) {
	cases := []struct {
		plan RadixPlan
		want Model
	}{
		{RadixPlan{RBits: 0, SBits: 0}, ModelI},
		{RadixPlan{RBits: 3, SBits: 3}, ModelII},
		{RadixPlan{RBits: 4, SBits: 0}, ModelIII},
		{RadixPlan{RBits: 4, SBits: 2}, ModelIV},
	}
	for _, c := range cases {
		got, err := SelectModel(c.plan)
		if err != nil {
			t.Errorf("SelectModel(%+v) error: %v", c.plan, err)
			continue
		}
		if got != c.want {
			t.Errorf("SelectModel(%+v) = %s, want %s", c.plan, got, c.want)
		}
	}
}

func TestSelectModelRejectsUnreachablePlan(t *testing.T) {
	// S_bits > R_bits > 0 matches no dispatch rule.
	if _, err := SelectModel(RadixPlan{RBits: 1, SBits: 2}); err == nil {
		t.Error("SelectModel should reject S_bits > R_bits > 0")
	}
}

func TestComputePlanSmallRFitsModelI(t *testing.T) {
	topo := TopologyFacts{LLCSizeBytes: 1 << 20}
	plan, err := ComputePlan(topo, 1000, 2, -1, -1)
	if err != nil {
		t.Fatalf("ComputePlan: %v", err)
	}
	if plan.RBits != 0 || plan.SBits != 0 {
		t.Errorf("plan = %+v, want (0,0) for a small R", plan)
	}
}

func TestComputePlanLargeRPartitions(t *testing.T) {
	topo := TopologyFacts{LLCSizeBytes: 1 << 16} // 64 KiB, small on purpose
	plan, err := ComputePlan(topo, 1<<20, 2, -1, -1)
	if err != nil {
		t.Fatalf("ComputePlan: %v", err)
	}
	if plan.RBits == 0 {
		t.Error("ComputePlan should partition a large R against a small LLC")
	}
	if plan.FanoutR()%2 != 0 {
		t.Errorf("FanoutR() = %d, not divisible by numGroups=2", plan.FanoutR())
	}
}

func TestComputePlanUserOverrideLatchesUserDefined(t *testing.T) {
	topo := TopologyFacts{LLCSizeBytes: 1 << 20}
	plan, err := ComputePlan(topo, 1<<20, 2, 4, 0)
	if err != nil {
		t.Fatalf("ComputePlan: %v", err)
	}
	if !plan.UserDefined {
		t.Error("UserDefined should be true when a user radix is supplied")
	}
	if plan.RBits != 4 || plan.SBits != 0 {
		t.Errorf("plan = %+v, want RBits=4 SBits=0", plan)
	}
}

func TestComputePlanUserOverrideRejectsIndivisibleFanout(t *testing.T) {
	topo := TopologyFacts{LLCSizeBytes: 1 << 20}
	// FanoutR = 2^1 = 2, not divisible by 3 groups.
	if _, err := ComputePlan(topo, 1<<20, 3, 1, -1); err == nil {
		t.Error("ComputePlan should reject a user radix whose fanout isn't divisible by numGroups")
	}
}

func TestCeilLog2(t *testing.T) {
	cases := []struct {
		n    uint64
		want int
	}{
		{0, 0}, {1, 0}, {2, 1}, {3, 2}, {4, 2}, {5, 3}, {1024, 10}, {1025, 11},
	}
	for _, c := range cases {
		if got := ceilLog2(c.n); got != c.want {
			t.Errorf("ceilLog2(%d) = %d, want %d", c.n, got, c.want)
		}
	}
}
