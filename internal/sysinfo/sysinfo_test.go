// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package sysinfo

import "testing"

func TestFallback(t *testing.T) {
	topo := Fallback(8)

	if topo.NumLLCs != 1 {
		t.Errorf("NumLLCs = %d, want 1", topo.NumLLCs)
	}
	if topo.CoresPerLLC != 8 {
		t.Errorf("CoresPerLLC = %d, want 8", topo.CoresPerLLC)
	}
	if topo.CPUsPerCore != 1 {
		t.Errorf("CPUsPerCore = %d, want 1", topo.CPUsPerCore)
	}
	if topo.NumCPUs() != 8 {
		t.Errorf("NumCPUs() = %d, want 8", topo.NumCPUs())
	}

	cpu, err := topo.CPU(0, 3, 0)
	if err != nil {
		t.Fatalf("CPU(0,3,0) error: %v", err)
	}
	if cpu != 3 {
		t.Errorf("CPU(0,3,0) = %d, want 3", cpu)
	}

	if _, err := topo.CPU(1, 0, 0); err == nil {
		t.Error("CPU(1,0,0) should error: only 1 LLC")
	}
}

func TestFallbackMinimum(t *testing.T) {
	topo := Fallback(0)
	if topo.NumCPUs() != 1 {
		t.Errorf("NumCPUs() = %d, want 1 for non-positive input", topo.NumCPUs())
	}
}

func TestParseCPUList(t *testing.T) {
	cases := []struct {
		in   string
		want []int
	}{
		{"", nil},
		{"0", []int{0}},
		{"0-3", []int{0, 1, 2, 3}},
		{"0-1,4,6-7", []int{0, 1, 4, 6, 7}},
	}

	for _, c := range cases {
		got, err := parseCPUList(c.in)
		if err != nil {
			t.Errorf("parseCPUList(%q) error: %v", c.in, err)
			continue
		}
		if len(got) != len(c.want) {
			t.Errorf("parseCPUList(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("parseCPUList(%q) = %v, want %v", c.in, got, c.want)
				break
			}
		}
	}
}
