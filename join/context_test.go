// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import (
	"sync"
	"testing"
)

func TestAllocateSharedTableSameInstanceEverywhere(t *testing.T) {
	const n = 4
	threads := make([]ThreadPlacement, n)
	ctx := NewContext(threads, 1, TopologyFacts{}, RadixPlan{}, 100)
	bar := NewBarrier(n)

	tables := make([]*Table, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for tid := 0; tid < n; tid++ {
		go func(tid int) {
			defer wg.Done()
			tables[tid] = ctx.AllocateSharedTable(tid, 101, bar)
		}(tid)
	}
	wg.Wait()

	for tid := 1; tid < n; tid++ {
		if tables[tid] != tables[0] {
			t.Errorf("thread %d got a different table instance than thread 0", tid)
		}
	}
	if tables[0].Size() != 101 {
		t.Errorf("table size = %d, want 101", tables[0].Size())
	}
}

func TestAllocateGroupTablesOnePerGroup(t *testing.T) {
	const n = 4
	threads := []ThreadPlacement{{Group: 0}, {Group: 1}, {Group: 0}, {Group: 1}}
	ctx := NewContext(threads, 2, TopologyFacts{}, RadixPlan{RBits: 2}, 100)
	bar := NewBarrier(n)

	results := make([]*GroupTables, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for tid := 0; tid < n; tid++ {
		go func(tid int) {
			defer wg.Done()
			results[tid] = ctx.AllocateGroupTables(tid, 100, bar)
		}(tid)
	}
	wg.Wait()

	for tid := 0; tid < n; tid++ {
		group := threads[tid].Group
		if results[tid].Tables[group] == nil {
			t.Errorf("thread %d: table for its own group %d is nil", tid, group)
		}
	}
	// Threads sharing a group must see the same table instance.
	if results[0].Tables[0] != results[2].Tables[0] {
		t.Error("threads 0 and 2 (both group 0) should share one table instance")
	}
	if results[1].Tables[1] != results[3].Tables[1] {
		t.Error("threads 1 and 3 (both group 1) should share one table instance")
	}
}

func TestRadixSChangedAndSkewedPartitions(t *testing.T) {
	ctx := NewContext(nil, 1, TopologyFacts{}, RadixPlan{}, 0)
	if ctx.RadixSChanged() {
		t.Error("RadixSChanged should start false")
	}
	ctx.MarkRadixSChanged()
	if !ctx.RadixSChanged() {
		t.Error("RadixSChanged should be true after MarkRadixSChanged")
	}

	if ctx.AddSkewedPartitions(2) != 2 {
		t.Error("AddSkewedPartitions(2) should return running total 2")
	}
	if ctx.AddSkewedPartitions(1) != 3 {
		t.Error("AddSkewedPartitions(1) should return running total 3")
	}
	if ctx.SkewedPartitions() != 3 {
		t.Errorf("SkewedPartitions() = %d, want 3", ctx.SkewedPartitions())
	}
}
