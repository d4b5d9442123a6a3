// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "testing"

func TestTableSetGet(t *testing.T) {
	tbl := NewTable(16)
	tbl.Set(3, 42)
	if got := tbl.Get(3); got != 42 {
		t.Errorf("Get(3) = %d, want 42", got)
	}
	if got := tbl.Get(4); got != 0 {
		t.Errorf("Get(4) = %d, want 0 (zeroed)", got)
	}
}

func TestShareBoundsCoversDisjointly(t *testing.T) {
	const size = 23
	const workers = 4

	var total uint64
	for tid := 0; tid < workers; tid++ {
		start, end := shareBounds(size, tid, workers)
		if start != total {
			t.Errorf("tid %d: start = %d, want %d", tid, start, total)
		}
		total += end - start
	}
	if total != size {
		t.Errorf("shares cover %d, want %d", total, size)
	}
}

func TestZeroShare(t *testing.T) {
	tbl := NewTable(10)
	for i := range tbl.Data {
		tbl.Data[i] = uint32(i + 1)
	}
	tbl.zeroShare(0, 2)
	for i := uint64(0); i < 5; i++ {
		if tbl.Data[i] != 0 {
			t.Errorf("Data[%d] = %d after zeroShare, want 0", i, tbl.Data[i])
		}
	}
	if tbl.Data[5] == 0 {
		t.Error("zeroShare touched the other thread's share")
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 1024: 1024, 1025: 2048}
	for n, want := range cases {
		if got := nextPow2(n); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", n, got, want)
		}
	}
}
