// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "testing"

func TestNewRelation(t *testing.T) {
	r := NewRelation('R', 10)
	if r.Name != 'R' {
		t.Errorf("Name = %c, want R", r.Name)
	}
	if r.Size() != 10 {
		t.Errorf("Size() = %d, want 10", r.Size())
	}
}

func TestSplitSizes(t *testing.T) {
	cases := []struct {
		n       uint64
		workers int
		want    []uint64
	}{
		{10, 4, []uint64{3, 3, 2, 2}},
		{8, 4, []uint64{2, 2, 2, 2}},
		{1, 3, []uint64{1, 0, 0}},
		{0, 3, []uint64{0, 0, 0}},
	}
	for _, c := range cases {
		got := splitSizes(c.n, c.workers)
		if len(got) != len(c.want) {
			t.Fatalf("splitSizes(%d,%d) len = %d, want %d", c.n, c.workers, len(got), len(c.want))
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("splitSizes(%d,%d)[%d] = %d, want %d", c.n, c.workers, i, got[i], c.want[i])
			}
		}
	}
}

func TestSplitRelationCoversDisjointly(t *testing.T) {
	rel := NewRelation('R', 17)
	for i := range rel.Tuples {
		rel.Tuples[i].Key = uint32(i)
	}

	subs := splitRelation(rel, 5)

	var total uint64
	seen := make(map[uint32]bool)
	for i, sub := range subs {
		if sub.Offset != total {
			t.Errorf("sub[%d].Offset = %d, want %d", i, sub.Offset, total)
		}
		for _, tup := range sub.Tuples {
			if seen[tup.Key] {
				t.Fatalf("key %d visited twice across sub-relations", tup.Key)
			}
			seen[tup.Key] = true
		}
		total += sub.Size()
	}
	if total != rel.Size() {
		t.Errorf("sub-relations cover %d tuples, want %d", total, rel.Size())
	}
	if len(seen) != int(rel.Size()) {
		t.Errorf("union covered %d distinct keys, want %d", len(seen), rel.Size())
	}
}
