// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "testing"

func TestColBPISingleThread(t *testing.T) {
	r := NewRelation('R', 100)
	for i := range r.Tuples {
		r.Tuples[i] = Tuple{Key: uint32(i + 1), Payload: uint32(i + 1)}
	}
	s := NewRelation('S', 50)
	for i := range s.Tuples {
		// S holds foreign keys into R, so every probe hits: even slots count
		// up from 1, odd slots count down from 99.
		if i%2 == 0 {
			s.Tuples[i] = Tuple{Key: uint32(i + 1)}
		} else {
			s.Tuples[i] = Tuple{Key: uint32(100 - i)}
		}
	}

	table := NewTable(r.Size() + 1)
	bar := NewBarrier(1)
	subR := SubRelation{Parent: r, Tuples: r.Tuples}
	subS := SubRelation{Parent: s, Tuples: s.Tuples}

	matches, checksum := ColBPI(table, &subR, &subS, bar)

	if matches != 50 {
		t.Errorf("matches = %d, want 50", matches)
	}

	var wantChecksum uint64
	for _, tup := range r.Tuples {
		wantChecksum += uint64(tup.Key)
	}
	for _, tup := range s.Tuples {
		wantChecksum += uint64(tup.Key) // payload == key for every R row
	}
	if checksum != wantChecksum {
		t.Errorf("checksum = %d, want %d", checksum, wantChecksum)
	}
}
