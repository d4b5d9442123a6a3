// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import (
	"testing"

	"github.com/ajroetker/radixjoin/hwy/contrib/workerpool"
)

// buildRS returns a dense-permutation R of size rSize and an S whose keys
// are exactly R's keys in order (so every one of S's tuples matches
// exactly once), letting every test compute its expected result in closed
// form regardless of which model actually ran.
func buildRS(rSize, sSize uint64) (*Relation, *Relation) {
	r := NewRelation('R', rSize)
	for i := range r.Tuples {
		r.Tuples[i] = Tuple{Key: uint32(i + 1), Payload: uint32(i + 1)}
	}
	s := NewRelation('S', sSize)
	for i := range s.Tuples {
		s.Tuples[i] = Tuple{Key: uint32(i + 1)}
	}
	return r, s
}

func expectedResult(r, s *Relation) Result {
	var res Result
	for _, tup := range s.Tuples {
		res.Matches++
		res.Checksum += uint64(tup.Key) // payload == key in buildRS
	}
	for _, tup := range r.Tuples {
		res.Checksum += uint64(tup.Key)
	}
	return res
}

func TestRunModelI(t *testing.T) {
	r, s := buildRS(64, 64)
	opts := RunOptions{
		Topology:   TopologyFacts{NumLLCs: 1, CoresPerLLC: 2, CPUsPerCore: 1, LLCSizeBytes: 1 << 20},
		Resolve:    identityResolver,
		NumThreads: 2,
		Pinner:     workerpool.NoopPinner,
		UserRadixR: -1,
		UserRadixS: -1,
	}

	result, model, err := Run(r, s, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if model != ModelI {
		t.Fatalf("model = %s, want I (R fits comfortably inside a 1MiB LLC)", model)
	}
	want := expectedResult(r, s)
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
}

func TestRunModelII(t *testing.T) {
	r, s := buildRS(4096, 4096)
	opts := RunOptions{
		Topology:   TopologyFacts{NumLLCs: 2, CoresPerLLC: 2, CPUsPerCore: 1, LLCSizeBytes: 1 << 20},
		Resolve:    identityResolver,
		NumThreads: 4,
		Pinner:     workerpool.NoopPinner,
		UserRadixR: 2,
		UserRadixS: 2,
	}

	result, model, err := Run(r, s, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if model != ModelII {
		t.Fatalf("model = %s, want II", model)
	}
	want := expectedResult(r, s)
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
}

func TestRunModelIII(t *testing.T) {
	r, s := buildRS(4096, 4096)
	opts := RunOptions{
		Topology:   TopologyFacts{NumLLCs: 2, CoresPerLLC: 2, CPUsPerCore: 1, LLCSizeBytes: 1 << 20},
		Resolve:    identityResolver,
		NumThreads: 4,
		Pinner:     workerpool.NoopPinner,
		UserRadixR: 3,
		UserRadixS: 0,
	}

	result, model, err := Run(r, s, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if model != ModelIII {
		t.Fatalf("model = %s, want III", model)
	}
	want := expectedResult(r, s)
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
}

func TestRunModelIVRejected(t *testing.T) {
	r, s := buildRS(4096, 4096)
	opts := RunOptions{
		Topology:   TopologyFacts{NumLLCs: 2, CoresPerLLC: 2, CPUsPerCore: 1, LLCSizeBytes: 1 << 20},
		Resolve:    identityResolver,
		NumThreads: 4,
		Pinner:     workerpool.NoopPinner,
		UserRadixR: 3,
		UserRadixS: 1,
	}

	_, _, err := Run(r, s, opts)
	if err == nil {
		t.Fatal("Run should reject a user-forced Model IV plan")
	}
	if _, ok := AsFatal(err); !ok {
		t.Errorf("error = %v, want a *FatalError", err)
	}
}

func TestRunSkewTriggeredRewrite(t *testing.T) {
	r, s := buildRS(4096, 16384)
	// Force every S key's low 2 bits to 1 (the radix bits the default plan
	// below selects), so every worker's first-block histogram looks
	// maximally skewed and the unanimous-skew rewrite (S_bits -> 0,
	// R_bits++) fires. Keys stay within [1, 4096] so they're still valid R
	// lookups.
	for i := range s.Tuples {
		s.Tuples[i].Key = uint32((i%1024)*4 + 1)
	}

	opts := RunOptions{
		Topology:   TopologyFacts{NumLLCs: 2, CoresPerLLC: 2, CPUsPerCore: 1, LLCSizeBytes: 1 << 13},
		Resolve:    identityResolver,
		NumThreads: 4,
		Pinner:     workerpool.NoopPinner,
		UserRadixR: -1,
		UserRadixS: -1,
	}

	result, _, err := Run(r, s, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := expectedResult(r, s)
	if result != want {
		t.Errorf("result = %+v, want %+v", result, want)
	}
}

func TestRunRejectsTooManyThreads(t *testing.T) {
	r, s := buildRS(16, 16)
	opts := RunOptions{
		Topology:   TopologyFacts{NumLLCs: 1, CoresPerLLC: 2, CPUsPerCore: 1, LLCSizeBytes: 1 << 20},
		Resolve:    identityResolver,
		NumThreads: 100,
		Pinner:     workerpool.NoopPinner,
		UserRadixR: -1,
		UserRadixS: -1,
	}
	if _, _, err := Run(r, s, opts); err == nil {
		t.Error("Run should reject a thread count exceeding topology capacity")
	}
}
