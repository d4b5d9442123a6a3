// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package join implements an in-memory, parallel, cache- and NUMA-aware
// radix hash join over two integer-keyed relations: R (the build side,
// dense primary keys) and S (the probe side, foreign keys, possibly
// Zipfian-skewed). It reports only a match count and a checksum over
// payloads — it never materializes join output rows.
package join

// Tuple is a fixed-width (key, payload) record. Both fields are 32-bit
// unsigned: R's keys are a dense permutation of [1, |R|]; S's keys are
// values drawn from that range.
type Tuple struct {
	Key     uint32
	Payload uint32
}

// Relation is an identified, sized array of tuples. R and S are relations;
// a SubRelation is the disjoint, contiguous slice of one relation's tuples
// owned by a single worker thread for the whole join.
type Relation struct {
	// Name identifies the relation: 'R' (build side) or 'S' (probe side).
	Name byte
	// Tuples holds every tuple belonging to this relation.
	Tuples []Tuple
}

// NewRelation allocates a relation of the given size with zeroed tuples.
// Callers (internal/genrel, or tests) are responsible for filling Tuples.
func NewRelation(name byte, size uint64) *Relation {
	return &Relation{
		Name:   name,
		Tuples: make([]Tuple, size),
	}
}

// Size returns the number of tuples in the relation.
func (r *Relation) Size() uint64 { return uint64(len(r.Tuples)) }

// SubRelation is one worker thread's disjoint, contiguous share of a
// parent Relation: Tuples is a slice into the parent's backing array (so
// ICP's in-place reordering is visible without copying back), and Offset
// is this sub-relation's starting index within the parent.
type SubRelation struct {
	Parent *Relation
	Tuples []Tuple
	Offset uint64
}

// Size returns the number of tuples in this thread's share.
func (s *SubRelation) Size() uint64 { return uint64(len(s.Tuples)) }

// splitSizes partitions n items across numThreads workers as evenly as
// possible: each gets floor(n/numThreads), and the first n mod numThreads
// workers get one extra.
func splitSizes(n uint64, numThreads int) []uint64 {
	sizes := make([]uint64, numThreads)
	base := n / uint64(numThreads)
	rem := n % uint64(numThreads)
	for i := range sizes {
		sizes[i] = base
		if uint64(i) < rem {
			sizes[i]++
		}
	}
	return sizes
}

// splitRelation builds numThreads SubRelations from rel, covering it
// disjointly and contiguously, with the size distribution from splitSizes.
func splitRelation(rel *Relation, numThreads int) []SubRelation {
	sizes := splitSizes(rel.Size(), numThreads)
	subs := make([]SubRelation, numThreads)
	var offset uint64
	for i, sz := range sizes {
		subs[i] = SubRelation{
			Parent: rel,
			Tuples: rel.Tuples[offset : offset+sz],
			Offset: offset,
		}
		offset += sz
	}
	return subs
}
