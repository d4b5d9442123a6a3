// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

// Table is an array-based, collision-free hash table: one 32-bit payload
// per bucket, indexed directly by (possibly shifted) key. There is no
// chaining because R's keys are dense and unique within whatever range
// indexes the table.
type Table struct {
	Data []uint32
}

// NewTable allocates a table of size buckets, all zeroed.
func NewTable(size uint64) *Table {
	return &Table{Data: make([]uint32, size)}
}

// Set writes payload into bucket idx. Exactly one thread writes any given
// bucket during a build phase, since keys are unique and partitions are
// disjoint, so no synchronization is needed here.
func (t *Table) Set(idx uint32, payload uint32) { t.Data[idx] = payload }

// Get reads bucket idx. Callers must not call Get until a barrier has
// separated it from every write to the same bucket.
func (t *Table) Get(idx uint32) uint32 { return t.Data[idx] }

// Size returns the bucket count.
func (t *Table) Size() uint64 { return uint64(len(t.Data)) }

// zeroShare re-zeroes this thread's disjoint slice of the table, one of
// numThreads equal shares. make() already zeroes Go memory; this exists
// so that, under a real NUMA allocator, the thread that will later use a
// page is also the one that first touches it.
func (t *Table) zeroShare(tid, numThreads int) {
	start, end := shareBounds(t.Size(), tid, numThreads)
	for i := start; i < end; i++ {
		t.Data[i] = 0
	}
}

// shareBounds divides [0, size) into numThreads contiguous shares using
// the same even-plus-remainder split as splitSizes, and returns the
// [start, end) bounds of share tid.
func shareBounds(size uint64, tid, numThreads int) (start, end uint64) {
	sizes := splitSizes(size, numThreads)
	for i := 0; i < tid; i++ {
		start += sizes[i]
	}
	end = start + sizes[tid]
	return start, end
}

// nextPow2 returns the smallest power of two >= n (n >= 1).
func nextPow2(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
