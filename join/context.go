// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "sync/atomic"

// Context bundles the handful of values every worker thread needs to read
// (and occasionally write) throughout a join: the thread count and
// placement, the chosen radix plan, and the topology facts placement was
// computed from. Grouping them avoids passing five separate parameters
// through every ColBP call.
type Context struct {
	Threads   []ThreadPlacement
	NumGroups int
	Topology  TopologyFacts
	Plan      RadixPlan

	// rSizeHint is |R|, needed by skew estimation's |S|/|R| < 3 escape
	// hatch; it never changes after construction.
	rSizeHint uint64

	// changedRadixS records whether skew detection rewrote the radix plan
	// partway through partitioning S; read with RadixSChanged, set with
	// MarkRadixSChanged. Every worker consults this once per phase, so it's
	// a plain atomic rather than anything heavier.
	changedRadixS atomic.Bool

	// skewedPartitions counts how many worker threads found heavy skew in
	// the first block of their share of S.
	skewedPartitions atomic.Int64

	// sharedTable backs Model I and Model III, both of which use a single
	// table rather than one per group. It is set once by thread 0 inside
	// AllocateSharedTable, with a barrier establishing happens-before
	// before any other thread reads it.
	sharedTable *Table
}

// NewContext builds a Context for a fixed worker count, placement, radix
// plan, and topology. rSize is |R|, needed by skew estimation. changedRadixS
// and skewedPartitions both start clear.
func NewContext(threads []ThreadPlacement, numGroups int, topo TopologyFacts, plan RadixPlan, rSize uint64) *Context {
	return &Context{
		Threads:   threads,
		NumGroups: numGroups,
		Topology:  topo,
		Plan:      plan,
		rSizeHint: rSize,
	}
}

// RadixSChanged reports whether the radix plan for S was rewritten after
// skew was detected in its first partitioning pass.
func (c *Context) RadixSChanged() bool { return c.changedRadixS.Load() }

// MarkRadixSChanged records that skew detection rewrote S's radix plan.
// It is idempotent; any worker may call it, and callers needing the old
// and new plan compare the Plan field before and after the rewrite under
// their own synchronization (a barrier separates the detection phase from
// any read of the updated Plan).
func (c *Context) MarkRadixSChanged() { c.changedRadixS.Store(true) }

// AddSkewedPartitions adds n to the running count of worker threads that
// reported heavy skew, and returns the updated total.
func (c *Context) AddSkewedPartitions(n int64) int64 {
	return c.skewedPartitions.Add(n)
}

// SkewedPartitions returns the current count of worker threads that
// reported heavy skew.
func (c *Context) SkewedPartitions() int64 { return c.skewedPartitions.Load() }

// AllocateSharedTable allocates (on thread 0 only) the single table
// Models I and III use, then has every thread zero its own disjoint
// share for NUMA first touch. Every worker must call this with the same
// size; bar separates allocation from use and zeroing from the first
// build write.
func (c *Context) AllocateSharedTable(tid int, size uint64, bar *Barrier) *Table {
	if tid == 0 {
		c.sharedTable = NewTable(size)
	}
	bar.Arrive()

	c.sharedTable.zeroShare(tid, len(c.Threads))
	bar.Arrive()

	return c.sharedTable
}
