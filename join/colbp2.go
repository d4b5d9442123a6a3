// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

// rotationStep scans one sub-block of a position matrix for exactly the
// tuples belonging to partition p, calling fn on each and advancing the
// cell's cursor past them. Because ICP scatters each sub-block's tuples
// in ascending partition order, scanning forward from the saved cursor
// until the partition changes visits precisely that partition's run
// without rescanning tuples an earlier step already consumed.
func rotationStep(sub *SubRelation, pm *PositionMatrix, h int, p, shift, mask uint32, fn func(Tuple)) {
	for b := 0; b < pm.NumBlocks; b++ {
		cur := pm.Cursor(b, h)
		end := pm.Cells[b][h].End
		for cur < end {
			t := sub.Tuples[cur]
			if partitionOf(t.Key, shift, mask) != p {
				break
			}
			fn(t)
			cur++
		}
		pm.SetCursor(b, h, cur)
	}
}

// GroupTables holds Model II/III's per-group tables and the leader
// assignment used to allocate them.
type GroupTables struct {
	Tables []*Table
}

// leaderOf returns the lowest thread id assigned to group g, the thread
// responsible for allocating that group's table.
func leaderOf(threads []ThreadPlacement, g int) int {
	for tid, p := range threads {
		if p.Group == g {
			return tid
		}
	}
	return -1
}

// AllocateGroupTables allocates one table per LLC group, each sized to
// the next power of two above ceil(|R|/fanoutR)+1. Every worker must call
// this once with the same arguments; only the leader of each group
// actually allocates (determined deterministically from ctx.Threads), and
// every worker zeroes its own disjoint share of its group's table
// afterward for NUMA first touch. bar separates allocation from use.
func (ctx *Context) AllocateGroupTables(tid int, rSize uint64, bar *Barrier) *GroupTables {
	numGroups := ctx.NumGroups
	fanoutR := ctx.Plan.FanoutR()
	partitionSize := ceilDivU64(rSize, uint64(fanoutR)) + 1
	tableSize := nextPow2(partitionSize)

	gt := &GroupTables{Tables: make([]*Table, numGroups)}

	myGroup := ctx.Threads[tid].Group
	if leaderOf(ctx.Threads, myGroup) == tid {
		gt.Tables[myGroup] = NewTable(tableSize)
	}
	bar.Arrive()

	table := gt.Tables[myGroup]
	membersInGroup, myRank := groupMembership(ctx.Threads, myGroup, tid)
	table.zeroShare(myRank, membersInGroup)
	bar.Arrive()

	return gt
}

// groupMembership returns how many threads share tid's group and tid's
// rank (0-based index) among them, in thread-id order.
func groupMembership(threads []ThreadPlacement, group, tid int) (count, rank int) {
	for t, p := range threads {
		if p.Group != group {
			continue
		}
		if t == tid {
			rank = count
		}
		count++
	}
	return count, rank
}

// ColBPII runs Model II: symmetric per-LLC tables rotated across groups.
// pmR and pmS are this thread's position matrices from ICP(R, R_bits) and
// ICP(S, S_bits) (R_bits == S_bits for Model II). gt holds the already
// allocated and zeroed per-group tables shared by every worker.
//
// Each group's table holds exactly one R-partition's worth of data at a
// time: iteration i fills it with partition h*iters+i, iteration i's
// probe must read that same data before iteration i+1's build overwrites
// it with partition h*iters+(i+1). Build and probe therefore interleave
// per iteration rather than running as two separate full passes.
func ColBPII(ctx *Context, gt *GroupTables, subR, subS *SubRelation, pmR, pmS *PositionMatrix, tid int, sbar *StagedBarrier, sc *stepCounter) (matches, checksum uint64) {
	groupOf := ctx.Threads[tid].Group
	numGroups := ctx.NumGroups
	rBits := uint32(ctx.Plan.RBits)
	iters := ctx.Plan.FanoutR() / numGroups
	maskR := uint32(ctx.Plan.FanoutR() - 1)
	maskS := uint32(ctx.Plan.FanoutS() - 1)

	for i := 0; i < iters; i++ {
		for g := 0; g < numGroups; g++ {
			h := (g + groupOf) % numGroups
			p := uint32(h*iters + i)
			rotationStep(subR, pmR, h, p, 0, maskR, func(t Tuple) {
				gt.Tables[h].Set(t.Key>>rBits, t.Payload)
				checksum += uint64(t.Key)
			})
			sbar.Arrive(tid, sc)
		}

		for g := numGroups - 1; g >= 0; g-- {
			h := (g + groupOf) % numGroups
			p := uint32(h*iters + i)
			rotationStep(subS, pmS, h, p, 0, maskS, func(t Tuple) {
				checksum += uint64(gt.Tables[h].Get(t.Key >> rBits))
				matches++
			})
		}
		sbar.Arrive(tid, sc)
	}

	return matches, checksum
}
