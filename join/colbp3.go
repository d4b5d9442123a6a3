// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

// ColBPIII runs Model III: a single table sized |R|+1, indexed by the raw
// key (no shift), with S left unpartitioned. ICP(R) partitioned R on its
// high bits (RadixPlan.ModelIIIShift), so each partition's keys already
// form a contiguous range within [0, |R|]; unlike Model II, writing
// partition p doesn't collide with any other partition's cells, so the
// whole build runs to completion (all iterations, all rotation steps)
// before any probing starts — there is no need to interleave per
// iteration the way Model II's reused per-group tables require.
func ColBPIII(ctx *Context, table *Table, subR, subS *SubRelation, pmR *PositionMatrix, tid int, sbar *StagedBarrier, sc *stepCounter, bar *Barrier) (matches, checksum uint64) {
	groupOf := ctx.Threads[tid].Group
	numGroups := ctx.NumGroups
	iters := ctx.Plan.FanoutR() / numGroups
	maskR := uint32(ctx.Plan.FanoutR() - 1)

	for i := 0; i < iters; i++ {
		for g := 0; g < numGroups; g++ {
			h := (g + groupOf) % numGroups
			p := uint32(h*iters + i)
			rotationStep(subR, pmR, h, p, uint32(ctx.Plan.ModelIIIShift), maskR, func(t Tuple) {
				table.Set(t.Key, t.Payload)
				checksum += uint64(t.Key)
			})
			sbar.Arrive(tid, sc)
		}
	}

	bar.Arrive()

	for _, t := range subS.Tuples {
		checksum += uint64(table.Get(t.Key))
		matches++
	}

	bar.Arrive()

	return matches, checksum
}
