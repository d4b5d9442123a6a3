// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "log/slog"

// PartitionR runs ICP over a thread's share of R using the current plan's
// R_bits and (for Model III) ModelIIIShift, with one sub-block per group
// so ColBP can rotate partitions across LLC groups.
func (ctx *Context) PartitionR(sub *SubRelation) (*PositionMatrix, error) {
	return icpPass(sub, icpOptions{
		Bits:         ctx.Plan.RBits,
		Shift:        uint32(ctx.Plan.ModelIIIShift),
		NumSubBlocks: ctx.NumGroups,
	})
}

// PartitionS runs ICP over a thread's share of S, including the
// skew-detection rendezvous on the first block when the plan was not
// user-defined. tid is this worker's global thread id (0 is the
// plan-rewrite leader); sbar and sc are a staged barrier and step counter
// shared with every other worker calling PartitionS concurrently.
//
// If the unanimous-skew condition is met, the plan is rewritten to
// Model III (S_bits = 0, R_bits += 1) and PartitionS restarts with the
// new (trivial) S_bits, which for S_bits == 0 is a no-op pass.
func (ctx *Context) PartitionS(sub *SubRelation, tid int, sbar *StagedBarrier, sc *stepCounter) (*PositionMatrix, error) {
	numSubBlocks := ctx.NumGroups
	if ctx.Plan.RBits > ctx.Plan.SBits && ctx.Plan.SBits > 0 {
		// Model IV's S side doesn't rotate per-partition work across groups.
		numSubBlocks = 1
	}

	if !ctx.Plan.UserDefined && ctx.Plan.SBits > 0 {
		hist := firstBlockHistogram(sub, ctx.Plan.SBits, 0)
		blockSize := computeBlocks(sub.Size())[0].Size
		rep := estimateSkew(hist, blockSize, ctx.rSizeHint, sub.Parent.Size())

		if rep.Heavy {
			ctx.AddSkewedPartitions(1)
		}
		sbar.Arrive(tid, sc)

		if ctx.SkewedPartitions() == int64(len(ctx.Threads)) {
			if tid == 0 {
				ctx.Plan.SBits = 0
				ctx.Plan.RBits++
				ctx.MarkRadixSChanged()
				slog.Info("skew detected: radix plan rewritten to Model III",
					slog.Int("r_bits", ctx.Plan.RBits), slog.Int("s_bits", ctx.Plan.SBits))
			}
			sbar.Arrive(tid, sc)
			return ctx.PartitionS(sub, tid, sbar, sc)
		}
		sbar.Arrive(tid, sc)
	}

	return icpPass(sub, icpOptions{
		Bits:         ctx.Plan.SBits,
		Shift:        0,
		NumSubBlocks: numSubBlocks,
	})
}
