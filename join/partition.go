// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import (
	"github.com/ajroetker/radixjoin/hwy"
	"github.com/ajroetker/radixjoin/hwy/contrib/algo"
)

// ChunkSize bounds how many tuples ICP processes per block. 2^15 keeps one
// block's histogram and scratch copy comfortably inside L1/L2 while still
// amortizing per-block fixed costs.
const ChunkSize = 1 << 15

// RadixPlan is the radix partitioning plan for both relations:
// (R_bits, S_bits, user_defined). Fanout_X = 2^X_bits. ModelIIIShift is
// filled in by the model dispatcher once Model III is selected; it is the
// shift ICP(R) must use to partition R on its high bits.
type RadixPlan struct {
	RBits         int
	SBits         int
	UserDefined   bool
	ModelIIIShift int
}

// FanoutR returns 2^RBits.
func (p RadixPlan) FanoutR() int { return 1 << p.RBits }

// FanoutS returns 2^SBits.
func (p RadixPlan) FanoutS() int { return 1 << p.SBits }

// PosCell is one (block, sub-block) cell of ICP's output position matrix:
// the half-open range [Start, End) within a sub-relation's tuple array
// that this sub-block occupies after partitioning.
type PosCell struct {
	Start, End uint64
}

// PositionMatrix is ICP's output: for each block, the contiguous range
// owned by each sub-block (LLC group). ColBP reads Cells[block][group] to
// find exactly which tuples belong to which partition.
//
// cursors mirrors Cells but holds a separate, mutable per-cell read
// position: within a sub-block's range the tuples are already sorted by
// partition (ICP scatters each block in partition order), so a build or
// probe loop iterating partitions 0..iters-1 against one sub-block can
// advance a single cursor forward monotonically across iterations rather
// than rescanning. Keeping it out of PosCell keeps the immutable layout
// separate from mutable iteration state.
type PositionMatrix struct {
	NumBlocks    int
	NumSubBlocks int
	Cells        [][]PosCell // [block][subBlock]
	cursors      [][]uint64
}

func newPositionMatrix(numBlocks, numSubBlocks int) *PositionMatrix {
	cells := make([][]PosCell, numBlocks)
	cursors := make([][]uint64, numBlocks)
	for b := range cells {
		cells[b] = make([]PosCell, numSubBlocks)
		cursors[b] = make([]uint64, numSubBlocks)
	}
	return &PositionMatrix{NumBlocks: numBlocks, NumSubBlocks: numSubBlocks, Cells: cells, cursors: cursors}
}

// ResetCursors rewinds every cell's cursor back to its Start, for a fresh
// pass over all partitions (e.g. probe after build).
func (pm *PositionMatrix) ResetCursors() {
	for b, row := range pm.Cells {
		for h, cell := range row {
			pm.cursors[b][h] = cell.Start
		}
	}
}

// Cursor returns the current read position of cell (block, subBlock).
func (pm *PositionMatrix) Cursor(block, subBlock int) uint64 { return pm.cursors[block][subBlock] }

// SetCursor updates the read position of cell (block, subBlock).
func (pm *PositionMatrix) SetCursor(block, subBlock int, pos uint64) { pm.cursors[block][subBlock] = pos }

// blockSpan is one block's base offset and tuple count within a
// sub-relation.
type blockSpan struct {
	Base uint64
	Size uint64
}

// computeBlocks divides subSize tuples into ceil(subSize/ChunkSize)
// contiguous, left-to-right blocks. The first `remainder` blocks absorb
// one extra tuple each, per the avg+remainder split described for ICP.
func computeBlocks(subSize uint64) []blockSpan {
	numBlocks := int(ceilDivU64(subSize, ChunkSize))
	if numBlocks == 0 {
		numBlocks = 1
	}
	avg := subSize / uint64(numBlocks)
	remainder := subSize % uint64(numBlocks)

	spans := make([]blockSpan, numBlocks)
	var base uint64
	for i := range spans {
		size := avg
		if uint64(i) < remainder {
			size++
		}
		spans[i] = blockSpan{Base: base, Size: size}
		base += size
	}
	return spans
}

func ceilDivU64(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// partitionOf hashes key into a partition index: (key >> shift) & mask,
// mask = fanout-1.
func partitionOf(key uint32, shift, mask uint32) uint32 {
	return (key >> shift) & mask
}

// partitionIndices computes partitionOf(keys[i], shift, mask) for every
// key, writing the result into dst (len(dst) must be >= len(keys)). It
// processes hwy.MaxLanes[uint32]() keys per SIMD lane group via
// hwy.ShiftRight and hwy.And — the same shift-and-mask bucketing an LSD
// radix sort pass uses — with a scalar tail for the remainder below one
// lane group.
func partitionIndices(keys, dst []uint32, shift, mask uint32) {
	n := len(keys)
	lanes := hwy.MaxLanes[uint32]()
	maskVec := hwy.Set[uint32](mask)

	i := 0
	for ; i+lanes <= n; i += lanes {
		v := hwy.Load(keys[i:])
		v = hwy.ShiftRight(v, int(shift))
		v = hwy.And(v, maskVec)
		hwy.Store(v, dst[i:])
	}
	for ; i < n; i++ {
		dst[i] = partitionOf(keys[i], shift, mask)
	}
}

// histogramToOffsets converts an in-place partition histogram into an
// exclusive prefix sum of length fanout+1: offsets[p] is the first
// position of partition p within the block, offsets[fanout] is the
// block's total tuple count. It reuses algo.BasePrefixSum (an inclusive
// scan) by summing into offsets[1:] directly, leaving offsets[0] at its
// zero value.
func histogramToOffsets(hist []uint32) []uint32 {
	offsets := make([]uint32, len(hist)+1)
	copy(offsets[1:], hist)
	algo.BasePrefixSum(offsets[1:])
	return offsets
}

// icpOptions configures a single ICP pass.
type icpOptions struct {
	Bits         int // radix bits; 0 means no-op
	Shift        uint32
	NumSubBlocks int
}

// icpPass runs ICP over sub in place per opts, filling and returning a
// PositionMatrix. If opts.Bits == 0 the whole sub-relation is a single
// partition and a trivial one-cell-per-block matrix is returned without
// touching tuple order.
//
// Each block is processed by: copying the block's current tuples into a
// reusable scratch buffer, computing a histogram and exclusive prefix sum
// of that scratch copy, then scattering scratch tuples back into the
// block's own region of sub.Tuples at their partitioned offsets. Reading
// exclusively from scratch before writing back makes each block's
// reordering in-place using only one block-sized temporary, independent
// of how many blocks the sub-relation has.
func icpPass(sub *SubRelation, opts icpOptions) (*PositionMatrix, error) {
	spans := computeBlocks(sub.Size())
	fanout := 1
	if opts.Bits > 0 {
		fanout = 1 << opts.Bits
	}
	numSubBlocks := opts.NumSubBlocks
	if numSubBlocks <= 0 {
		numSubBlocks = 1
	}
	if opts.Bits > 0 && fanout%numSubBlocks != 0 {
		return nil, Fatalf("fanout-divisibility", "fanout %d not divisible by %d sub-blocks", fanout, numSubBlocks)
	}
	partitionsPerSubBlock := fanout / numSubBlocks

	pm := newPositionMatrix(len(spans), numSubBlocks)

	if opts.Bits == 0 {
		for b, span := range spans {
			pm.Cells[b][0] = PosCell{Start: span.Base, End: span.Base + span.Size}
		}
		pm.ResetCursors()
		return pm, nil
	}

	mask := uint32(fanout - 1)
	var scratch []Tuple
	var keys, idx []uint32

	for b, span := range spans {
		if cap(scratch) < int(span.Size) {
			scratch = make([]Tuple, span.Size)
			keys = make([]uint32, span.Size)
			idx = make([]uint32, span.Size)
		}
		scratch = scratch[:span.Size]
		keys = keys[:span.Size]
		idx = idx[:span.Size]
		copy(scratch, sub.Tuples[span.Base:span.Base+span.Size])
		for i, t := range scratch {
			keys[i] = t.Key
		}
		partitionIndices(keys, idx, opts.Shift, mask)

		hist := make([]uint32, fanout)
		for _, p := range idx {
			hist[p]++
		}
		offsets := histogramToOffsets(hist)

		cursor := make([]uint32, fanout)
		copy(cursor, offsets[:fanout])
		for i, t := range scratch {
			p := idx[i]
			dst := span.Base + uint64(cursor[p])
			sub.Tuples[dst] = t
			cursor[p]++
		}

		for m := 0; m < numSubBlocks; m++ {
			first := m * partitionsPerSubBlock
			last := first + partitionsPerSubBlock
			pm.Cells[b][m] = PosCell{
				Start: span.Base + uint64(offsets[first]),
				End:   span.Base + uint64(offsets[last]),
			}
		}
	}

	pm.ResetCursors()
	return pm, nil
}

// skewReport is the result of skew estimation on one thread's first block
// of S.
type skewReport struct {
	Heavy bool
}

// estimateSkew inspects a first-block histogram of S (fanout partitions,
// blockSize tuples) and reports whether this thread's local distribution
// looks too skewed to partition further, using the two-largest-bucket
// heuristic.
func estimateSkew(hist []uint32, blockSize uint64, rSize, sSize uint64) skewReport {
	if rSize == 0 || float64(sSize)/float64(rSize) < 3 {
		return skewReport{Heavy: false}
	}

	var maxA, maxB uint32
	for _, c := range hist {
		switch {
		case c > maxA:
			maxB = maxA
			maxA = c
		case c > maxB:
			maxB = c
		}
	}

	fanout := len(hist)
	bs := float64(blockSize)
	if fanout > 4 {
		return skewReport{Heavy: float64(maxA)+float64(maxB) > 0.35*bs}
	}
	return skewReport{Heavy: float64(maxA) > 0.5*bs+10}
}

// firstBlockHistogram computes the partition histogram of sub's first
// block only, without mutating sub, for use by skew estimation before any
// reordering has happened.
func firstBlockHistogram(sub *SubRelation, bits int, shift uint32) []uint32 {
	fanout := 1 << bits
	hist := make([]uint32, fanout)
	mask := uint32(fanout - 1)

	spans := computeBlocks(sub.Size())
	if len(spans) == 0 {
		return hist
	}
	first := spans[0]
	block := sub.Tuples[first.Base : first.Base+first.Size]
	keys := make([]uint32, len(block))
	for i, t := range block {
		keys[i] = t.Key
	}
	idx := make([]uint32, len(block))
	partitionIndices(keys, idx, shift, mask)
	for _, p := range idx {
		hist[p]++
	}
	return hist
}
