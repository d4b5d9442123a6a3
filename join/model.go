// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "math/bits"

// bucketSizeBytes is the width of one hash-table cell: a single 32-bit
// payload, per the array-of-buckets, collision-free table design.
const bucketSizeBytes = 4

// Model identifies which ColBP variant a plan dispatches to.
type Model int

const (
	ModelI   Model = iota // no partitioning, single shared table over R
	ModelII               // symmetric per-LLC tables, rotation across groups
	ModelIII              // single |R|-sized table, partitioned on R's high bits, S unpartitioned
	ModelIV               // asymmetric fanouts, deferred
)

func (m Model) String() string {
	switch m {
	case ModelI:
		return "I"
	case ModelII:
		return "II"
	case ModelIII:
		return "III"
	case ModelIV:
		return "IV"
	default:
		return "unknown"
	}
}

// SelectModel chooses a ColBP variant from the final (R_bits, S_bits), per
// the dispatch table: (0,0) -> I, (r,r>0) -> II, (r>0,0) -> III,
// (r>s>0) -> IV.
func SelectModel(plan RadixPlan) (Model, error) {
	switch {
	case plan.RBits == 0 && plan.SBits == 0:
		return ModelI, nil
	case plan.RBits == plan.SBits && plan.RBits > 0:
		return ModelII, nil
	case plan.RBits > 0 && plan.SBits == 0:
		return ModelIII, nil
	case plan.RBits > plan.SBits && plan.SBits > 0:
		return ModelIV, nil
	default:
		return 0, Fatalf("model-dispatch", "no model for R_bits=%d S_bits=%d", plan.RBits, plan.SBits)
	}
}

// ComputePlan derives the initial radix plan from relation R's size and
// the topology's LLC size, per the plan-selection size heuristic:
//
//   - if |R|*sizeof(bucket) <= 6/5 * llc_size, the whole table fits in LLC
//     with slack: Model I (R_bits = S_bits = 0).
//   - otherwise R_bits = S_bits = ceil(log2(|R|*sizeof(bucket) /
//     (2/3*llc_size))), i.e. the fanout that makes each R-partition's
//     table occupy about 2/3 of an LLC.
//
// The chosen bits are rounded up until 2^bits is divisible by numGroups,
// the invariant ColBP's per-group rotation requires. If userRadixR or
// userRadixS is non-negative, that value is used directly instead and
// UserDefined is latched (which also disables skew-triggered rewrites).
func ComputePlan(topo TopologyFacts, rSize uint64, numGroups int, userRadixR, userRadixS int) (RadixPlan, error) {
	if userRadixR >= 0 || userRadixS >= 0 {
		r, s := userRadixR, userRadixS
		if r < 0 {
			r = 0
		}
		if s < 0 {
			s = 0
		}
		plan := RadixPlan{RBits: r, SBits: s, UserDefined: true}
		if err := checkDivisibility(plan.FanoutR(), numGroups); err != nil {
			return RadixPlan{}, err
		}
		if err := checkDivisibility(plan.FanoutS(), numGroups); err != nil {
			return RadixPlan{}, err
		}
		return plan, nil
	}

	if topo.LLCSizeBytes <= 0 {
		return RadixPlan{}, Fatalf("topology", "llc size must be positive")
	}

	tableBytes := rSize * bucketSizeBytes
	slackLimit := (6 * uint64(topo.LLCSizeBytes)) / 5
	if tableBytes <= slackLimit {
		return RadixPlan{RBits: 0, SBits: 0}, nil
	}

	target := (2 * uint64(topo.LLCSizeBytes)) / 3
	if target == 0 {
		return RadixPlan{}, Fatalf("topology", "llc size too small to fit any partition")
	}
	fanoutNeeded := ceilDivU64(tableBytes, target)
	radixBits := ceilLog2(fanoutNeeded)

	radixBits, err := roundUpForDivisibility(radixBits, numGroups)
	if err != nil {
		return RadixPlan{}, err
	}

	return RadixPlan{RBits: radixBits, SBits: radixBits}, nil
}

// ceilLog2 returns the smallest b such that 2^b >= n (n >= 1).
func ceilLog2(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}

// maxDivisibilitySearch bounds how many extra bits roundUpForDivisibility
// will try before giving up; num_groups values requiring more than this
// many extra fanout doublings to divide evenly are not supported (the
// fanout-indivisibility fallback described as a future open question).
const maxDivisibilitySearch = 32

func roundUpForDivisibility(bitsWanted, numGroups int) (int, error) {
	if numGroups <= 1 {
		return bitsWanted, nil
	}
	for b := bitsWanted; b < bitsWanted+maxDivisibilitySearch; b++ {
		if (1<<uint(b))%numGroups == 0 {
			return b, nil
		}
	}
	return 0, Fatalf("fanout-divisibility", "no power-of-two fanout near %d bits is divisible by %d groups", bitsWanted, numGroups)
}

func checkDivisibility(fanout, numGroups int) error {
	if fanout <= 1 || numGroups <= 1 {
		return nil
	}
	if fanout%numGroups != 0 {
		return Fatalf("fanout-divisibility", "fanout %d not divisible by %d groups", fanout, numGroups)
	}
	return nil
}
