// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import (
	"github.com/samber/lo"

	"github.com/ajroetker/radixjoin/hwy/contrib/workerpool"
)

// Result is the engine's whole output: the summed match count and the
// summed checksum across every worker thread.
type Result struct {
	Matches  uint64
	Checksum uint64
}

// RunOptions configures one join run.
type RunOptions struct {
	Topology           TopologyFacts
	Resolve            CPUResolver
	NumThreads         int
	FavorPhysicalCores bool

	// UserRadixR and UserRadixS override automatic plan selection when
	// either is >= 0; a negative value means "not set". Setting either
	// latches RadixPlan.UserDefined, disabling skew-triggered rewrites.
	UserRadixR int
	UserRadixS int

	// Pinner pins each worker's OS thread to its placed CPU.
	// workerpool.NoopPinner is a valid choice for tests and platforms
	// without affinity support.
	Pinner workerpool.Pinner
}

// Run executes one full join of r against s per opts and returns the
// reduced result, the model that was dispatched, and an error if any
// worker hit a fatal condition. On error the result and model are the
// zero value; per the core's fail-fast error model there is no partial
// result to report.
func Run(r, s *Relation, opts RunOptions) (Result, Model, error) {
	placements, numGroups, err := Place(opts.Topology, opts.Resolve, opts.NumThreads, opts.FavorPhysicalCores)
	if err != nil {
		return Result{}, 0, err
	}

	plan, err := ComputePlan(opts.Topology, r.Size(), numGroups, opts.UserRadixR, opts.UserRadixS)
	if err != nil {
		return Result{}, 0, err
	}

	ctx := NewContext(placements, numGroups, opts.Topology, plan, r.Size())

	subRs := splitRelation(r, opts.NumThreads)
	subSs := splitRelation(s, opts.NumThreads)

	bar := NewBarrier(opts.NumThreads)
	sbar := NewStagedBarrier(opts.NumThreads)

	cpus := make([]int, opts.NumThreads)
	for i, p := range placements {
		cpus[i] = p.CPU
	}

	results := make([]Result, opts.NumThreads)
	errs := make([]error, opts.NumThreads)
	var model Model

	workerpool.Launch(cpus, opts.Pinner, func(tid int) {
		sc := NewStepCounter()

		abort := func(err error) {
			errs[tid] = err
			bar.Abort()
			sbar.Abort()
		}

		pmS, err := ctx.PartitionS(&subSs[tid], tid, sbar, sc)
		if err != nil {
			abort(err)
			return
		}
		bar.Arrive()

		if tid == 0 {
			if ctx.Plan.RBits > 0 && ctx.Plan.SBits == 0 {
				ctx.Plan.ModelIIIShift = modelIIIShift(r.Size(), ctx.Plan.RBits)
			}
		}
		bar.Arrive()

		pmR, err := ctx.PartitionR(&subRs[tid])
		if err != nil {
			abort(err)
			return
		}
		bar.Arrive()

		if tid == 0 {
			m, err := SelectModel(ctx.Plan)
			if err != nil {
				abort(err)
			}
			model = m
		}
		bar.Arrive()
		if errs[0] != nil {
			return
		}

		switch model {
		case ModelI:
			table := ctx.AllocateSharedTable(tid, r.Size()+1, bar)
			m, c := ColBPI(table, &subRs[tid], &subSs[tid], bar)
			results[tid] = Result{Matches: m, Checksum: c}

		case ModelII:
			gt := ctx.AllocateGroupTables(tid, r.Size(), bar)
			m, c := ColBPII(ctx, gt, &subRs[tid], &subSs[tid], pmR, pmS, tid, sbar, sc)
			results[tid] = Result{Matches: m, Checksum: c}

		case ModelIII:
			table := ctx.AllocateSharedTable(tid, r.Size()+1, bar)
			m, c := ColBPIII(ctx, table, &subRs[tid], &subSs[tid], pmR, tid, sbar, sc, bar)
			results[tid] = Result{Matches: m, Checksum: c}

		case ModelIV:
			errs[tid] = ColBPIV(ctx)
		}
	})

	for _, e := range errs {
		if e != nil {
			return Result{}, 0, e
		}
	}

	total := Result{
		Matches:  lo.SumBy(results, func(r Result) uint64 { return r.Matches }),
		Checksum: lo.SumBy(results, func(r Result) uint64 { return r.Checksum }),
	}
	return total, model, nil
}

// modelIIIShift computes the high-bit shift ICP(R) uses under Model III:
// lg_ceil(|R|) - r_bits - 1, clamped to 0 so a very small R or large
// r_bits never produces a negative shift.
func modelIIIShift(rSize uint64, rBits int) int {
	shift := ceilLog2(rSize) - rBits - 1
	if shift < 0 {
		shift = 0
	}
	return shift
}
