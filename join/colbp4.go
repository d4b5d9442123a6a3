// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

// ColBPIV would handle R_bits > S_bits > 0: finer R partitions than S,
// requiring the symmetric generalization of Model II with coarser S
// partitions re-grouped under R partitions. That generalization isn't
// implemented; the model dispatcher's size heuristic never selects it
// (Model II's R_bits == S_bits choice or Model III's demotion on skew are
// the only auto-selected partitioned plans), so the only way to reach it
// is a user-forced plan with R_bits > S_bits > 0. ColBPIV rejects that
// plan rather than silently computing a wrong join.
func ColBPIV(ctx *Context) error {
	return Fatalf("model-iv-unimplemented",
		"R_bits=%d S_bits=%d requires Model IV, which is not implemented; use a plan with R_bits == S_bits, S_bits == 0, or R_bits == 0",
		ctx.Plan.RBits, ctx.Plan.SBits)
}
