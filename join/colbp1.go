// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

// ColBPI runs Model I: a single shared hash table over unpartitioned R,
// sized |R|+1 and already allocated and zeroed via
// Context.AllocateSharedTable. Every worker scatters its whole SubR
// share, then gathers its whole SubS share. The two phases are separated
// by the global barrier since Model I has no per-iteration rotation to
// amortize with a staged barrier.
func ColBPI(table *Table, subR, subS *SubRelation, bar *Barrier) (matches, checksum uint64) {
	for _, t := range subR.Tuples {
		table.Set(t.Key, t.Payload)
		checksum += uint64(t.Key)
	}
	bar.Arrive()

	for _, t := range subS.Tuples {
		checksum += uint64(table.Get(t.Key))
		matches++
	}
	bar.Arrive()

	return matches, checksum
}
