// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import "fmt"

// FatalError represents an internal inconsistency the engine treats as
// unrecoverable: requested threads exceeding available hardware threads,
// allocation failure, a radix plan that violates the divisibility
// invariant, or staged-barrier misuse. There is no retry and no partial
// success — the caller should report Invariant and Detail and exit
// nonzero.
type FatalError struct {
	// Invariant names the specific invariant that was violated, e.g.
	// "fanout-divisibility" or "topology-mismatch".
	Invariant string
	// Detail is a human-readable explanation, already formatted.
	Detail string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("radixjoin: fatal: %s: %s", e.Invariant, e.Detail)
}

// Fatalf builds a *FatalError (returned as error) with Detail formatted
// from format/args. It is the single constructor for core-internal fatal
// conditions.
func Fatalf(invariant, format string, args ...any) error {
	return &FatalError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)}
}

// AsFatal reports whether err is a *FatalError and returns it.
func AsFatal(err error) (*FatalError, bool) {
	fe, ok := err.(*FatalError)
	return fe, ok
}
