// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

package join

import (
	"errors"
	"testing"
)

func TestFatalfAndAsFatal(t *testing.T) {
	err := Fatalf("thread-count", "requested %d threads", -1)

	fe, ok := AsFatal(err)
	if !ok {
		t.Fatal("AsFatal returned ok=false for a *FatalError")
	}
	if fe.Invariant != "thread-count" {
		t.Errorf("Invariant = %q, want thread-count", fe.Invariant)
	}
	if fe.Detail != "requested -1 threads" {
		t.Errorf("Detail = %q, want %q", fe.Detail, "requested -1 threads")
	}
	if err.Error() == "" {
		t.Error("Error() returned empty string")
	}
}

func TestAsFatalRejectsOtherErrors(t *testing.T) {
	if _, ok := AsFatal(errors.New("plain")); ok {
		t.Error("AsFatal returned ok=true for a non-FatalError")
	}
}
