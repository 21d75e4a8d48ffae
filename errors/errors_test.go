// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package errors

import (
	"errors"
	"testing"
)

func TestEKind(t *testing.T) {
	err := E(Invalid, "end_row", "no row open")
	if !Is(Invalid, err) {
		t.Fatalf("expected Invalid, got %v", err)
	}
	if Is(Unavailable, err) {
		t.Fatalf("did not expect Unavailable: %v", err)
	}
}

func TestEChainInheritsKind(t *testing.T) {
	inner := E(Unavailable, "journal full")
	outer := E("append", inner)
	if !Is(Unavailable, outer) {
		t.Fatalf("expected outer to inherit Unavailable kind, got %v", outer)
	}
}

func TestErrorString(t *testing.T) {
	err := E(Invalid, "end_row", "no row open")
	want := "end_row no row open: invalid state"
	if got := err.Error(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCleanUpChainsSecondError(t *testing.T) {
	first := errors.New("first")
	var dst error = first
	CleanUp(func() error { return errors.New("second") }, &dst)
	if dst == first {
		t.Fatal("expected dst to be replaced with a chained error")
	}
}

func TestCleanUpNoError(t *testing.T) {
	var dst error
	CleanUp(func() error { return nil }, &dst)
	if dst != nil {
		t.Fatalf("expected nil, got %v", dst)
	}
}
