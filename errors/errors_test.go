package errors_test

import (
	"errors"
	"testing"

	liberr "github.com/nabbar/abinder/errors"
)

func TestNew_CodeAndMessage(t *testing.T) {
	e := liberr.New(liberr.PermDenied, "denied")

	if !e.IsCode(liberr.PermDenied) {
		t.Fatalf("expected code %d, got %d", liberr.PermDenied, e.GetCode())
	}
	if !liberr.PermDenied.IsPermission() {
		t.Fatalf("expected PermDenied to be in the permission band")
	}
}

func TestAdd_BuildsParentChain(t *testing.T) {
	root := errors.New("boom")
	e := liberr.New(liberr.TransportHangup, "peer gone", root)

	if !e.HasParent() {
		t.Fatalf("expected a parent chain")
	}

	e.Add(errors.New("second"))
	count := 0
	e.Map(func(_ error) bool {
		count++
		return true
	})
	if count != 3 {
		t.Fatalf("expected 3 nodes (self + 2 parents), got %d", count)
	}
}

func TestIs_And_Get(t *testing.T) {
	e := liberr.New(liberr.StateSealed, "sealed")
	var plain error = e

	if !liberr.Is(plain) {
		t.Fatalf("expected Is to report true")
	}
	if liberr.Get(plain) == nil {
		t.Fatalf("expected Get to return the Error")
	}
}

func TestMake_WrapsPlainError(t *testing.T) {
	plain := errors.New("plain")
	e := liberr.Make(plain)

	if e.GetCode() != liberr.Unset {
		t.Fatalf("expected Unset code for a wrapped plain error, got %d", e.GetCode())
	}
}

func TestIfError_NilWhenNoParents(t *testing.T) {
	if liberr.IfError(liberr.ArgInvalidName, "nope") != nil {
		t.Fatalf("expected nil when no parents supplied")
	}
	if liberr.IfError(liberr.ArgInvalidName, "nope", errors.New("x")) == nil {
		t.Fatalf("expected non-nil when a parent is supplied")
	}
}
