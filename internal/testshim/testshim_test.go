package testshim

import (
	"testing"

	"github.com/forestrie/go-bespoke-array/layout"
	"github.com/forestrie/go-bespoke-array/profile"
)

func TestSrcKeySymbol(t *testing.T) {
	k := SrcKey{Fn: "alloc", Offset: 4}
	if got, want := k.Symbol(), "alloc@4"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if !k.Valid() {
		t.Fatalf("expected non-empty SrcKey to be valid")
	}
	if (SrcKey{}).Valid() {
		t.Fatalf("expected zero-value SrcKey to be invalid")
	}
}

func TestIRBlockRecordsCallsAndPunts(t *testing.T) {
	b := &IRBlock{}
	b.EmitCall("bespokeGet", uint16(3), true)
	b.EmitPunt("set is not specialized")

	if len(b.Calls) != 1 || b.Calls[0].Op != "bespokeGet" {
		t.Fatalf("expected one recorded call, got %v", b.Calls)
	}
	if len(b.Punts) != 1 || b.Punts[0] != "set is not specialized" {
		t.Fatalf("expected one recorded punt, got %v", b.Punts)
	}
}

func TestArraySatisfiesBothInterfaces(t *testing.T) {
	a := Array{Vanilla: true, ArrKind: 1}
	var _ layout.ArrayData = a
	var _ profile.SinkArray = a
	if !a.IsVanilla() {
		t.Fatalf("expected IsVanilla true")
	}
	if a.IsLoggingShim() {
		t.Fatalf("expected IsLoggingShim false for a vanilla array")
	}
}
