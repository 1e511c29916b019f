// Package testshim provides small in-repo stand-ins for the external
// collaborators that layout, profile, and export assume but never
// construct themselves: a source-location handle, a bespoke array, and a
// JIT IR block. None of these carry real semantics; they exist so the
// in-scope packages can be exercised without a real runtime.
package testshim

import (
	"fmt"

	"github.com/forestrie/go-bespoke-array/layout"
	"github.com/forestrie/go-bespoke-array/profile"
)

// SrcKey is a minimal profile.SrcKey: a function name and a bytecode
// offset, rendered the way a disassembly listing would.
type SrcKey struct {
	Fn     string
	Offset int
}

func (k SrcKey) Valid() bool                { return k.Fn != "" }
func (k SrcKey) Canonical() profile.SrcKey  { return k }
func (k SrcKey) Symbol() string             { return fmt.Sprintf("%s@%d", k.Fn, k.Offset) }
func (k SrcKey) ShowInst() string           { return fmt.Sprintf("# %s+%d", k.Fn, k.Offset) }

// Array is a bespoke array stand-in satisfying both layout.ArrayData and
// profile.SinkArray, so a single fixture can flow through both packages'
// tests. A zero-value Array with Vanilla set reports as the canonical
// representation.
type Array struct {
	Idx     layout.LayoutIndex
	Vanilla bool
	Sampled bool
	Shim    bool
	ArrKind int
	Entries profile.EntryTypes
	Source  *profile.LoggingProfile
}

func (a Array) LayoutIndex() layout.LayoutIndex          { return a.Idx }
func (a Array) IsVanilla() bool                          { return a.Vanilla }
func (a Array) IsSampled() bool                          { return a.Sampled }
func (a Array) IsLoggingShim() bool                      { return a.Shim }
func (a Array) Kind() int                                { return a.ArrKind }
func (a Array) EntryTypes() profile.EntryTypes           { return a.Entries }
func (a Array) SourceProfile() *profile.LoggingProfile    { return a.Source }

// IRBlock is a layout.IRBlock that records every call it would have
// emitted, for tests that assert on emission shape rather than on running
// JIT output.
type IRBlock struct {
	Calls []Call
	Punts []string
}

// Call records one EmitCall invocation.
type Call struct {
	Op   string
	Args []any
}

func (b *IRBlock) EmitCall(op string, args ...any) {
	b.Calls = append(b.Calls, Call{Op: op, Args: args})
}

func (b *IRBlock) EmitPunt(reason string) {
	b.Punts = append(b.Punts, reason)
}
