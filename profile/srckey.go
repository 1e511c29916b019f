// Package profile implements the logging-and-profiling pipeline: per
// source-location event tables and per-sink type histograms, guarded by a
// shared export gate so that export can freeze them without taking a lock
// on every sampled operation.
package profile

// SrcKey is the opaque source-location handle the core consumes. Real
// construction (function + bytecode offset + resume-mode) is out of
// scope; this package only requires equality, a stable hash for use as a
// map key, and a human-readable rendering for reports.
type SrcKey interface {
	// Valid reports whether this SrcKey names a real location. An invalid
	// SrcKey is rejected at every ingress point rather than propagated.
	Valid() bool

	// Canonical forces resume-mode to "None" so callers never need a
	// bespoke comparison that ignores it; two SrcKeys that differ only in
	// resume-mode return the same Canonical() value.
	Canonical() SrcKey

	// Symbol and ShowInst are the two lines the text report prints for
	// every source and sink: the short symbolic name, and a disassembly
	// or source-line rendering.
	Symbol() string
	ShowInst() string
}

// EmptySrcKey stands in wherever there is no real source location to
// report: release-only operations logged outside any frame, or a VM
// register anchor that failed to resolve. It is never Valid.
type EmptySrcKey struct{}

func (EmptySrcKey) Valid() bool       { return false }
func (e EmptySrcKey) Canonical() SrcKey { return e }
func (EmptySrcKey) Symbol() string    { return "<unknown>" }
func (EmptySrcKey) ShowInst() string  { return "" }

// canonicalize is the package-internal helper every ingress point routes
// through before using a SrcKey as a map key: SrcKey carries more than the
// (function, offset) pair, but profiling groups by those two fields alone.
func canonicalize(sk SrcKey) SrcKey {
	if sk == nil {
		return EmptySrcKey{}
	}
	return sk.Canonical()
}

// ShouldLog is an optional denylist hook consulted by GetLoggingProfile
// after a SrcKey has passed Valid() and been canonicalized. It lets a host
// process reject instruction patterns known never to benefit from a
// specialized layout (array literals consumed by type-structure tests, for
// example) without this package needing any opcode knowledge of its own.
// Nil, the default, accepts every valid SrcKey.
var ShouldLog func(sk SrcKey) bool
