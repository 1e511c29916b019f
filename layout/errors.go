package layout

import "errors"

// Registration-time errors. A C++ implementation of this scheme would
// treat these as fatal assertions; here they are returned so callers can
// decide whether a construction-time violation should panic or simply
// fail.
var (
	ErrIndexExhausted       = errors.New("layout: index space exhausted")
	ErrBadBlockSize         = errors.New("layout: reserved block size must be a power of two")
	ErrDuplicateDescription = errors.New("layout: description already registered")
	ErrIndexInUse           = errors.New("layout: index already has a registered layout")
	ErrNoParents            = errors.New("layout: non-root layout must have at least one parent")
	ErrRootHasParents       = errors.New("layout: root layout must have no parents")
	ErrParentNotRegistered  = errors.New("layout: parent is not a registered layout of this registry")
	ErrParentNotImmediate   = errors.New("layout: supplied parent is an ancestor of another supplied parent")
	ErrAmbiguousLiveable    = errors.New("layout: liveable immediate parent is not the sole parent of a non-liveable child")
	ErrAlreadyFinalized     = errors.New("layout: registry is already finalized")

	// ErrNotFinalized is returned by lattice queries on a non-Top argument
	// before FinalizeHierarchy has been called.
	ErrNotFinalized = errors.New("layout: lattice query on non-Top layout before finalization")

	// ErrDispatchMismatch is the debug-mode dispatcher's rejection of an
	// array whose layout index doesn't match the vtable being invoked.
	ErrDispatchMismatch = errors.New("layout: dispatch called with array of the wrong layout")

	// ErrMeetNotUnique/ErrJoinNotUnique are debug-mode lattice-invariant
	// cross checks, validating that a meet or join candidate is unique
	// rather than assuming it (see DESIGN.md for the reasoning).
	ErrMeetNotUnique = errors.New("layout: meet of two layouts is not unique")
	ErrJoinNotUnique = errors.New("layout: join of two layouts is not unique")
)
