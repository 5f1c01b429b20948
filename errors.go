package bitecs

import "github.com/rotisserie/eris"

// Failure kinds reported by registry operations. Hot-path operations
// (component add/get/remove, scans) signal failure through nil pointers
// and booleans instead; these sentinels cover the cold paths, wrapped
// with call-site context. Match with eris.Is.
var (
	// ErrCapacityExceeded: a mask would need more than GroupsCount
	// groups, or a component id is outside [0, MaxComponents).
	ErrCapacityExceeded = eris.New("bitecs: capacity exceeded")
	// ErrNotDefined: the component id has no arena in this registry.
	ErrNotDefined = eris.New("bitecs: component not defined")
	// ErrNotPresent: the entity does not carry the component.
	ErrNotPresent = eris.New("bitecs: component not present")
	// ErrStaleHandle: the EntityPtr generation mismatches, or the slot
	// is a tombstone.
	ErrStaleHandle = eris.New("bitecs: stale entity handle")
	// ErrDuplicateComponent: the component id is already defined.
	ErrDuplicateComponent = eris.New("bitecs: component already defined")
	// ErrArchitectureMismatch: merge or clone between registries whose
	// component definitions differ.
	ErrArchitectureMismatch = eris.New("bitecs: registry architecture mismatch")
)
