package typeerr

import "fmt"

// The following are returned (never panicked, except where
// typir.Config.OnInheritanceCycle opts into ThrowError) for invariant
// violations and host misuse.

// DuplicateType is returned when a node is installed with an identifier
// that already has a live node, bypassing the producedType dedup path.
type DuplicateType struct {
	Identifier string
}

func (e *DuplicateType) Error() string {
	return fmt.Sprintf("a type with identifier %q is already registered", e.Identifier)
}

// CycleIntroduced is returned when adding an edge (or, for class kinds, a
// super-class) would introduce a cycle where one is disallowed.
type CycleIntroduced struct {
	From, To string
	Mode     string
}

func (e *CycleIntroduced) Error() string {
	return fmt.Sprintf("adding %s %s -> %s would introduce a cycle", e.Mode, e.From, e.To)
}

// UnresolvedReference is returned by the strict Resolve when a descriptor
// cannot be located.
type UnresolvedReference struct {
	Descriptor string
}

func (e *UnresolvedReference) Error() string {
	return fmt.Sprintf("could not resolve type for descriptor: %s", e.Descriptor)
}

// InvalidState is returned when an operation requires a node to be in a
// particular state but it is elsewhere.
type InvalidState struct {
	Identifier string
	Wanted     string
	Actual     string
}

func (e *InvalidState) Error() string {
	return fmt.Sprintf("type %q must be %s, but is %s", e.Identifier, e.Wanted, e.Actual)
}
