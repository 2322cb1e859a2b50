package fxom

import "errors"

// Sentinel errors returned by mutations.
var (
	// ErrAttached is returned when a node that must be detached has a parent.
	ErrAttached = errors.New("node is already attached")

	// ErrForeignDocument is returned when nodes of different documents are linked.
	ErrForeignDocument = errors.New("node belongs to another document")

	// ErrCycle is returned when an object would become its own descendant.
	ErrCycle = errors.New("operation would create a cycle")

	// ErrNotChild is returned when a node is removed from a parent it does
	// not belong to.
	ErrNotChild = errors.New("node is not a child of this parent")

	// ErrDuplicateProperty is returned when an instance already has a
	// property of the same name.
	ErrDuplicateProperty = errors.New("property already set")

	// ErrEmptyProperty is returned when a complex property would have no values.
	ErrEmptyProperty = errors.New("complex property needs at least one value")

	// ErrInvalidID is returned for ids that are not identifiers.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidName is returned for property names that cannot be written.
	ErrInvalidName = errors.New("invalid property name")

	// ErrUnbalancedUpdate is returned by EndUpdate without a matching BeginUpdate.
	ErrUnbalancedUpdate = errors.New("EndUpdate without BeginUpdate")
)
