package collection

import "errors"

// Structural-invariant violations are precondition failures returned to the
// immediate caller; none of them is transient and none is retried.
var (
	// ErrNotFound reports a node or parent id that does not exist.
	ErrNotFound = errors.New("node not found")

	// ErrNotACollection reports a "must be a collection" target that is
	// actually a request.
	ErrNotACollection = errors.New("node is not a collection")

	// ErrNotARequest reports a "must be a request" target that is actually
	// a collection.
	ErrNotARequest = errors.New("node is not a request")

	// ErrDuplicateName reports a sibling-name collision on create, rename,
	// or move.
	ErrDuplicateName = errors.New("a sibling with this name already exists")

	// ErrCyclicMove reports a move whose destination is the node itself or
	// one of its own descendants.
	ErrCyclicMove = errors.New("cannot move a node into itself or its descendants")
)
