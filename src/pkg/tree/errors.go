package tree

import "errors"

var (
	// ErrTreeNotInitialized is returned by any operation invoked before Init.
	ErrTreeNotInitialized = errors.New("tree not initialized")

	// ErrNodeNotFound is returned when an id resolves to no live node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrGenerator marks failures reported by the node generator. The
	// underlying cause is wrapped alongside it.
	ErrGenerator = errors.New("generator failure")

	// ErrCycleDetected is returned by the precise visit pass when a node is
	// reachable through more than one path.
	ErrCycleDetected = errors.New("cycle detected in tree")

	// ErrInconsistentTree is returned by the precise visit pass when a
	// child's back-reference does not match the parent it was reached from.
	ErrInconsistentTree = errors.New("inconsistent tree structure")
)
