// Package generator defines the node generator contract the tree engine
// depends on, plus the generators shipped with Treescape.
//
// A generator is a pure data source: it produces the root record and, on
// demand, the records needed to build a node's children. It performs no
// traversal and holds no tree state of its own.
package generator

import (
	"context"

	"treescape/local-app/src/pkg/model"
)

// NodeData is one record returned by a generator, carrying everything the
// engine needs to build or update a tree node.
type NodeData[T any] struct {
	// Key is the stable identity of the record. The engine matches returned
	// children against the keys of existing children, so a record reported
	// again across refreshes keeps its node id and expand state. Keys must be
	// unique within one generator.
	Key string
	// Value is the payload stored on the node.
	Value T
	// HasChild reports whether the record itself can have children, before
	// any of them have been fetched.
	HasChild bool
}

// Generator supplies root and child data for one tree instance. Both calls
// may block on I/O and must honor context cancellation. Failures propagate
// unchanged to whoever triggered the fetch; the engine never retries.
type Generator[T any] interface {
	// CreateRootNode produces the root record. Returning (nil, nil) asks the
	// engine to synthesize a hidden empty root instead.
	CreateRootNode(ctx context.Context) (*NodeData[T], error)

	// FetchChildren returns the records for the node's current children. An
	// empty result means the node has no children right now.
	FetchChildren(ctx context.Context, node *model.TreeNode[T]) ([]NodeData[T], error)
}
