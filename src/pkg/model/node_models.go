// Package model defines the data structures shared across the Treescape application.
package model

import "sort"

// TreeNode is a single node in a lazily-populated tree. All cross-references
// between nodes are integer ids into the owning store; a TreeNode never holds
// a pointer to another node, so partially-loaded trees cannot form ownership
// cycles.
type TreeNode[T any] struct {
	// ID is unique and stable for the node's lifetime.
	ID int
	// Key is the generator-supplied stable identity of the node under its
	// parent. Refreshing a parent matches returned children against this key,
	// so a child that is reported again keeps its id and expand state.
	Key string
	// Value is the opaque payload owned by the node.
	Value T
	// Depth is the distance from the root. A negative depth marks a virtual
	// node that anchors traversal but never appears in flattened output.
	Depth int
	// ParentID is a back-reference used for lookup and removal bookkeeping
	// only. The root references itself.
	ParentID int
	// ChildIDs is an unordered id set. Membership is the only contract;
	// display order is recomputed at traversal time. An empty set means "no
	// children loaded", which is distinct from HasChild.
	ChildIDs map[int]struct{}
	// Expand controls whether the node's children are included when the tree
	// is flattened for display. Mutated by the UI layer, read by traversal.
	Expand bool
	// HasChild reports whether the generator considers the node expandable,
	// independent of whether ChildIDs has been populated yet.
	HasChild bool
}

// SortedChildIDs returns the node's child ids in the store's stable iteration
// order (ascending id).
func (n *TreeNode[T]) SortedChildIDs() []int {
	ids := make([]int, 0, len(n.ChildIDs))
	for id := range n.ChildIDs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Interior reports whether the node should be treated as an interior node
// during traversal: it either has loaded children or the generator marked it
// as expandable.
func (n *TreeNode[T]) Interior() bool {
	return n.HasChild || len(n.ChildIDs) > 0
}

// Item is the payload Treescape attaches to every tree node it displays.
type Item struct {
	Name string            `json:"name"`
	Path string            `json:"path,omitempty"`
	Meta map[string]string `json:"meta,omitempty"`
}
