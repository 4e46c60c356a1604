// Package tree implements the lazily-populated tree engine: an id-indexed
// node store, the refresh protocol that keeps it in sync with a node
// generator, and the traversal that flattens it for display.
package tree

import (
	"fmt"

	"treescape/local-app/src/pkg/model"
)

// Store owns every TreeNode of one tree instance, indexed by id. It is the
// single source of truth for node existence; all parent/child references in
// the tree are ids into this store. Stable iteration order over a node's
// children is ascending id.
type Store[T any] struct {
	nodes  map[int]*model.TreeNode[T]
	nextID int
}

// NewStore creates an empty Store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		nodes:  make(map[int]*model.TreeNode[T]),
		nextID: 1,
	}
}

// AllocateID returns a fresh id, never one held by a live node.
func (s *Store[T]) AllocateID() int {
	id := s.nextID
	s.nextID++
	return id
}

// Put inserts or overwrites the node at its id.
func (s *Store[T]) Put(node *model.TreeNode[T]) {
	if node.ID >= s.nextID {
		s.nextID = node.ID + 1
	}
	s.nodes[node.ID] = node
}

// Get returns the node with the given id.
func (s *Store[T]) Get(id int) (*model.TreeNode[T], error) {
	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
	}
	return node, nil
}

// GetMany returns the nodes for the given ids, in input order. A single
// missing id fails the whole call with no partial result.
func (s *Store[T]) GetMany(ids []int) ([]*model.TreeNode[T], error) {
	nodes := make([]*model.TreeNode[T], 0, len(ids))
	for _, id := range ids {
		node, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// Remove deletes the node with the given id. The caller is responsible for
// first detaching it from its parent's child set.
func (s *Store[T]) Remove(id int) {
	delete(s.nodes, id)
}

// Has reports whether a node with the given id is live.
func (s *Store[T]) Has(id int) bool {
	_, ok := s.nodes[id]
	return ok
}

// Len returns the number of live nodes.
func (s *Store[T]) Len() int {
	return len(s.nodes)
}
