package tree

import (
	"fmt"

	"treescape/local-app/src/pkg/model"
)

// VisitOptions selects how SortedList walks the tree. The zero value is the
// strictest walk; DefaultVisitOptions matches the documented defaults.
type VisitOptions struct {
	// WithExpandable stops descent below interior nodes whose Expand flag is
	// off. The collapsed node itself is still emitted.
	WithExpandable bool
	// FastVisit trusts the cached child sets as-is. When off, every hop is
	// validated: children must resolve, their parent back-reference must
	// match, and revisiting a node fails instead of recursing forever. Both
	// modes produce the same node set and order on a consistent store.
	FastVisit bool
}

// DefaultVisitOptions returns the documented defaults: expand-aware, fast.
func DefaultVisitOptions() VisitOptions {
	return VisitOptions{WithExpandable: true, FastVisit: true}
}

// SortedList flattens the current in-memory tree state into display order:
// pre-order depth-first from the root, children in the store's stable
// ascending-id order. Nodes with negative depth anchor the walk but are not
// emitted. The traversal is read-only and never touches the generator.
func (e *Engine[T]) SortedList(opts VisitOptions) ([]*model.TreeNode[T], error) {
	if e.root == nil {
		return nil, ErrTreeNotInitialized
	}

	v := &visitor[T]{store: e.store, opts: opts}
	if !opts.FastVisit {
		v.visited = make(map[int]struct{})
	}
	if err := v.visit(e.root); err != nil {
		return nil, err
	}
	return v.out, nil
}

type visitor[T any] struct {
	store   *Store[T]
	opts    VisitOptions
	visited map[int]struct{}
	out     []*model.TreeNode[T]
}

func (v *visitor[T]) visit(n *model.TreeNode[T]) error {
	if v.visited != nil {
		if _, ok := v.visited[n.ID]; ok {
			return fmt.Errorf("node %d: %w", n.ID, ErrCycleDetected)
		}
		v.visited[n.ID] = struct{}{}
	}

	if n.Depth >= 0 {
		v.out = append(v.out, n)
	}
	if len(n.ChildIDs) == 0 {
		// Leaf: nothing to decide.
		return nil
	}
	if v.opts.WithExpandable && n.Depth >= 0 && !n.Expand {
		return nil
	}

	for _, id := range n.SortedChildIDs() {
		child, err := v.child(n, id)
		if err != nil {
			return err
		}
		if child == nil {
			continue
		}
		if err := v.visit(child); err != nil {
			return err
		}
	}
	return nil
}

// child resolves one hop. The fast pass tolerates a missing entry by
// skipping it; the precise pass fails and additionally checks the
// back-reference.
func (v *visitor[T]) child(parent *model.TreeNode[T], id int) (*model.TreeNode[T], error) {
	child, err := v.store.Get(id)
	if v.opts.FastVisit {
		if err != nil {
			return nil, nil
		}
		return child, nil
	}
	if err != nil {
		return nil, fmt.Errorf("child %d of node %d: %w", id, parent.ID, err)
	}
	if child.ParentID != parent.ID {
		return nil, fmt.Errorf("child %d reached from node %d but references parent %d: %w",
			child.ID, parent.ID, child.ParentID, ErrInconsistentTree)
	}
	return child, nil
}
