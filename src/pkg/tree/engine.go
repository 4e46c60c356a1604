package tree

import (
	"context"
	"fmt"

	"treescape/local-app/src/pkg/event"
	"treescape/local-app/src/pkg/generator"
	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
)

// Engine orchestrates one lazily-populated tree: it bridges the Store and a
// Generator, owns the refresh protocol and hands the current state to the
// traversal. The engine defines no internal locking; concurrent callers
// issuing overlapping refreshes must serialize themselves (the session layer
// does this through its command executor).
type Engine[T any] struct {
	store  *Store[T]
	gen    generator.Generator[T]
	root   *model.TreeNode[T]
	events *event.EventManager
	logger *log.Logger
}

// NewEngine creates an Engine for the given generator. The tree is unusable
// until Init is called.
func NewEngine[T any](gen generator.Generator[T], eventManager *event.EventManager, logger *log.Logger) (*Engine[T], error) {
	if gen == nil {
		return nil, fmt.Errorf("generator not initialized")
	}
	if eventManager == nil {
		return nil, fmt.Errorf("eventManager not initialized")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}
	return &Engine[T]{
		gen:    gen,
		events: eventManager,
		logger: logger,
	}, nil
}

// Init builds the root node and prepares the tree for use. When the
// generator yields no root, a hidden empty root is synthesized (negative
// depth, expanded) so the tree is always well-formed afterwards. Calling
// Init on an engine that already has a root replaces the whole tree.
func (e *Engine[T]) Init(ctx context.Context) error {
	e.logger.Info(ctx, "Initializing tree", nil)

	data, err := e.gen.CreateRootNode(ctx)
	if err != nil {
		e.logger.Error(ctx, "Failed to create root node", log.Fields{"error": err})
		return generatorError("create root node", err)
	}

	store := NewStore[T]()
	root := &model.TreeNode[T]{
		ID:       store.AllocateID(),
		ChildIDs: make(map[int]struct{}),
		Expand:   true,
	}
	if data == nil {
		// Hidden anchor: excluded from flattened output, descendants shown.
		root.Depth = -1
		root.HasChild = true
	} else {
		root.Key = data.Key
		root.Value = data.Value
		root.Depth = 0
		root.HasChild = data.HasChild
	}
	root.ParentID = root.ID
	store.Put(root)

	e.store = store
	e.root = root

	e.events.Publish(event.Event{Type: event.TreeInitialized, Data: root.ID})
	e.logger.Info(ctx, "Tree initialized", log.Fields{"rootID": root.ID, "visibleRoot": root.Depth >= 0})
	return nil
}

// Root returns the current root node, or nil before Init.
func (e *Engine[T]) Root() *model.TreeNode[T] {
	return e.root
}

// Node returns the live node with the given id.
func (e *Engine[T]) Node(id int) (*model.TreeNode[T], error) {
	if e.root == nil {
		return nil, ErrTreeNotInitialized
	}
	return e.store.Get(id)
}

// Nodes returns the live nodes for the given ids, in input order.
func (e *Engine[T]) Nodes(ids []int) ([]*model.TreeNode[T], error) {
	if e.root == nil {
		return nil, ErrTreeNotInitialized
	}
	return e.store.GetMany(ids)
}

// Size returns the number of live nodes in the tree.
func (e *Engine[T]) Size() int {
	if e.store == nil {
		return 0
	}
	return e.store.Len()
}

// ChildNodes asks the generator what the node's children would be and
// returns the resulting id set without mutating the tree. Ids of children
// already present are reused; ids previewed for records not yet stored are
// throwaway and may differ between calls.
func (e *Engine[T]) ChildNodes(ctx context.Context, node *model.TreeNode[T]) (map[int]struct{}, error) {
	if e.root == nil {
		return nil, ErrTreeNotInitialized
	}
	n, err := e.store.Get(node.ID)
	if err != nil {
		return nil, err
	}

	children, err := e.gen.FetchChildren(ctx, n)
	if err != nil {
		e.logger.Error(ctx, "Failed to fetch children", log.Fields{"error": err, "nodeID": n.ID})
		return nil, generatorError("fetch children", err)
	}

	byKey := e.childrenByKey(n)
	ids := make(map[int]struct{}, len(children))
	for _, data := range children {
		if existing, ok := byKey[data.Key]; ok {
			ids[existing.ID] = struct{}{}
			continue
		}
		ids[e.store.AllocateID()] = struct{}{}
	}
	return ids, nil
}

// ChildNodesByID is ChildNodes for a node given by id.
func (e *Engine[T]) ChildNodesByID(ctx context.Context, id int) (map[int]struct{}, error) {
	if e.root == nil {
		return nil, ErrTreeNotInitialized
	}
	n, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	return e.ChildNodes(ctx, n)
}

// Refresh reloads the node's immediate children from the generator and
// commits the result: records whose key matches an existing child update
// that child in place (id, expand state and its own subtree survive),
// records with new keys become fresh collapsed nodes, and children no longer
// reported are removed together with their entire subtrees. Grandchildren of
// surviving children are untouched. The store is only mutated after the
// fetch has succeeded.
func (e *Engine[T]) Refresh(ctx context.Context, node *model.TreeNode[T]) (*model.TreeNode[T], error) {
	if e.root == nil {
		return nil, ErrTreeNotInitialized
	}
	n, err := e.store.Get(node.ID)
	if err != nil {
		return nil, err
	}
	e.logger.Debug(ctx, "Refreshing node", log.Fields{"nodeID": n.ID})

	children, err := e.gen.FetchChildren(ctx, n)
	if err != nil {
		e.logger.Error(ctx, "Failed to fetch children", log.Fields{"error": err, "nodeID": n.ID})
		return nil, generatorError("fetch children", err)
	}

	existing := e.childrenByKey(n)
	newSet := make(map[int]struct{}, len(children))
	seen := make(map[string]struct{}, len(children))
	for _, data := range children {
		if _, dup := seen[data.Key]; dup {
			e.logger.Warn(ctx, "Generator returned duplicate child key", log.Fields{"nodeID": n.ID, "key": data.Key})
			continue
		}
		seen[data.Key] = struct{}{}

		if child, ok := existing[data.Key]; ok {
			child.Value = data.Value
			child.HasChild = data.HasChild
			child.Depth = n.Depth + 1
			newSet[child.ID] = struct{}{}
			delete(existing, data.Key)
			continue
		}

		child := &model.TreeNode[T]{
			ID:       e.store.AllocateID(),
			Key:      data.Key,
			Value:    data.Value,
			Depth:    n.Depth + 1,
			ParentID: n.ID,
			ChildIDs: make(map[int]struct{}),
			HasChild: data.HasChild,
		}
		e.store.Put(child)
		newSet[child.ID] = struct{}{}
	}

	// Children not reported again lose their identity, subtrees included.
	for _, stale := range existing {
		e.removeSubtree(stale.ID)
		e.events.Publish(event.Event{Type: event.NodeRemoved, Data: stale.ID})
	}
	n.ChildIDs = newSet

	e.events.Publish(event.Event{Type: event.NodeRefreshed, Data: n.ID})
	e.logger.Debug(ctx, "Node refreshed", log.Fields{"nodeID": n.ID, "children": len(newSet)})
	return n, nil
}

// RefreshSubtree applies Refresh depth-first starting at the given node.
// With withExpandable set, recursion only descends into children whose
// Expand flag is on, bounding the work to the currently visible subtree;
// otherwise every child is reloaded. A per-call visited set keeps a
// misbehaving generator from driving the recursion in circles. A failure
// partway leaves the already-refreshed levels committed; each completed
// Refresh is individually consistent.
func (e *Engine[T]) RefreshSubtree(ctx context.Context, node *model.TreeNode[T], withExpandable bool) (*model.TreeNode[T], error) {
	if e.root == nil {
		return nil, ErrTreeNotInitialized
	}
	e.logger.Info(ctx, "Refreshing subtree", log.Fields{"nodeID": node.ID, "withExpandable": withExpandable})

	visited := make(map[int]struct{})
	n, err := e.refreshSubtree(ctx, node.ID, withExpandable, visited)
	if err != nil {
		return nil, err
	}

	e.events.Publish(event.Event{Type: event.SubtreeRefreshed, Data: n.ID})
	e.logger.Info(ctx, "Subtree refreshed", log.Fields{"nodeID": n.ID, "visited": len(visited)})
	return n, nil
}

func (e *Engine[T]) refreshSubtree(ctx context.Context, id int, withExpandable bool, visited map[int]struct{}) (*model.TreeNode[T], error) {
	if _, ok := visited[id]; ok {
		return e.store.Get(id)
	}
	visited[id] = struct{}{}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	n, err = e.Refresh(ctx, n)
	if err != nil {
		return nil, err
	}

	for _, childID := range n.SortedChildIDs() {
		child, err := e.store.Get(childID)
		if err != nil {
			return nil, err
		}
		if withExpandable && !child.Expand {
			continue
		}
		if _, err := e.refreshSubtree(ctx, childID, withExpandable, visited); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// SetExpanded flips the node's expand flag. This is the mutation point for
// the UI collaborator; the traversal itself never writes the flag.
func (e *Engine[T]) SetExpanded(id int, expand bool) (*model.TreeNode[T], error) {
	if e.root == nil {
		return nil, ErrTreeNotInitialized
	}
	n, err := e.store.Get(id)
	if err != nil {
		return nil, err
	}
	if n.Expand == expand {
		return n, nil
	}
	n.Expand = expand

	eventType := event.NodeExpanded
	if !expand {
		eventType = event.NodeCollapsed
	}
	e.events.Publish(event.Event{Type: eventType, Data: n.ID})
	return n, nil
}

// childrenByKey indexes the node's current children by their generator key.
func (e *Engine[T]) childrenByKey(n *model.TreeNode[T]) map[string]*model.TreeNode[T] {
	byKey := make(map[string]*model.TreeNode[T], len(n.ChildIDs))
	for id := range n.ChildIDs {
		if child, err := e.store.Get(id); err == nil {
			byKey[child.Key] = child
		}
	}
	return byKey
}

// removeSubtree deletes a node and, transitively, everything below it.
func (e *Engine[T]) removeSubtree(id int) {
	n, err := e.store.Get(id)
	if err != nil {
		return
	}
	for childID := range n.ChildIDs {
		e.removeSubtree(childID)
	}
	e.store.Remove(id)
}

func generatorError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrGenerator, err)
}
