package generator

import (
	"context"

	"treescape/local-app/src/pkg/model"
)

// StaticNode describes one node of an in-memory tree definition. Keys must
// be unique across the whole definition.
type StaticNode struct {
	Key      string
	Item     model.Item
	Children []StaticNode
}

// StaticGenerator serves a fixed in-memory tree definition. It backs the
// demo source and the test suites. The definition is mutable between calls:
// edits through Root or Forest are picked up by the next fetch, and Err (when
// set) fails every call, which is how tests stage generator-side changes and
// failures.
type StaticGenerator struct {
	// Root is the visible root definition, or nil for a forest.
	Root *StaticNode
	// Forest holds the top-level definitions when Root is nil; the engine
	// synthesizes a hidden root above them.
	Forest []StaticNode
	// Err, when non-nil, is returned by every call.
	Err error
	// Fetches counts FetchChildren calls per node key.
	Fetches map[string]int
}

// NewStaticGenerator creates a generator serving a tree with a visible root.
func NewStaticGenerator(root *StaticNode) *StaticGenerator {
	return &StaticGenerator{Root: root, Fetches: make(map[string]int)}
}

// NewStaticForest creates a generator serving top-level nodes under a
// synthesized hidden root.
func NewStaticForest(forest []StaticNode) *StaticGenerator {
	return &StaticGenerator{Forest: forest, Fetches: make(map[string]int)}
}

// CreateRootNode implements Generator.
func (g *StaticGenerator) CreateRootNode(ctx context.Context) (*NodeData[model.Item], error) {
	if g.Err != nil {
		return nil, g.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.Root == nil {
		return nil, nil
	}
	return &NodeData[model.Item]{
		Key:      g.Root.Key,
		Value:    g.Root.Item,
		HasChild: len(g.Root.Children) > 0,
	}, nil
}

// FetchChildren implements Generator.
func (g *StaticGenerator) FetchChildren(ctx context.Context, node *model.TreeNode[model.Item]) ([]NodeData[model.Item], error) {
	if g.Err != nil {
		return nil, g.Err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.Fetches[node.Key]++

	children := g.childrenOf(node.Key)
	if len(children) == 0 {
		return nil, nil
	}
	out := make([]NodeData[model.Item], 0, len(children))
	for _, child := range children {
		out = append(out, NodeData[model.Item]{
			Key:      child.Key,
			Value:    child.Item,
			HasChild: len(child.Children) > 0,
		})
	}
	return out, nil
}

// childrenOf resolves the definition children for a node key. The empty key
// addresses the synthesized root of a forest.
func (g *StaticGenerator) childrenOf(key string) []StaticNode {
	if g.Root == nil {
		if key == "" {
			return g.Forest
		}
		for i := range g.Forest {
			if found := findStatic(&g.Forest[i], key); found != nil {
				return found.Children
			}
		}
		return nil
	}
	if found := findStatic(g.Root, key); found != nil {
		return found.Children
	}
	return nil
}

func findStatic(n *StaticNode, key string) *StaticNode {
	if n.Key == key {
		return n
	}
	for i := range n.Children {
		if found := findStatic(&n.Children[i], key); found != nil {
			return found
		}
	}
	return nil
}
