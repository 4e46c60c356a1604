package session

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/tree"
)

// ExportTree is the serialized form of a tree, written by FileExport. The top
// level holds the visible roots: one node for a tree with a visible root,
// several for a forest under a hidden root.
type ExportTree struct {
	XMLName xml.Name     `json:"-" xml:"tree"`
	Nodes   []ExportNode `json:"tree" xml:"node"`
}

// ExportNode is one serialized node with its subtree nested inside it.
type ExportNode struct {
	Name     string       `json:"name" xml:"name,attr"`
	Key      string       `json:"key" xml:"key,attr"`
	Path     string       `json:"path,omitempty" xml:"path,attr,omitempty"`
	Meta     []MetaEntry  `json:"meta,omitempty" xml:"meta>entry"`
	Children []ExportNode `json:"children,omitempty" xml:"children>node"`
}

// MetaEntry is one payload metadata pair, kept as a list so the XML encoding
// stays regular.
type MetaEntry struct {
	Name  string `json:"name" xml:"name,attr"`
	Value string `json:"value" xml:"value,attr"`
}

// FileExport serializes the engine's current tree to a file in the specified
// format (JSON or XML). Every loaded node is written, regardless of expand
// state; children not yet fetched are not in the file.
func FileExport(e *tree.Engine[model.Item], filename string, format string) error {
	export, err := exportTree(e)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(export, "", "  ")
	case "xml":
		data, err = xml.MarshalIndent(export, "", "  ")
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// exportTree converts the live tree into its serialized form. A hidden root
// is not written; its children become the top level.
func exportTree(e *tree.Engine[model.Item]) (*ExportTree, error) {
	root := e.Root()
	if root == nil {
		return nil, tree.ErrTreeNotInitialized
	}

	if root.Depth >= 0 {
		node, err := exportNode(e, root)
		if err != nil {
			return nil, err
		}
		return &ExportTree{Nodes: []ExportNode{node}}, nil
	}

	out := &ExportTree{}
	for _, id := range root.SortedChildIDs() {
		child, err := e.Node(id)
		if err != nil {
			return nil, err
		}
		node, err := exportNode(e, child)
		if err != nil {
			return nil, err
		}
		out.Nodes = append(out.Nodes, node)
	}
	return out, nil
}

func exportNode(e *tree.Engine[model.Item], n *model.TreeNode[model.Item]) (ExportNode, error) {
	out := ExportNode{
		Name: n.Value.Name,
		Key:  n.Key,
		Path: n.Value.Path,
		Meta: metaEntries(n.Value.Meta),
	}
	for _, id := range n.SortedChildIDs() {
		child, err := e.Node(id)
		if err != nil {
			return ExportNode{}, err
		}
		childOut, err := exportNode(e, child)
		if err != nil {
			return ExportNode{}, err
		}
		out.Children = append(out.Children, childOut)
	}
	return out, nil
}

// metaEntries flattens a metadata map into a name-sorted list so the output
// is deterministic.
func metaEntries(meta map[string]string) []MetaEntry {
	if len(meta) == 0 {
		return nil
	}
	names := make([]string, 0, len(meta))
	for name := range meta {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]MetaEntry, 0, len(names))
	for _, name := range names {
		out = append(out, MetaEntry{Name: name, Value: meta[name]})
	}
	return out
}
