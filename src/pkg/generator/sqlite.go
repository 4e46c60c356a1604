package generator

import (
	"context"
	"fmt"
	"strconv"

	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/storage"
)

// SQLiteGenerator serves a tree persisted in the tree_rows table. Node keys
// are decimal row ids; the empty key addresses the synthesized root when the
// stored top level holds zero or several rows.
type SQLiteGenerator struct {
	store  storage.TreeStore
	logger *log.Logger
}

// NewSQLiteGenerator creates a generator reading rows through the given store.
func NewSQLiteGenerator(store storage.TreeStore, logger *log.Logger) (*SQLiteGenerator, error) {
	if store == nil {
		return nil, fmt.Errorf("treeStore not initialized")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}
	return &SQLiteGenerator{store: store, logger: logger}, nil
}

// CreateRootNode implements Generator.
func (g *SQLiteGenerator) CreateRootNode(ctx context.Context) (*NodeData[model.Item], error) {
	row, err := g.store.RootRow(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		// Zero or several top-level rows: ask for a synthesized root.
		return nil, nil
	}
	data := rowToData(*row)
	return &data, nil
}

// FetchChildren implements Generator.
func (g *SQLiteGenerator) FetchChildren(ctx context.Context, node *model.TreeNode[model.Item]) ([]NodeData[model.Item], error) {
	parentID := 0
	if node.Key != "" {
		id, err := strconv.Atoi(node.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid node key '%s': %w", node.Key, err)
		}
		parentID = id
	}

	rows, err := g.store.ChildRows(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]NodeData[model.Item], 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToData(row))
	}
	g.logger.Debug(ctx, "Fetched child rows", log.Fields{"parentID": parentID, "count": len(out)})
	return out, nil
}

func rowToData(row storage.Row) NodeData[model.Item] {
	return NodeData[model.Item]{
		Key:      strconv.Itoa(row.ID),
		Value:    model.Item{Name: row.Name, Meta: row.Meta},
		HasChild: row.HasChild,
	}
}
