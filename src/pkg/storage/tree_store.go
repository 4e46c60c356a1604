package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"treescape/local-app/src/pkg/log"
)

// Row is one persisted tree record. ParentID 0 marks a top-level row.
type Row struct {
	ID       int
	ParentID int
	Name     string
	Meta     map[string]string
	HasChild bool
}

// TreeStore defines the interface for tree row storage operations.
type TreeStore interface {
	RootRow(ctx context.Context) (*Row, error)
	ChildRows(ctx context.Context, parentID int) ([]Row, error)
	RowAdd(ctx context.Context, parentID int, name string, meta map[string]string) (int, error)
	RowDelete(ctx context.Context, id int) error
	RowCount(ctx context.Context) (int, error)
}

// TreeStorage implements the TreeStore interface.
type TreeStorage struct {
	storage *Storage
	logger  *log.Logger
}

// NewTreeStorage creates a new TreeStorage instance.
func NewTreeStorage(storage *Storage) *TreeStorage {
	return &TreeStorage{
		storage: storage,
		logger:  storage.logger,
	}
}

const rowSelect = `
	SELECT id, parent_id, name, meta,
		EXISTS(SELECT 1 FROM tree_rows c WHERE c.parent_id = tree_rows.id) AS has_child
	FROM tree_rows`

// RootRow returns the single top-level row when the stored tree has exactly
// one, or nil when the top level holds zero or several rows (the generator
// then synthesizes a hidden root above them).
func (s *TreeStorage) RootRow(ctx context.Context) (*Row, error) {
	db := s.storage.GetDatabase()

	rows, err := s.scanRows(db.Query(ctx, rowSelect+" WHERE parent_id = 0 ORDER BY id"))
	if err != nil {
		s.logger.Error(ctx, "Failed to query root row", log.Fields{"error": err})
		return nil, fmt.Errorf("failed to query root row: %w", err)
	}
	if len(rows) != 1 {
		s.logger.Debug(ctx, "No single root row", log.Fields{"topLevelRows": len(rows)})
		return nil, nil
	}
	return &rows[0], nil
}

// ChildRows returns the rows whose parent_id is the given id, in id order.
func (s *TreeStorage) ChildRows(ctx context.Context, parentID int) ([]Row, error) {
	db := s.storage.GetDatabase()

	rows, err := s.scanRows(db.Query(ctx, rowSelect+" WHERE parent_id = ? ORDER BY id", parentID))
	if err != nil {
		s.logger.Error(ctx, "Failed to query child rows", log.Fields{"error": err, "parentID": parentID})
		return nil, fmt.Errorf("failed to query child rows: %w", err)
	}
	return rows, nil
}

// RowAdd inserts a new row under the given parent and returns its id.
func (s *TreeStorage) RowAdd(ctx context.Context, parentID int, name string, meta map[string]string) (int, error) {
	s.logger.Info(ctx, "Adding tree row", log.Fields{"parentID": parentID, "name": name})

	db := s.storage.GetDatabase()
	now := time.Now()

	metaJSON, err := encodeMeta(meta)
	if err != nil {
		return 0, fmt.Errorf("failed to encode row meta: %w", err)
	}

	if err := db.Begin(); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer db.Rollback()

	result, err := db.Exec(ctx,
		"INSERT INTO tree_rows (parent_id, name, meta, created, updated) VALUES (?, ?, ?, ?, ?)",
		parentID, name, metaJSON, now, now)
	if err != nil {
		s.logger.Error(ctx, "Failed to add tree row", log.Fields{"error": err, "parentID": parentID})
		return 0, fmt.Errorf("failed to add tree row: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	if parentID != 0 {
		if _, err := db.Exec(ctx, "UPDATE tree_rows SET updated = ? WHERE id = ?", now, parentID); err != nil {
			s.logger.Error(ctx, "Failed to touch parent row", log.Fields{"error": err, "parentID": parentID})
			return 0, fmt.Errorf("failed to touch parent row: %w", err)
		}
	}

	if err := db.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info(ctx, "Tree row added", log.Fields{"rowID": id, "parentID": parentID})
	return int(id), nil
}

// RowDelete removes a row and, transitively, every row below it.
func (s *TreeStorage) RowDelete(ctx context.Context, id int) error {
	s.logger.Info(ctx, "Deleting tree row", log.Fields{"rowID": id})

	db := s.storage.GetDatabase()
	query := `
		WITH RECURSIVE subtree(i) AS (
			SELECT ?
			UNION ALL
			SELECT t.id FROM tree_rows t JOIN subtree ON t.parent_id = subtree.i
		)
		DELETE FROM tree_rows WHERE id IN (SELECT i FROM subtree)`
	if _, err := db.Exec(ctx, query, id); err != nil {
		s.logger.Error(ctx, "Failed to delete tree row", log.Fields{"error": err, "rowID": id})
		return fmt.Errorf("failed to delete tree row: %w", err)
	}

	s.logger.Info(ctx, "Tree row deleted", log.Fields{"rowID": id})
	return nil
}

// RowCount returns the total number of stored rows.
func (s *TreeStorage) RowCount(ctx context.Context) (int, error) {
	db := s.storage.GetDatabase()
	var count int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM tree_rows").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tree rows: %w", err)
	}
	return count, nil
}

// scanRows scans a row query result into memory.
func (s *TreeStorage) scanRows(rows *sql.Rows, queryErr error) ([]Row, error) {
	if queryErr != nil {
		return nil, queryErr
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var metaJSON string
		if err := rows.Scan(&r.ID, &r.ParentID, &r.Name, &metaJSON, &r.HasChild); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		meta, err := decodeMeta(metaJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode meta of row %d: %w", r.ID, err)
		}
		r.Meta = meta
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

func encodeMeta(meta map[string]string) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMeta(raw string) (map[string]string, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
