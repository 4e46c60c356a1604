package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"treescape/local-app/src/pkg/log"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteDSNOptions are appended to every connection string. WAL keeps the
// logviewer and a running treescape from blocking each other on the same
// database file; the busy timeout covers the WAL checkpoint window.
const sqliteDSNOptions = "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"

// sqlitePragmas are applied once per connection, in order.
var sqlitePragmas = []string{
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = 5000",
}

// sqliteSchema holds the tree_rows table: one row per tree node, parent_id 0
// marking a top-level row. The parent index backs ChildRows, the hot query of
// the lazy-population path.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS tree_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		meta TEXT NOT NULL DEFAULT '{}',
		created TIMESTAMP NOT NULL,
		updated TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tree_rows_parent ON tree_rows(parent_id);
`

// SQLiteDatabase implements the Database interface for SQLite
type SQLiteDatabase struct {
	BaseDatabase
}

// Open opens the SQLite database file, creating its directory when needed,
// and applies the connection pragmas.
func (s *SQLiteDatabase) Open(dataSourceName string) error {
	s.logger.Info(context.Background(), "Opening SQLite database", log.Fields{"dbPath": filepath.Base(dataSourceName)})

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		s.logger.Error(context.Background(), "Failed to create database directory", log.Fields{"error": err, "directory": dbDir})
		return fmt.Errorf("failed to create database directory '%s': %w", dbDir, err)
	}

	db, err := sql.Open("sqlite3", dataSourceName+sqliteDSNOptions)
	if err != nil {
		s.logger.Error(context.Background(), "Failed to open SQLite database", log.Fields{"error": err})
		return fmt.Errorf("failed to open SQLite database: %v", err)
	}

	for _, pragma := range sqlitePragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			s.logger.Error(context.Background(), "Failed to apply SQLite pragma", log.Fields{"error": err, "pragma": pragma})
			return fmt.Errorf("failed to apply SQLite pragma '%s': %w", pragma, err)
		}
	}

	// Verify the connection
	if err := db.Ping(); err != nil {
		db.Close()
		s.logger.Error(context.Background(), "Failed to verify database connection", log.Fields{"error": err})
		return fmt.Errorf("failed to verify database connection: %v", err)
	}

	s.db = db
	s.logger.Info(context.Background(), "SQLite database opened successfully", nil)
	return nil
}

// InitSchema creates the tree_rows table and its index if they do not exist.
func (s *SQLiteDatabase) InitSchema() error {
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		s.logger.Error(context.Background(), "Failed to initialize schema", log.Fields{"error": err})
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the connection to the SQLite database
func (s *SQLiteDatabase) Close() error {
	s.logger.Info(context.Background(), "Closing SQLite database", nil)
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error(context.Background(), "Failed to close SQLite database", log.Fields{"error": err})
			return fmt.Errorf("failed to close SQLite database: %w", err)
		}
	}
	return nil
}
