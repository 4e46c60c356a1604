// Package storage provides functionality for persisting and retrieving the
// tree data Treescape serves through its SQLite-backed node generator.
// This file handles the driver-independent SQL database interfaces; the
// schema and connection policy live with the concrete driver.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"treescape/local-app/src/pkg/log"
)

// DBDriver represents the type of database driver
type DBDriver string

const (
	SQLite DBDriver = "sqlite"
	// PostgreSQL DBDriver = "postgres" // Uncomment when adding PostgreSQL support
)

// Database interface defines common database operations
type Database interface {
	Open(dataSourceName string) error
	Close() error
	Begin() error
	Commit() error
	Rollback() error
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row
	InitSchema() error
}

// NewDatabase creates a new Database instance based on the specified driver
func NewDatabase(driver DBDriver, logger *log.Logger) (Database, error) {
	switch driver {
	case SQLite:
		return &SQLiteDatabase{BaseDatabase: BaseDatabase{logger: logger}}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// validateDBDriver checks that the configured driver name is supported.
func validateDBDriver(name string) (DBDriver, error) {
	switch DBDriver(name) {
	case SQLite:
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", name)
	}
}

// BaseDatabase provides a base implementation of some Database methods
type BaseDatabase struct {
	db     *sql.DB
	tx     *sql.Tx
	logger *log.Logger
}

// Begin starts a new transaction
func (b *BaseDatabase) Begin() error {
	tx, err := b.db.Begin()
	if err != nil {
		b.logger.Error(context.Background(), "Failed to begin transaction", log.Fields{"error": err})
		return err
	}
	b.tx = tx
	return nil
}

// Commit commits the current transaction
func (b *BaseDatabase) Commit() error {
	if b.tx == nil {
		return fmt.Errorf("no active transaction")
	}
	if err := b.tx.Commit(); err != nil {
		b.logger.Error(context.Background(), "Failed to commit transaction", log.Fields{"error": err})
		return err
	}
	b.tx = nil
	return nil
}

// Rollback rolls back the current transaction. Rolling back with no active
// transaction is a no-op so it can be deferred unconditionally.
func (b *BaseDatabase) Rollback() error {
	if b.tx == nil {
		return nil
	}
	if err := b.tx.Rollback(); err != nil {
		b.logger.Error(context.Background(), "Failed to rollback transaction", log.Fields{"error": err})
		return err
	}
	b.tx = nil
	return nil
}

// Exec executes a query without returning any rows, inside the active
// transaction when one is open.
func (b *BaseDatabase) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if b.tx != nil {
		return b.tx.ExecContext(ctx, query, args...)
	}
	return b.db.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows.
func (b *BaseDatabase) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if b.tx != nil {
		return b.tx.QueryContext(ctx, query, args...)
	}
	return b.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row.
func (b *BaseDatabase) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if b.tx != nil {
		return b.tx.QueryRowContext(ctx, query, args...)
	}
	return b.db.QueryRowContext(ctx, query, args...)
}
