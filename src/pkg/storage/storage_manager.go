package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
)

// Storage represents the main storage implementation.
type Storage struct {
	db     Database
	logger *log.Logger
	TreeStore
}

// NewStorage creates a new Storage instance and initializes the database.
func NewStorage(config *model.Config, logger *log.Logger) (*Storage, error) {
	dbDriver, err := validateDBDriver(config.DatabaseType)
	if err != nil {
		return nil, fmt.Errorf("invalid database driver '%s': %w", config.DatabaseType, err)
	}

	db, err := NewDatabase(dbDriver, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database instance: %w", err)
	}

	// Construct the full path for the database file
	dataSourceName := filepath.Join(config.DatabaseDir, config.DatabaseFile)

	// Open the database connection
	if err := db.Open(dataSourceName); err != nil {
		return nil, fmt.Errorf("failed to open database connection '%s': %s", dataSourceName, err)
	}

	storage := &Storage{
		db:     db,
		logger: logger,
	}

	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %s", err)
	}

	storage.TreeStore = NewTreeStorage(storage)
	return storage, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// GetDatabase returns the database instance
func (s *Storage) GetDatabase() Database {
	return s.db
}

// Seed inserts a sample tree when the database is empty, so a fresh install
// has something to browse. Returns the number of rows inserted.
func (s *Storage) Seed(ctx context.Context) (int, error) {
	count, err := s.RowCount(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	s.logger.Info(ctx, "Seeding empty database with sample tree", nil)

	rootID, err := s.RowAdd(ctx, 0, "library", map[string]string{"kind": "root"})
	if err != nil {
		return 0, err
	}
	inserted := 1
	for _, shelf := range []string{"fiction", "reference"} {
		shelfID, err := s.RowAdd(ctx, rootID, shelf, map[string]string{"kind": "shelf"})
		if err != nil {
			return inserted, err
		}
		inserted++
		for _, book := range []string{"first", "second"} {
			if _, err := s.RowAdd(ctx, shelfID, shelf+"-"+book, map[string]string{"kind": "book"}); err != nil {
				return inserted, err
			}
			inserted++
		}
	}
	return inserted, nil
}
