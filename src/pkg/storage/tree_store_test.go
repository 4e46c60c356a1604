package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	logger := log.NewDiscard()
	t.Cleanup(func() { logger.Close() })

	cfg := &model.Config{
		DatabaseType: "sqlite",
		DatabaseDir:  t.TempDir(),
		DatabaseFile: "test.db",
	}
	s, err := NewStorage(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRowAddAndChildRows(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rootID, err := s.RowAdd(ctx, 0, "root", map[string]string{"kind": "root"})
	require.NoError(t, err)
	require.Positive(t, rootID)

	aID, err := s.RowAdd(ctx, rootID, "a", nil)
	require.NoError(t, err)
	bID, err := s.RowAdd(ctx, rootID, "b", map[string]string{"tag": "x"})
	require.NoError(t, err)

	children, err := s.ChildRows(ctx, rootID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, aID, children[0].ID)
	assert.Equal(t, "a", children[0].Name)
	assert.False(t, children[0].HasChild)
	assert.Nil(t, children[0].Meta)
	assert.Equal(t, bID, children[1].ID)
	assert.Equal(t, "x", children[1].Meta["tag"])
}

func TestRootRow(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// Empty table: no root.
	root, err := s.RootRow(ctx)
	require.NoError(t, err)
	assert.Nil(t, root)

	rootID, err := s.RowAdd(ctx, 0, "root", nil)
	require.NoError(t, err)
	_, err = s.RowAdd(ctx, rootID, "child", nil)
	require.NoError(t, err)

	root, err = s.RootRow(ctx)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, rootID, root.ID)
	assert.True(t, root.HasChild)

	// A second top-level row demotes the single root to a forest.
	_, err = s.RowAdd(ctx, 0, "other", nil)
	require.NoError(t, err)
	root, err = s.RootRow(ctx)
	require.NoError(t, err)
	assert.Nil(t, root)
}

func TestRowDeleteRemovesSubtree(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	rootID, err := s.RowAdd(ctx, 0, "root", nil)
	require.NoError(t, err)
	aID, err := s.RowAdd(ctx, rootID, "a", nil)
	require.NoError(t, err)
	_, err = s.RowAdd(ctx, aID, "a1", nil)
	require.NoError(t, err)
	_, err = s.RowAdd(ctx, rootID, "b", nil)
	require.NoError(t, err)

	require.NoError(t, s.RowDelete(ctx, aID))

	count, err := s.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	children, err := s.ChildRows(ctx, rootID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "b", children[0].Name)
}

func TestReopenExistingDatabase(t *testing.T) {
	logger := log.NewDiscard()
	t.Cleanup(func() { logger.Close() })

	cfg := &model.Config{
		DatabaseType: "sqlite",
		DatabaseDir:  t.TempDir(),
		DatabaseFile: "test.db",
	}
	ctx := context.Background()

	s1, err := NewStorage(cfg, logger)
	require.NoError(t, err)
	_, err = s1.RowAdd(ctx, 0, "root", nil)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Reopening runs schema setup again; it must not disturb existing data.
	s2, err := NewStorage(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s2.Close() })

	count, err := s2.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var mode string
	require.NoError(t, s2.GetDatabase().QueryRow(ctx, "PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestSeed(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	inserted, err := s.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, inserted)

	root, err := s.RootRow(ctx)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "library", root.Name)

	// Seeding a populated database is a no-op.
	inserted, err = s.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
