package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treescape/local-app/src/pkg/event"
	"treescape/local-app/src/pkg/model"
)

func newFSFixture(t *testing.T) (*FSGenerator, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "nested.txt"), []byte("deep"), 0o644))

	logger := newDiscardLogger(t)
	g, err := NewFSGenerator(dir, nil, logger)
	require.NoError(t, err)
	return g, dir
}

func TestFSRejectsBadRoot(t *testing.T) {
	logger := newDiscardLogger(t)

	_, err := NewFSGenerator(filepath.Join(t.TempDir(), "missing"), nil, logger)
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = NewFSGenerator(file, nil, logger)
	assert.Error(t, err)
}

func TestFSCreateRootNode(t *testing.T) {
	g, dir := newFSFixture(t)

	data, err := g.CreateRootNode(context.Background())
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, dir, data.Key)
	assert.Equal(t, filepath.Base(dir), data.Value.Name)
	assert.True(t, data.HasChild)
}

func TestFSFetchChildren(t *testing.T) {
	g, dir := newFSFixture(t)

	children, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: dir})
	require.NoError(t, err)
	require.Len(t, children, 2)

	byName := make(map[string]NodeData[model.Item], len(children))
	for _, c := range children {
		byName[c.Value.Name] = c
	}

	sub, ok := byName["sub"]
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "sub"), sub.Key)
	assert.True(t, sub.HasChild)
	assert.Equal(t, "true", sub.Value.Meta["dir"])

	file, ok := byName["file.txt"]
	require.True(t, ok)
	assert.False(t, file.HasChild)
	assert.Equal(t, "false", file.Value.Meta["dir"])
	assert.Equal(t, "5", file.Value.Meta["size"])
}

func TestFSFileHasNoChildren(t *testing.T) {
	g, dir := newFSFixture(t)

	children, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: filepath.Join(dir, "file.txt")})
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestFSFetchChildrenMissingPath(t *testing.T) {
	g, dir := newFSFixture(t)

	_, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: filepath.Join(dir, "gone")})
	assert.Error(t, err)
}

func TestFSWatchWithoutEventsFails(t *testing.T) {
	g, _ := newFSFixture(t)
	assert.Error(t, g.Watch())
	assert.NoError(t, g.Close())
}

func TestFSWatchGrowsWithListing(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file.txt"), []byte("x"), 0o644))

	logger := newDiscardLogger(t)
	g, err := NewFSGenerator(dir, event.NewEventManager(logger), logger)
	require.NoError(t, err)
	require.NoError(t, g.Watch())
	t.Cleanup(func() { g.Close() })

	// Listing a directory pulls its subdirectories into the watch set;
	// plain files stay out.
	_, err = g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: dir})
	require.NoError(t, err)

	watched := g.watcher.WatchList()
	assert.Contains(t, watched, dir)
	assert.Contains(t, watched, sub)
	assert.NotContains(t, watched, filepath.Join(dir, "file.txt"))
}
