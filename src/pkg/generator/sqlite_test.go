package generator

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/storage"
)

func newSQLiteFixture(t *testing.T) (*SQLiteGenerator, *storage.Storage) {
	t.Helper()
	logger := newDiscardLogger(t)

	cfg := &model.Config{
		DatabaseType: "sqlite",
		DatabaseDir:  t.TempDir(),
		DatabaseFile: "test.db",
	}
	s, err := storage.NewStorage(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	g, err := NewSQLiteGenerator(s, logger)
	require.NoError(t, err)
	return g, s
}

func TestSQLiteSingleRootRow(t *testing.T) {
	g, s := newSQLiteFixture(t)
	ctx := context.Background()

	rootID, err := s.RowAdd(ctx, 0, "root", nil)
	require.NoError(t, err)
	childID, err := s.RowAdd(ctx, rootID, "child", map[string]string{"tag": "x"})
	require.NoError(t, err)

	data, err := g.CreateRootNode(ctx)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, strconv.Itoa(rootID), data.Key)
	assert.Equal(t, "root", data.Value.Name)
	assert.True(t, data.HasChild)

	children, err := g.FetchChildren(ctx, &model.TreeNode[model.Item]{Key: data.Key})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, strconv.Itoa(childID), children[0].Key)
	assert.Equal(t, "child", children[0].Value.Name)
	assert.Equal(t, "x", children[0].Value.Meta["tag"])
	assert.False(t, children[0].HasChild)
}

func TestSQLiteForestSynthesizesRoot(t *testing.T) {
	g, s := newSQLiteFixture(t)
	ctx := context.Background()

	_, err := s.RowAdd(ctx, 0, "one", nil)
	require.NoError(t, err)
	_, err = s.RowAdd(ctx, 0, "two", nil)
	require.NoError(t, err)

	data, err := g.CreateRootNode(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	// The empty key addresses the synthesized root's children.
	children, err := g.FetchChildren(ctx, &model.TreeNode[model.Item]{Key: ""})
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestSQLiteBadNodeKey(t *testing.T) {
	g, _ := newSQLiteFixture(t)

	_, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: "not-a-number"})
	assert.Error(t, err)
}
