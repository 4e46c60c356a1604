package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treescape/local-app/src/pkg/model"
)

func staticFixture() *StaticNode {
	return &StaticNode{
		Key:  "top",
		Item: model.Item{Name: "top"},
		Children: []StaticNode{
			{Key: "top/x", Item: model.Item{Name: "x"}, Children: []StaticNode{
				{Key: "top/x/1", Item: model.Item{Name: "x1"}},
			}},
			{Key: "top/y", Item: model.Item{Name: "y"}},
		},
	}
}

func TestStaticCreateRootNode(t *testing.T) {
	g := NewStaticGenerator(staticFixture())

	data, err := g.CreateRootNode(context.Background())
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, "top", data.Key)
	assert.Equal(t, "top", data.Value.Name)
	assert.True(t, data.HasChild)
}

func TestStaticForestHasNoRoot(t *testing.T) {
	g := NewStaticForest(staticFixture().Children)

	data, err := g.CreateRootNode(context.Background())
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStaticFetchChildren(t *testing.T) {
	g := NewStaticGenerator(staticFixture())

	children, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: "top"})
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "top/x", children[0].Key)
	assert.True(t, children[0].HasChild)
	assert.Equal(t, "top/y", children[1].Key)
	assert.False(t, children[1].HasChild)

	leaf, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: "top/y"})
	require.NoError(t, err)
	assert.Empty(t, leaf)

	assert.Equal(t, 1, g.Fetches["top"])
	assert.Equal(t, 1, g.Fetches["top/y"])
}

func TestStaticForestEmptyKeyAddressesTopLevel(t *testing.T) {
	g := NewStaticForest(staticFixture().Children)

	children, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: ""})
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "top/x", children[0].Key)

	nested, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: "top/x"})
	require.NoError(t, err)
	require.Len(t, nested, 1)
	assert.Equal(t, "top/x/1", nested[0].Key)
}

func TestStaticErrInjection(t *testing.T) {
	g := NewStaticGenerator(staticFixture())
	boom := errors.New("boom")
	g.Err = boom

	_, err := g.CreateRootNode(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: "top"})
	assert.ErrorIs(t, err, boom)
}

func TestStaticUnknownKey(t *testing.T) {
	g := NewStaticGenerator(staticFixture())

	children, err := g.FetchChildren(context.Background(), &model.TreeNode[model.Item]{Key: "nope"})
	require.NoError(t, err)
	assert.Empty(t, children)
}
