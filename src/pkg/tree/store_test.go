package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treescape/local-app/src/pkg/model"
)

func TestStoreAllocateIDNeverReusesLiveID(t *testing.T) {
	s := NewStore[model.Item]()

	first := s.AllocateID()
	second := s.AllocateID()
	assert.NotEqual(t, first, second)

	// Putting a node with a higher id must push the allocator past it.
	s.Put(&model.TreeNode[model.Item]{ID: 100})
	assert.Greater(t, s.AllocateID(), 100)
}

func TestStorePutAndGet(t *testing.T) {
	s := NewStore[model.Item]()
	n := &model.TreeNode[model.Item]{ID: s.AllocateID(), Value: model.Item{Name: "n"}}
	s.Put(n)

	got, err := s.Get(n.ID)
	require.NoError(t, err)
	assert.Same(t, n, got)

	// Overwrite at the same id.
	repl := &model.TreeNode[model.Item]{ID: n.ID, Value: model.Item{Name: "replacement"}}
	s.Put(repl)
	got, err = s.Get(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "replacement", got.Value.Name)
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore[model.Item]()
	_, err := s.Get(42)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestStoreGetManyFollowsInputOrder(t *testing.T) {
	s := NewStore[model.Item]()
	var ids []int
	for _, name := range []string{"a", "b", "c"} {
		n := &model.TreeNode[model.Item]{ID: s.AllocateID(), Value: model.Item{Name: name}}
		s.Put(n)
		ids = append(ids, n.ID)
	}

	nodes, err := s.GetMany([]int{ids[2], ids[0], ids[1]})
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "c", nodes[0].Value.Name)
	assert.Equal(t, "a", nodes[1].Value.Name)
	assert.Equal(t, "b", nodes[2].Value.Name)
}

func TestStoreGetManyFailsFast(t *testing.T) {
	s := NewStore[model.Item]()
	n := &model.TreeNode[model.Item]{ID: s.AllocateID()}
	s.Put(n)

	nodes, err := s.GetMany([]int{n.ID, 999})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Nil(t, nodes)
}

func TestStoreRemove(t *testing.T) {
	s := NewStore[model.Item]()
	n := &model.TreeNode[model.Item]{ID: s.AllocateID()}
	s.Put(n)
	require.True(t, s.Has(n.ID))

	s.Remove(n.ID)
	assert.False(t, s.Has(n.ID))
	assert.Equal(t, 0, s.Len())
}
