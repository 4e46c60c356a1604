package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treescape/local-app/src/pkg/generator"
	"treescape/local-app/src/pkg/model"
)

func listKeys(nodes []*model.TreeNode[model.Item]) []string {
	keys := make([]string, 0, len(nodes))
	for _, n := range nodes {
		keys = append(keys, n.Key)
	}
	return keys
}

func TestSortedListPreOrder(t *testing.T) {
	e := newTestEngine(t, generator.NewStaticGenerator(sampleTree()))
	loadAll(t, e)
	expandAll(e)

	list, err := e.SortedList(DefaultVisitOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "a", "a/1", "a/2", "b", "b/1", "b/2"}, listKeys(list))
}

func TestSortedListCollapseHidesDescendantsOnly(t *testing.T) {
	e := newTestEngine(t, generator.NewStaticGenerator(sampleTree()))
	loadAll(t, e)
	expandAll(e)

	a := nodeByKey(t, e, "a")
	_, err := e.SetExpanded(a.ID, false)
	require.NoError(t, err)

	list, err := e.SortedList(DefaultVisitOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "a", "b", "b/1", "b/2"}, listKeys(list))
}

func TestSortedListIgnoresExpandWhenAsked(t *testing.T) {
	e := newTestEngine(t, generator.NewStaticGenerator(sampleTree()))
	loadAll(t, e)
	// Everything collapsed except the root.

	list, err := e.SortedList(VisitOptions{WithExpandable: false, FastVisit: true})
	require.NoError(t, err)
	assert.Len(t, list, 7)
}

func TestSortedListExcludesHiddenRoot(t *testing.T) {
	e := newTestEngine(t, generator.NewStaticForest(sampleTree().Children))
	loadAll(t, e)
	expandAll(e)

	list, err := e.SortedList(DefaultVisitOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/1", "a/2", "b", "b/1", "b/2"}, listKeys(list))
	for _, n := range list {
		assert.GreaterOrEqual(t, n.Depth, 0)
	}
}

func TestSortedListFastAndPreciseAgree(t *testing.T) {
	e := newTestEngine(t, generator.NewStaticGenerator(sampleTree()))
	loadAll(t, e)
	expandAll(e)

	for _, withExpandable := range []bool{true, false} {
		fast, err := e.SortedList(VisitOptions{WithExpandable: withExpandable, FastVisit: true})
		require.NoError(t, err)
		precise, err := e.SortedList(VisitOptions{WithExpandable: withExpandable, FastVisit: false})
		require.NoError(t, err)
		assert.Equal(t, listKeys(fast), listKeys(precise))
	}
}

func TestSortedListMissingChild(t *testing.T) {
	e := newTestEngine(t, generator.NewStaticGenerator(sampleTree()))
	loadAll(t, e)
	expandAll(e)

	// Corrupt the store: drop a node without detaching it from its parent.
	a1 := nodeByKey(t, e, "a/1")
	e.store.Remove(a1.ID)

	fast, err := e.SortedList(VisitOptions{WithExpandable: true, FastVisit: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "a", "a/2", "b", "b/1", "b/2"}, listKeys(fast))

	_, err = e.SortedList(VisitOptions{WithExpandable: true, FastVisit: false})
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSortedListParentMismatch(t *testing.T) {
	e := newTestEngine(t, generator.NewStaticGenerator(sampleTree()))
	loadAll(t, e)
	expandAll(e)

	a1 := nodeByKey(t, e, "a/1")
	a1.ParentID = nodeByKey(t, e, "b").ID

	_, err := e.SortedList(VisitOptions{WithExpandable: true, FastVisit: false})
	assert.ErrorIs(t, err, ErrInconsistentTree)
}

func TestSortedListCycleDetected(t *testing.T) {
	e := newTestEngine(t, generator.NewStaticGenerator(sampleTree()))
	loadAll(t, e)
	expandAll(e)

	// The root references itself; its back-reference already matches, so
	// only the revisit check can catch this.
	root := e.Root()
	root.ChildIDs[root.ID] = struct{}{}

	_, err := e.SortedList(VisitOptions{WithExpandable: true, FastVisit: false})
	assert.ErrorIs(t, err, ErrCycleDetected)
}
