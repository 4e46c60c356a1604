package session

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treescape/local-app/src/pkg/event"
	"treescape/local-app/src/pkg/generator"
	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/tree"
)

func TestTreeExportJSON(t *testing.T) {
	sm, sid := newTestManager(t)
	run(t, sm, sid, "tree", "init")
	run(t, sm, sid, "tree", "reload", "all")

	path := filepath.Join(t.TempDir(), "out", "tree.json")
	result := run(t, sm, sid, "tree", "export", path)
	assert.Equal(t, fmt.Sprintf("tree exported to %s (json)", path), result)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var export ExportTree
	require.NoError(t, json.Unmarshal(data, &export))

	require.Len(t, export.Nodes, 1)
	root := export.Nodes[0]
	assert.Equal(t, "root", root.Name)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "docs", root.Children[0].Name)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "readme", root.Children[0].Children[0].Name)
	assert.Equal(t, "src", root.Children[1].Name)
}

func TestTreeExportXML(t *testing.T) {
	sm, sid := newTestManager(t)
	run(t, sm, sid, "tree", "init")
	run(t, sm, sid, "tree", "reload", "all")

	path := filepath.Join(t.TempDir(), "tree.xml")
	run(t, sm, sid, "tree", "export", path, "xml")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var export ExportTree
	require.NoError(t, xml.Unmarshal(data, &export))

	require.Len(t, export.Nodes, 1)
	assert.Equal(t, "root", export.Nodes[0].Name)
	assert.Len(t, export.Nodes[0].Children, 2)
}

func TestTreeExportWritesLoadedNodesOnly(t *testing.T) {
	sm, sid := newTestManager(t)
	// Only the first level is loaded after init; docs/readme is not.
	run(t, sm, sid, "tree", "init")

	path := filepath.Join(t.TempDir(), "tree.json")
	run(t, sm, sid, "tree", "export", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var export ExportTree
	require.NoError(t, json.Unmarshal(data, &export))

	require.Len(t, export.Nodes, 1)
	require.Len(t, export.Nodes[0].Children, 2)
	assert.Empty(t, export.Nodes[0].Children[0].Children)
}

func TestTreeExportBeforeInit(t *testing.T) {
	sm, sid := newTestManager(t)

	path := filepath.Join(t.TempDir(), "tree.json")
	_, err := sm.SessionRun(sid, model.Command{Scope: "tree", Operation: "export", Args: []string{path}})
	assert.ErrorIs(t, err, tree.ErrTreeNotInitialized)
}

func TestTreeExportValidation(t *testing.T) {
	sm, sid := newTestManager(t)
	run(t, sm, sid, "tree", "init")

	_, err := sm.SessionRun(sid, model.Command{Scope: "tree", Operation: "export"})
	assert.Error(t, err)
	_, err = sm.SessionRun(sid, model.Command{Scope: "tree", Operation: "export", Args: []string{"f", "yaml"}})
	assert.Error(t, err)
}

func TestExportTreeForest(t *testing.T) {
	logger := log.NewDiscard()
	t.Cleanup(func() { logger.Close() })

	engine, err := tree.NewEngine[model.Item](
		generator.NewStaticForest(demoDefinition().Children),
		event.NewEventManager(logger),
		logger,
	)
	require.NoError(t, err)
	require.NoError(t, engine.Init(context.Background()))
	_, err = engine.RefreshSubtree(context.Background(), engine.Root(), false)
	require.NoError(t, err)

	export, err := exportTree(engine)
	require.NoError(t, err)
	// The hidden root is not written; its children are the top level.
	require.Len(t, export.Nodes, 2)
	assert.Equal(t, "docs", export.Nodes[0].Name)
	assert.Equal(t, "src", export.Nodes[1].Name)
}

func TestMetaEntriesSorted(t *testing.T) {
	entries := metaEntries(map[string]string{"b": "2", "a": "1", "c": "3"})
	assert.Equal(t, []MetaEntry{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}, {Name: "c", Value: "3"}}, entries)
	assert.Nil(t, metaEntries(nil))
}
