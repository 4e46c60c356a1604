package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fsnotify/fsnotify"

	"treescape/local-app/src/pkg/event"
	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
)

// FSGenerator serves the directory tree rooted at a path on the local
// filesystem. Node keys are absolute paths; directories report HasChild.
// The generator only reads the filesystem when asked; the optional watcher
// publishes SourceChanged events inviting the host to refresh, it never
// mutates the tree itself.
type FSGenerator struct {
	rootPath string
	events   *event.EventManager
	logger   *log.Logger
	watcher  *fsnotify.Watcher
}

// NewFSGenerator creates a generator for the directory at rootPath.
func NewFSGenerator(rootPath string, eventManager *event.EventManager, logger *log.Logger) (*FSGenerator, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}
	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve browse root '%s': %w", rootPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat browse root '%s': %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("browse root '%s' is not a directory", abs)
	}
	return &FSGenerator{
		rootPath: abs,
		events:   eventManager,
		logger:   logger,
	}, nil
}

// CreateRootNode implements Generator.
func (g *FSGenerator) CreateRootNode(ctx context.Context) (*NodeData[model.Item], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &NodeData[model.Item]{
		Key:      g.rootPath,
		Value:    model.Item{Name: filepath.Base(g.rootPath), Path: g.rootPath},
		HasChild: true,
	}, nil
}

// FetchChildren implements Generator. Non-directory nodes have no children.
func (g *FSGenerator) FetchChildren(ctx context.Context, node *model.TreeNode[model.Item]) ([]NodeData[model.Item], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := node.Key
	if dir == "" {
		dir = g.rootPath
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat '%s': %w", dir, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory '%s': %w", dir, err)
	}

	out := make([]NodeData[model.Item], 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			g.watchPath(path)
		}
		meta := map[string]string{"dir": strconv.FormatBool(entry.IsDir())}
		if fi, err := entry.Info(); err == nil {
			meta["mode"] = fi.Mode().String()
			if !entry.IsDir() {
				meta["size"] = strconv.FormatInt(fi.Size(), 10)
			}
		}
		out = append(out, NodeData[model.Item]{
			Key:      path,
			Value:    model.Item{Name: entry.Name(), Path: path, Meta: meta},
			HasChild: entry.IsDir(),
		})
	}
	g.logger.Debug(ctx, "Listed directory", log.Fields{"dir": dir, "entries": len(out)})
	return out, nil
}

// Watch starts watching the root directory and publishes a SourceChanged
// event for every change in a watched directory. Watching is not recursive
// up front; subdirectories join the watch set as FetchChildren lists them,
// so coverage tracks what the tree has actually loaded. Requires an event
// manager.
func (g *FSGenerator) Watch() error {
	if g.events == nil {
		return fmt.Errorf("eventManager not initialized")
	}
	if g.watcher != nil {
		return fmt.Errorf("watcher already started")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(g.rootPath); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch '%s': %w", g.rootPath, err)
	}
	g.watcher = watcher

	go func() {
		ctx := context.Background()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				g.logger.Debug(ctx, "Filesystem change detected", log.Fields{"path": ev.Name, "op": ev.Op.String()})
				g.events.Publish(event.Event{Type: event.SourceChanged, Data: ev.Name})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				g.logger.Error(ctx, "Watcher error", log.Fields{"error": err})
			}
		}
	}()

	g.logger.Info(context.Background(), "Filesystem watcher started", log.Fields{"root": g.rootPath})
	return nil
}

// watchPath adds a directory to the watch set. Re-adding a watched path is a
// no-op for fsnotify, so listing the same directory again is harmless.
func (g *FSGenerator) watchPath(path string) {
	if g.watcher == nil {
		return
	}
	if err := g.watcher.Add(path); err != nil {
		g.logger.Warn(context.Background(), "Failed to watch directory", log.Fields{"path": path, "error": err})
	}
}

// Close stops the watcher if one was started.
func (g *FSGenerator) Close() error {
	if g.watcher == nil {
		return nil
	}
	if err := g.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	g.watcher = nil
	return nil
}
