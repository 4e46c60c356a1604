package session

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"treescape/local-app/src/pkg/model"
)

func initNodeCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"expand":   handleNodeExpand,
		"collapse": handleNodeCollapse,
		"refresh":  handleNodeRefresh,
		"children": handleNodeChildren,
		"info":     handleNodeInfo,
	}
}

// handleNodeExpand marks a node expanded, fetching its children first if they
// have never been loaded. This is the lazy-population entry point of the UI.
func handleNodeExpand(s *Session, cmd model.Command) (interface{}, error) {
	ctx := context.Background()
	id, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}

	n, err := s.Engine.Node(id)
	if err != nil {
		return nil, err
	}
	if len(n.ChildIDs) == 0 && n.HasChild {
		if _, err := s.Engine.Refresh(ctx, n); err != nil {
			return nil, err
		}
	}
	return s.Engine.SetExpanded(id, true)
}

// handleNodeCollapse marks a node collapsed. Its children stay loaded.
func handleNodeCollapse(s *Session, cmd model.Command) (interface{}, error) {
	id, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	return s.Engine.SetExpanded(id, false)
}

// handleNodeRefresh reloads a node's children. "deep" follows expanded
// descendants, "all" reloads the whole subtree.
func handleNodeRefresh(s *Session, cmd model.Command) (interface{}, error) {
	ctx := context.Background()
	id, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	n, err := s.Engine.Node(id)
	if err != nil {
		return nil, err
	}

	if len(cmd.Args) == 1 {
		return s.Engine.Refresh(ctx, n)
	}
	return s.Engine.RefreshSubtree(ctx, n, cmd.Args[1] == "deep")
}

// handleNodeChildren previews what the node's children would be after a
// refresh, without changing the tree.
func handleNodeChildren(s *Session, cmd model.Command) (interface{}, error) {
	ctx := context.Background()
	id, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	ids, err := s.Engine.ChildNodesByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(ids))
	for cid := range ids {
		out = append(out, cid)
	}
	sort.Ints(out)
	return out, nil
}

// handleNodeInfo returns the live node record.
func handleNodeInfo(s *Session, cmd model.Command) (interface{}, error) {
	id, err := parseNodeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	return s.Engine.Node(id)
}

func parseNodeID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid node id '%s'", arg)
	}
	return id, nil
}
