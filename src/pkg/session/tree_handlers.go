package session

import (
	"context"
	"fmt"

	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/tree"
)

// TreeInfo summarizes the current tree for display.
type TreeInfo struct {
	RootID      int
	VisibleRoot bool
	NodeCount   int
}

func initTreeCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"init":   handleTreeInit,
		"show":   handleTreeShow,
		"reload": handleTreeReload,
		"check":  handleTreeCheck,
		"info":   handleTreeInfo,
		"export": handleTreeExport,
	}
}

// handleTreeInit builds (or rebuilds) the tree root and loads its first level.
func handleTreeInit(s *Session, _ model.Command) (interface{}, error) {
	ctx := context.Background()
	if err := s.Engine.Init(ctx); err != nil {
		return nil, err
	}
	root := s.Engine.Root()
	if _, err := s.Engine.Refresh(ctx, root); err != nil {
		return nil, err
	}
	return fmt.Sprintf("tree initialized, %d nodes", s.Engine.Size()), nil
}

// handleTreeShow flattens the tree in display order. "tree show all" ignores
// collapse state.
func handleTreeShow(s *Session, cmd model.Command) (interface{}, error) {
	opts := tree.DefaultVisitOptions()
	if len(cmd.Args) == 1 {
		opts.WithExpandable = false
	}
	return s.Engine.SortedList(opts)
}

// handleTreeReload refreshes the whole tree from the generator. By default
// only expanded nodes are descended into; "tree reload all" reloads every
// level.
func handleTreeReload(s *Session, cmd model.Command) (interface{}, error) {
	ctx := context.Background()
	root := s.Engine.Root()
	if root == nil {
		return nil, tree.ErrTreeNotInitialized
	}
	withExpandable := len(cmd.Args) == 0
	if _, err := s.Engine.RefreshSubtree(ctx, root, withExpandable); err != nil {
		return nil, err
	}
	return fmt.Sprintf("tree reloaded, %d nodes", s.Engine.Size()), nil
}

// handleTreeCheck runs the precise traversal, validating the structure.
func handleTreeCheck(s *Session, _ model.Command) (interface{}, error) {
	nodes, err := s.Engine.SortedList(tree.VisitOptions{WithExpandable: false, FastVisit: false})
	if err != nil {
		return nil, err
	}
	return fmt.Sprintf("tree consistent, %d visible nodes", len(nodes)), nil
}

// handleTreeExport writes the loaded tree to a file in JSON or XML form.
func handleTreeExport(s *Session, cmd model.Command) (interface{}, error) {
	format := "json"
	if len(cmd.Args) == 2 {
		format = cmd.Args[1]
	}
	if err := FileExport(s.Engine, cmd.Args[0], format); err != nil {
		return nil, err
	}
	return fmt.Sprintf("tree exported to %s (%s)", cmd.Args[0], format), nil
}

// handleTreeInfo reports basic facts about the current tree.
func handleTreeInfo(s *Session, _ model.Command) (interface{}, error) {
	root := s.Engine.Root()
	if root == nil {
		return nil, tree.ErrTreeNotInitialized
	}
	return TreeInfo{
		RootID:      root.ID,
		VisibleRoot: root.Depth >= 0,
		NodeCount:   s.Engine.Size(),
	}, nil
}
