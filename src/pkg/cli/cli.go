// Package cli implements the interactive command-line frontend of Treescape.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"treescape/local-app/src/pkg/adapter"
	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/session"
)

// CLI represents the command-line interface
type CLI struct {
	adapter   *adapter.CLIAdapter
	sessionID string
	rl        *readline.Instance
	stopCh    chan struct{}
	logger    *log.Logger
}

// NewCLI creates a new CLI instance
func NewCLI(cliAdapter *adapter.CLIAdapter, logger *log.Logger) (*CLI, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     "/tmp/treescape_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize readline: %w", err)
	}
	return &CLI{
		adapter: cliAdapter,
		rl:      rl,
		stopCh:  make(chan struct{}),
		logger:  logger,
	}, nil
}

// Run starts the CLI and handles user input until the user exits.
func (c *CLI) Run() error {
	fmt.Println("Welcome to Treescape!")
	fmt.Println("Type 'help' for a list of commands or 'exit' to quit.")

	sessionID, err := c.adapter.SessionAdd()
	if err != nil {
		return fmt.Errorf("failed to open CLI session: %w", err)
	}
	c.sessionID = sessionID
	defer c.adapter.SessionDelete(sessionID)

	// Build the tree up front so the first 'tree show' has content.
	if _, err := c.adapter.ProcessInput(sessionID, "tree init"); err != nil {
		fmt.Printf("Error initializing tree: %v\n", err)
	}

	for {
		select {
		case <-c.stopCh:
			return nil
		default:
		}

		c.rl.SetPrompt(c.adapter.PromptGet(sessionID))
		line, err := c.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if line == "help" || strings.HasPrefix(line, "help ") {
			c.printHelp()
			continue
		}

		result, err := c.adapter.ProcessInput(sessionID, line)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		c.render(result)
	}
}

// Stop signals the CLI loop to terminate.
func (c *CLI) Stop() {
	close(c.stopCh)
	c.rl.Close()
}

// render prints a command result in a form fitting its type.
func (c *CLI) render(result interface{}) {
	switch v := result.(type) {
	case nil:
	case []*model.TreeNode[model.Item]:
		c.renderTree(v)
	case *model.TreeNode[model.Item]:
		c.renderNode(v)
	case session.TreeInfo:
		fmt.Printf("root id %d (visible: %t), %d nodes\n", v.RootID, v.VisibleRoot, v.NodeCount)
	case []int:
		ids := make([]string, len(v))
		for i, id := range v {
			ids[i] = fmt.Sprintf("%d", id)
		}
		fmt.Printf("children: %s\n", strings.Join(ids, " "))
	case string:
		fmt.Println(v)
	default:
		fmt.Printf("%v\n", v)
	}
}

// renderTree prints the flattened tree with indentation and expand markers.
func (c *CLI) renderTree(nodes []*model.TreeNode[model.Item]) {
	if len(nodes) == 0 {
		fmt.Println("(empty tree)")
		return
	}
	baseDepth := nodes[0].Depth
	for _, n := range nodes {
		marker := "  "
		if n.Interior() {
			if n.Expand {
				marker = "[-]"
			} else {
				marker = "[+]"
			}
		}
		indent := strings.Repeat("  ", n.Depth-baseDepth)
		fmt.Printf("%s%s %s (#%d)\n", indent, marker, n.Value.Name, n.ID)
	}
}

// renderNode prints a single node record.
func (c *CLI) renderNode(n *model.TreeNode[model.Item]) {
	fmt.Printf("#%d %s depth=%d parent=%d expand=%t hasChild=%t children=%d\n",
		n.ID, n.Value.Name, n.Depth, n.ParentID, n.Expand, n.HasChild, len(n.ChildIDs))
	if n.Value.Path != "" {
		fmt.Printf("  path: %s\n", n.Value.Path)
	}
	for k, v := range n.Value.Meta {
		fmt.Printf("  %s: %s\n", k, v)
	}
}

// printHelp prints the available commands.
func (c *CLI) printHelp() {
	help := `Commands:
  tree init            rebuild the tree from its source
  tree show [all]      print the tree ('all' ignores collapse state)
  tree reload [all]    re-fetch the tree ('all' reloads collapsed levels too)
  tree check           validate the tree structure
  tree info            print tree summary
  tree export <file> [json|xml]
                       write the loaded tree to a file (default json)
  node expand <id>     expand a node, loading its children if needed
  node collapse <id>   collapse a node
  node refresh <id> [deep|all]
                       reload a node's children (deep: follow expanded
                       descendants, all: reload the whole subtree)
  node children <id>   preview a node's children without changing the tree
  node info <id>       print a node record
  help                 show this help
  exit                 quit`
	fmt.Println(help)
	c.logger.Debug(context.Background(), "Help printed", nil)
}
