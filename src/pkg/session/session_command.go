package session

import (
	"context"
	"errors"
	"fmt"

	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
)

// SessionCommand wraps the model.Command and adds session-specific functionality
type SessionCommand struct {
	model.Command
	logger *log.Logger
}

// NewSessionCommand creates a new SessionCommand from a model.Command
func NewSessionCommand(cmd model.Command, logger *log.Logger) SessionCommand {
	return SessionCommand{Command: cmd, logger: logger}
}

// Validate checks if the command is valid
func (c *SessionCommand) Validate() error {
	ctx := context.Background()
	c.logger.Debug(ctx, "Validating command", log.Fields{"scope": c.Scope, "operation": c.Operation})

	if c.Scope == "" {
		return errors.New("command scope is required")
	}
	if c.Operation == "" {
		return errors.New("command operation is required")
	}

	switch c.Scope {
	case "tree":
		return c.validateTreeCommand()
	case "node":
		return c.validateNodeCommand()
	default:
		c.logger.Error(ctx, "Invalid command scope", log.Fields{"scope": c.Scope})
		return fmt.Errorf("invalid command scope: %s", c.Scope)
	}
}

func (c *SessionCommand) validateTreeCommand() error {
	switch c.Operation {
	case "init", "info", "check":
		if len(c.Args) != 0 {
			return fmt.Errorf("tree %s command takes no arguments", c.Operation)
		}
	case "show", "reload":
		if len(c.Args) > 1 || (len(c.Args) == 1 && c.Args[0] != "all") {
			return fmt.Errorf("tree %s command takes at most one argument: [all]", c.Operation)
		}
	case "export":
		if len(c.Args) < 1 || len(c.Args) > 2 {
			return fmt.Errorf("tree export command requires 1 or 2 arguments: <file> [json|xml]")
		}
		if len(c.Args) == 2 && c.Args[1] != "json" && c.Args[1] != "xml" {
			return fmt.Errorf("tree export format must be 'json' or 'xml'")
		}
	default:
		return fmt.Errorf("invalid tree operation: %s", c.Operation)
	}
	return nil
}

func (c *SessionCommand) validateNodeCommand() error {
	switch c.Operation {
	case "expand", "collapse", "children", "info":
		if len(c.Args) != 1 {
			return fmt.Errorf("node %s command requires 1 argument: <id>", c.Operation)
		}
	case "refresh":
		if len(c.Args) < 1 || len(c.Args) > 2 {
			return fmt.Errorf("node refresh command requires 1 or 2 arguments: <id> [deep|all]")
		}
		if len(c.Args) == 2 && c.Args[1] != "deep" && c.Args[1] != "all" {
			return fmt.Errorf("node refresh mode must be 'deep' or 'all'")
		}
	default:
		return fmt.Errorf("invalid node operation: %s", c.Operation)
	}
	return nil
}
