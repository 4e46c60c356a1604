// Package session manages user sessions and routes their commands to the
// tree engine.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/tree"
)

// CommandHandler is a function type for command handlers
type CommandHandler func(*Session, model.Command) (interface{}, error)

// Session represents an individual user session
type Session struct {
	ID              string
	Engine          *tree.Engine[model.Item]
	activityMutex   sync.Mutex
	lastActivity    time.Time
	commandHandlers map[string]map[string]CommandHandler
	logger          *log.Logger
}

// NewSession creates a new Session instance
func NewSession(id string, engine *tree.Engine[model.Item], logger *log.Logger) *Session {
	s := &Session{
		ID:           id,
		Engine:       engine,
		lastActivity: time.Now(),
		logger:       logger,
	}
	s.initCommandHandlers()
	return s
}

// Touch records activity on the session.
func (s *Session) Touch() {
	s.activityMutex.Lock()
	s.lastActivity = time.Now()
	s.activityMutex.Unlock()
}

// LastActivity returns the time of the last command run in the session.
func (s *Session) LastActivity() time.Time {
	s.activityMutex.Lock()
	defer s.activityMutex.Unlock()
	return s.lastActivity
}

// initCommandHandlers initializes the command handlers map
func (s *Session) initCommandHandlers() {
	s.commandHandlers = map[string]map[string]CommandHandler{
		"tree": initTreeCommandHandlers(),
		"node": initNodeCommandHandlers(),
	}
}

// CommandRun executes a command within the session context
func (s *Session) CommandRun(cmd model.Command) (interface{}, error) {
	ctx := context.Background()
	s.logger.Info(ctx, "Running command", log.Fields{"sessionID": s.ID, "command": cmd})

	s.Touch()

	sessionCmd := NewSessionCommand(cmd, s.logger)
	if err := sessionCmd.Validate(); err != nil {
		return nil, err
	}

	scopeHandlers, ok := s.commandHandlers[cmd.Scope]
	if !ok {
		s.logger.Error(ctx, "Invalid command scope", log.Fields{"scope": cmd.Scope})
		return nil, errors.New("invalid command scope")
	}
	handler, ok := scopeHandlers[cmd.Operation]
	if !ok {
		s.logger.Error(ctx, "Invalid command operation", log.Fields{"operation": cmd.Operation})
		return nil, errors.New("invalid command operation")
	}

	result, err := handler(s, cmd)
	if err != nil {
		s.logger.Error(ctx, "Command failed", log.Fields{"sessionID": s.ID, "command": cmd, "error": err})
		return nil, err
	}
	return result, nil
}
