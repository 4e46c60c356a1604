package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/tree"
)

const defaultCleanupInterval = 5 * time.Minute

// SessionManager manages multiple concurrent sessions over one shared tree
// engine. Commands from all sessions are funneled through a single executor
// goroutine, which serializes overlapping refreshes on the shared tree. The
// session map is read by callers and written by the cleanup goroutine, so it
// is guarded by a mutex.
type SessionManager struct {
	sessions       map[string]*Session
	sessionMutex   sync.RWMutex
	engine         *tree.Engine[model.Item]
	sessionTimeout time.Duration
	cleanupTicker  *time.Ticker
	done           chan struct{}
	stopOnce       sync.Once
	commandQueue   chan commandExecution
	logger         *log.Logger
}

// commandExecution represents a command to be executed in a session, its result and error
type commandExecution struct {
	session *Session
	command model.Command
	result  chan interface{}
	err     chan error
}

// NewSessionManager starts the command execution goroutine
func NewSessionManager(engine *tree.Engine[model.Item], cfg *model.Config, logger *log.Logger) *SessionManager {
	ctx := context.Background()
	logger.Info(ctx, "Creating new SessionManager", nil)

	sm := &SessionManager{
		sessions:       make(map[string]*Session),
		engine:         engine,
		sessionTimeout: time.Duration(cfg.SessionTimeout) * time.Minute,
		done:           make(chan struct{}),
		commandQueue:   make(chan commandExecution),
		logger:         logger,
	}
	sm.startCleanupRoutine()
	go sm.commandExecutor()
	return sm
}

// SessionAdd creates a new session and returns its ID
func (sm *SessionManager) SessionAdd() (string, error) {
	ctx := context.Background()

	sessionID := uuid.NewString()
	sm.sessionMutex.Lock()
	sm.sessions[sessionID] = NewSession(sessionID, sm.engine, sm.logger)
	sm.sessionMutex.Unlock()
	sm.logger.Info(ctx, "New session added", log.Fields{"sessionID": sessionID})
	return sessionID, nil
}

// SessionGet retrieves a session by its ID
func (sm *SessionManager) SessionGet(sessionID string) (*Session, bool) {
	sm.sessionMutex.RLock()
	session, exists := sm.sessions[sessionID]
	sm.sessionMutex.RUnlock()
	if !exists {
		sm.logger.Warn(context.Background(), "Session not found", log.Fields{"sessionID": sessionID})
	}
	return session, exists
}

// SessionDelete removes a session
func (sm *SessionManager) SessionDelete(sessionID string) {
	ctx := context.Background()
	sm.sessionMutex.Lock()
	_, exists := sm.sessions[sessionID]
	if exists {
		delete(sm.sessions, sessionID)
	}
	sm.sessionMutex.Unlock()
	if !exists {
		sm.logger.Warn(ctx, "Attempted to delete non-existent session", log.Fields{"sessionID": sessionID})
		return
	}
	sm.logger.Info(ctx, "Session deleted", log.Fields{"sessionID": sessionID})
}

// SessionRun executes a command for a specific session
func (sm *SessionManager) SessionRun(sessionID string, cmd model.Command) (interface{}, error) {
	ctx := context.Background()

	session, exists := sm.SessionGet(sessionID)
	if !exists {
		return nil, errors.New("session not found")
	}

	// Log command in command log
	sm.logger.Command(ctx, "Command received", log.Fields{
		"sessionID": sessionID,
		"scope":     cmd.Scope,
		"operation": cmd.Operation,
		"args":      cmd.Args,
	})

	result := make(chan interface{})
	errChan := make(chan error)

	select {
	case sm.commandQueue <- commandExecution{
		session: session,
		command: cmd,
		result:  result,
		err:     errChan,
	}:
	case <-sm.done:
		return nil, errors.New("session manager stopped")
	}

	select {
	case res := <-result:
		return res, nil
	case e := <-errChan:
		sm.logger.Error(ctx, "Command execution failed", log.Fields{"sessionID": sessionID, "error": e})
		return nil, e
	}
}

// commandExecutor processes commands from the queue until the manager stops
func (sm *SessionManager) commandExecutor() {
	for {
		select {
		case cmd := <-sm.commandQueue:
			result, err := cmd.session.CommandRun(cmd.command)
			if err != nil {
				cmd.err <- err
			} else {
				cmd.result <- result
			}
		case <-sm.done:
			return
		}
	}
}

// startCleanupRoutine starts a goroutine that periodically cleans up inactive sessions
func (sm *SessionManager) startCleanupRoutine() {
	sm.cleanupTicker = time.NewTicker(defaultCleanupInterval)
	go func() {
		for {
			select {
			case <-sm.cleanupTicker.C:
				sm.cleanupInactiveSessions()
			case <-sm.done:
				sm.cleanupTicker.Stop()
				return
			}
		}
	}()
}

// Stop terminates the cleanup and command executor goroutines. Commands
// issued after Stop fail.
func (sm *SessionManager) Stop() {
	sm.stopOnce.Do(func() {
		close(sm.done)
	})
}

// cleanupInactiveSessions removes inactive sessions
func (sm *SessionManager) cleanupInactiveSessions() {
	ctx := context.Background()
	now := time.Now()

	sm.sessionMutex.RLock()
	var expired []string
	for id, session := range sm.sessions {
		if now.Sub(session.LastActivity()) > sm.sessionTimeout {
			expired = append(expired, id)
		}
	}
	sm.sessionMutex.RUnlock()

	for _, id := range expired {
		sm.logger.Info(ctx, "Removing inactive session", log.Fields{"sessionID": id})
		sm.SessionDelete(id)
	}
}
