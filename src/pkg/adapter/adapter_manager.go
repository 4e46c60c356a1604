// Package adapter bridges user-facing frontends to the session package.
package adapter

import (
	"context"
	"fmt"

	"treescape/local-app/src/pkg/log"
	"treescape/local-app/src/pkg/model"
	"treescape/local-app/src/pkg/session"
)

// AdapterManager owns the frontends and routes their commands to sessions.
type AdapterManager struct {
	sessionManager *session.SessionManager
	cliAdapter     *CLIAdapter
	logger         *log.Logger
}

// NewAdapterManager creates an AdapterManager and its CLI adapter.
func NewAdapterManager(sessionManager *session.SessionManager, logger *log.Logger) (*AdapterManager, error) {
	if sessionManager == nil {
		return nil, fmt.Errorf("sessionManager not initialized")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}

	am := &AdapterManager{
		sessionManager: sessionManager,
		logger:         logger,
	}

	cliAdapter, err := NewCLIAdapter(am, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create CLI adapter: %w", err)
	}
	am.cliAdapter = cliAdapter
	return am, nil
}

// CLIAdapter returns the CLI frontend adapter.
func (am *AdapterManager) CLIAdapter() *CLIAdapter {
	return am.cliAdapter
}

// SessionAdd opens a new session.
func (am *AdapterManager) SessionAdd() (string, error) {
	return am.sessionManager.SessionAdd()
}

// SessionGet retrieves an existing session.
func (am *AdapterManager) SessionGet(sessionID string) (*session.Session, bool) {
	return am.sessionManager.SessionGet(sessionID)
}

// CommandRun executes a command in the given session.
func (am *AdapterManager) CommandRun(sessionID string, cmd model.Command) (interface{}, error) {
	return am.sessionManager.SessionRun(sessionID, cmd)
}

// Shutdown stops the adapters.
func (am *AdapterManager) Shutdown() {
	am.logger.Info(context.Background(), "Adapter manager shutting down", nil)
	if am.cliAdapter != nil {
		if err := am.cliAdapter.AdapterStop(); err != nil {
			am.logger.Error(context.Background(), "Failed to stop CLI adapter", log.Fields{"error": err})
		}
	}
}
