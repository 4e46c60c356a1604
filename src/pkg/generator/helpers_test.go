package generator

import (
	"testing"

	"treescape/local-app/src/pkg/log"
)

func newDiscardLogger(t *testing.T) *log.Logger {
	t.Helper()
	logger := log.NewDiscard()
	t.Cleanup(func() { logger.Close() })
	return logger
}
