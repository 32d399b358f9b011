//go:build integration

// Package containers starts the Postgres instance integration suites run
// against. One container serves every suite in the test binary.
package containers

import (
	"sync"
	"testing"
)

var (
	sharedMu sync.Mutex
	shared   *PostgresContainer
)

// Postgres returns the process-wide container, starting and migrating it on
// first use. Callers reset state with TruncateModuleTables between tests.
func Postgres(t *testing.T) *PostgresContainer {
	t.Helper()

	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared == nil {
		shared = NewPostgresContainer(t)
	}
	return shared
}
