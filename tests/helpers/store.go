// Package helpers provides shared test fixtures.
package helpers

import (
	"testing"

	"github.com/readingroom/librarian/config"
	"github.com/readingroom/librarian/internal/store"
)

// NewTestStore creates an in-memory store seeded with the default library.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", config.DefaultLibrary())
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
