// Package testutil provides shared fixtures and database helpers for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/sift/internal/storage"
)

// TestDB wraps a migrated storage instance bound to a test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	id := db.MustCreateSession(testutil.LeadsSession(t))
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// MustCreateSession stores a session for the fixture table and returns its id.
func (db *TestDB) MustCreateSession(in storage.NewSession) string {
	db.t.Helper()
	s, err := db.Storage.CreateSession(context.Background(), in)
	if err != nil {
		db.t.Fatalf("failed to create session: %v", err)
	}
	return s.ID
}
