// Package testutil provides test utilities for the cashbook project: an
// isolated SQLite database per test and a fluent builder for ledger data.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/cashbook/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated SQLite database in a temporary directory.
// The default category catalog is seeded by the migrations. Cleanup is
// registered automatically.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	ledger := db.Ledger("Corner Shop").
//		WithCurrency("GHS").
//		WithExpense("6", "120", now).
//		Build()
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "cashbook.db"))
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

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SetupMemoryDB creates a migrated in-memory database. It is faster than
// SetupTestDB but cannot be backed up.
func SetupMemoryDB(t *testing.T) *TestDB {
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

	return &TestDB{
		Storage: store,
		t:       t,
	}
}
