package testutil

import (
	"testing"

	"mcat-go/internal/database"
)

// NewTestDatabase creates a new in-memory catalog with the schema applied.
// The database is automatically closed when the test completes.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:", FixedClock())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.CreateTable(); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}
