package db

import (
	"database/sql"
	"testing"
)

// NewTestDB returns an in-memory database with the schema applied and the
// given branches created. It is closed when the test ends.
func NewTestDB(t *testing.T, branches ...string) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := EnsureSchema(db); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}

	for _, name := range branches {
		if _, err := db.Exec(`INSERT INTO branches (name) VALUES (?)`, name); err != nil {
			t.Fatalf("seeding branch %q: %v", name, err)
		}
	}
	return db
}
