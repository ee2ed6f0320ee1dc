package db

import (
	"database/sql"
	"testing"
)

// NewTestDB opens an in-memory journal database with the schema applied and
// closes it when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("applying test schema: %v", err)
	}

	return database
}
