package testutil

import (
	"testing"

	"olaaf-go/internal/database"
	"olaaf-go/internal/olaaf"
)

// NewTestDatabase returns an in-memory index loaded from the generated
// schema. It is closed when the test ends.
func NewTestDatabase(t *testing.T) olaaf.Database {
	t.Helper()
	conn, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("OpenConnection() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec(database.Schema); err != nil {
		t.Fatalf("loading schema: %v", err)
	}
	return database.NewSQLiteDatabaseFromDB(conn)
}
