package migrations

import (
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

const testValue = "0000000000000000000000000000000000000000000000000000000000000000"

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	tables := []string{"repositories", "publications", "commits", "paths", "hashes", "sync_operations", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus(t *testing.T) {
	t.Run("fresh database", func(t *testing.T) {
		db := openTestDB(t)
		if err := CheckDBMigrationStatus(db); !errors.Is(err, ErrNeedsMigration) {
			t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNeedsMigration", err)
		}
	})

	t.Run("after migration", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() error = %v", err)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db := openTestDB(t)
		for i := 0; i < 2; i++ {
			if err := MigrateUp(db); err != nil {
				t.Fatalf("MigrateUp() run %d error = %v", i+1, err)
			}
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() error = %v", err)
		}
	})
}

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if v < 1 {
		t.Errorf("LatestVersion() = %d, want >= 1", v)
	}
}

func TestSchemaConstraints(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("Exec(%q) error = %v", query, err)
		}
	}

	mustExec("INSERT INTO repositories (id, name) VALUES (1, 'dc-law')")
	mustExec("INSERT INTO publications (id, repository_id, name, date) VALUES (1, 1, '2020-01-01', '2020-01-01')")
	mustExec("INSERT INTO commits (id, publication_id, sha, date, created_at) VALUES (1, 1, 'a', '2020-01-01', datetime('now'))")
	mustExec("INSERT INTO commits (id, publication_id, sha, date, created_at) VALUES (2, 1, 'b', '2020-01-02', datetime('now'))")
	mustExec("INSERT INTO paths (id, publication_id, filesystem, url) VALUES (1, 1, 'index.html', '/')")

	t.Run("foreign keys enforced", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO paths (publication_id, filesystem, url) VALUES (99, 'x.html', '/x')")
		if err == nil {
			t.Error("expected foreign key violation")
		}
	})

	t.Run("hash value length checked", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO hashes (path_id, value, kind, start_commit_id) VALUES (1, 'short', 'B', 1)")
		if err == nil {
			t.Error("expected check constraint violation for short value")
		}
	})

	t.Run("hash kind checked", func(t *testing.T) {
		_, err := db.Exec("INSERT INTO hashes (path_id, value, kind, start_commit_id) VALUES (1, ?, 'X', 1)", testValue)
		if err == nil {
			t.Error("expected check constraint violation for unknown kind")
		}
	})

	t.Run("one open interval per path and kind", func(t *testing.T) {
		mustExec("INSERT INTO hashes (path_id, value, kind, start_commit_id) VALUES (1, ?, 'B', 1)", testValue)
		other := strings.Repeat("1", 64)
		_, err := db.Exec("INSERT INTO hashes (path_id, value, kind, start_commit_id) VALUES (1, ?, 'B', 2)", other)
		if err == nil {
			t.Error("expected unique violation for second open interval")
		}
		// a different kind may be open at the same time
		mustExec("INSERT INTO hashes (path_id, value, kind, start_commit_id) VALUES (1, ?, 'R', 1)", other)
	})

	t.Run("deleting end commit reopens interval", func(t *testing.T) {
		mustExec("INSERT INTO commits (id, publication_id, sha, date, created_at) VALUES (3, 1, 'c', '2020-01-03', datetime('now'))")
		mustExec("INSERT INTO paths (id, publication_id, filesystem, url) VALUES (2, 1, 'a.pdf', '/a.pdf')")
		mustExec("INSERT INTO hashes (id, path_id, value, kind, start_commit_id, end_commit_id) VALUES (50, 2, ?, 'B', 1, 3)", testValue)
		mustExec("DELETE FROM commits WHERE id = 3")

		var end sql.NullInt64
		if err := db.QueryRow("SELECT end_commit_id FROM hashes WHERE id = 50").Scan(&end); err != nil {
			t.Fatalf("QueryRow() error = %v", err)
		}
		if end.Valid {
			t.Errorf("end_commit_id = %d, want NULL", end.Int64)
		}
	})

	t.Run("start commit cannot be deleted while referenced", func(t *testing.T) {
		if _, err := db.Exec("DELETE FROM commits WHERE id = 1"); err == nil {
			t.Error("expected restrict violation deleting a start commit")
		}
	})
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
