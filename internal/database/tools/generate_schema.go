// Command generate_schema applies every migration to an empty database and
// writes the resulting DDL to sqlc/schema.sql, the schema sqlc compiles
// queries against and tests load directly.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"olaaf-go/internal/database"
	"olaaf-go/internal/database/migrations"
)

const schemaHeader = `-- Generated from internal/database/migrations/files by
-- internal/database/tools/generate_schema.go. Do not edit.

`

func main() {
	out := flag.String("out", filepath.Join("internal", "database", "sqlc", "schema.sql"), "schema output path")
	flag.Parse()

	if err := run(*out); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s\n", *out)
}

func run(out string) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	schema, err := dumpSchema(db)
	if err != nil {
		return err
	}
	return os.WriteFile(out, []byte(schemaHeader+schema), 0644)
}

// dumpSchema returns the CREATE statements of every user object, tables
// first, skipping SQLite internals and the migration bookkeeping table.
func dumpSchema(db *sql.DB) (string, error) {
	rows, err := db.Query(`
		SELECT sql FROM sqlite_master
		WHERE sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY CASE type WHEN 'table' THEN 0 WHEN 'index' THEN 1 ELSE 2 END, name`)
	if err != nil {
		return "", fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scanning schema row: %w", err)
		}
		b.WriteString(stmt)
		b.WriteString(";\n\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("reading schema rows: %w", err)
	}
	return b.String(), nil
}
