package database

// Code generation for the database package:
//
//	go generate ./internal/database
//
// regenerates sqlc/schema.sql from the migrations, then the sqlc query code.

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
//go:generate sh -c "cd sqlc && sqlc generate -f sqlc.yaml"
