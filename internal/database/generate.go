package database

// schema.sql is a read-only snapshot of the migrated schema, for reviewing
// the table layout without replaying migrations. Regenerate with:
//
//	go generate ./internal/database

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
