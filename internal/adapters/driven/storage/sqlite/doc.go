// Package sqlite is the default RequirementStore: one local database file,
// ~/.reqsift/data/requirements.db unless a path is configured.
//
// Each extraction run is a row in extraction_runs; its requirements and
// file tables are JSON text columns. The newest run of a project (by
// created_at, then insertion order) seeds the next extraction.
//
// The driver is modernc.org/sqlite, so the binary builds without cgo. The
// database is opened in WAL mode with a busy timeout, which lets the
// watcher and the API server write while a CLI command reads.
//
// Schema changes are numbered files in migrations/, applied in order and
// recorded in schema_migrations.
package sqlite
