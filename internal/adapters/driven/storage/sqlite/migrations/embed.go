// Package migrations holds the numbered schema files for the SQLite store.
package migrations

import "embed"

// FS holds NNN_name.up.sql and NNN_name.down.sql.
//
//go:embed *.sql
var FS embed.FS
