// Package migrations carries the index store's schema as embedded SQL.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
