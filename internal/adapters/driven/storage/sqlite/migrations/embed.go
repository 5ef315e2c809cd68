// Package migrations holds the versioned SQLite schema, applied in order
// by the store on open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
