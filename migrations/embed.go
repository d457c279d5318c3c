// Package migrations holds the SQL schema migrations, embedded into the
// migrate and server binaries.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql migration
//
//go:embed *.sql
var FS embed.FS
