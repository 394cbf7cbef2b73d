package migrations

import "embed"

// FS holds the sqlite score ledger schema in golang-migrate layout.
//
//go:embed *.sql
var FS embed.FS
