// Package migrations embeds the SQLite schema migrations.
package migrations

import "embed"

// FS contains the embedded golang-migrate migrations.
//
//go:embed *.sql
var FS embed.FS
