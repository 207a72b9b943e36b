// Package migrations embeds the SQL schema so the binary carries it with it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
