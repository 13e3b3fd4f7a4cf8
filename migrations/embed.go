// Package migrations embeds the marketplace schema so the server can apply
// it on startup.
package migrations

import "embed"

//go:embed *.up.sql
var FS embed.FS
