// Package migrations embeds the goose SQL migrations so the api binary
// carries them instead of depending on a migrations directory at runtime.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
