// Package migrations embeds the RA schema for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
