// Package migrations embeds the versioned PostgreSQL schema.
package migrations

import "embed"

// FS holds every NNNNNN_name.up.sql and .down.sql pair
//
//go:embed *.sql
var FS embed.FS
