// Package migrations holds the versioned schema for the user store,
// applied with goose on startup. Migrations are additive only: the
// goose version table gates each one so re-running Init is safe.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
