// Package db carries the SQL schema migrations embedded into the binary.
package db

import "embed"

// Migrations holds the golang-migrate files under migrations/
//
//go:embed migrations/*.sql
var Migrations embed.FS
