// Package db embeds the SQL schema migrations so a deployed binary can
// initialize the database without shipping migration files alongside it.
package db

import "embed"

// Migrations holds the embedded SQL migration files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
