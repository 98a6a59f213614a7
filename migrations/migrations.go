// Package migrations embeds the SQL schema migrations for both
// supported database drivers. The db package selects the set that
// matches the active driver at runtime.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
