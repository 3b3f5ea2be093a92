// Package migrations embeds SQL migration files for use at runtime.
// Migrations are embedded so they work regardless of working directory.
package migrations

import "embed"

// FS is the embedded migrations filesystem. Each supported dialect keeps its
// files in its own directory (postgres/, sqlite/), applied in name order.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
