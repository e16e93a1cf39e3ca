package migrations

import "embed"

// FS embeds the SQL migrations of every supported database, one directory
// per driver. The golang-migrate iofs source reads them from here.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Version is the schema version the service expects.
const Version = 1

// Directories inside FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
