package kaduu

import (
	"embed"
	"io/fs"
)

// migrationsFS holds the token store schema for postgres, with the sqlite
// variants under data/sql/migrations/sqlite.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

func GetMigrationsFS() fs.FS {
	return migrationsFS
}

// GetCoreMigrationsFS returns the schema required by the SQL token store.
func GetCoreMigrationsFS() fs.FS {
	return migrationsFS
}
