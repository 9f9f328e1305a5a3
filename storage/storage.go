// Package storage owns the database handle and schema migrations.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded SQL migrations.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// Connect opens a bun database over the sqlite shim driver.
func Connect(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	// sqlite serializes writers; a single connection avoids busy errors.
	sqldb.SetMaxOpenConns(1)

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// Migrate applies the embedded migrations in lexical order. Each file must be
// idempotent: the schema uses IF NOT EXISTS guards instead of a version
// table.
func Migrate(ctx context.Context, db *bun.DB) error {
	root := "data/sql/migrations"

	entries, err := fs.ReadDir(migrationsFS, root)
	if err != nil {
		return fmt.Errorf("storage: read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := fs.ReadFile(migrationsFS, root+"/"+name)
		if err != nil {
			return fmt.Errorf("storage: read migration %s: %w", name, err)
		}

		if _, err := db.ExecContext(ctx, string(raw)); err != nil {
			return fmt.Errorf("storage: apply migration %s: %w", name, err)
		}
	}

	return nil
}
