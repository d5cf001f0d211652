package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "modernc.org/sqlite"
)

//go:embed sqlite_migrations/*.sql
var sqliteMigrations embed.FS

// OpenSQLite opens (creating if needed) a SQLite database file and applies
// the schema. SQLite allows one writer at a time, so the pool is kept to a
// single connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is not set")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}

	files, err := migrationFiles(sqliteMigrations, "sqlite_migrations")
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, name := range files {
		migrationSQL, err := sqliteMigrations.ReadFile(name)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(migrationSQL)); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	return db, nil
}
