package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// OpenDatabase opens a bun handle for the given DSN, picking the SQL driver
// and dialect from its scheme. postgres:// and postgresql:// DSNs use the
// Postgres driver; anything else is treated as a SQLite path, so local file
// paths and file::memory: DSNs work without extra configuration.
func OpenDatabase(dsn string) (*bun.DB, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, fmt.Errorf("storage: database DSN is required")
	}
	if strings.HasPrefix(trimmed, "postgres://") || strings.HasPrefix(trimmed, "postgresql://") {
		sqldb, err := sql.Open("postgres", trimmed)
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres database: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	sqldb, err := sql.Open("sqlite3", trimmed)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite database: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
