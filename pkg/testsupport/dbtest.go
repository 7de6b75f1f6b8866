package testsupport

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}

// NewSQLiteBunDB wraps an in-memory SQLite handle with a bun dialect so
// repository tests can exercise the real persistence path.
func NewSQLiteBunDB() (*bun.DB, error) {
	sqldb, err := NewSQLiteMemoryDB()
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
