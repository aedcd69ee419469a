package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

func init() {
	// modernc's driver registers as "sqlite", which sqlx does not know a
	// bindvar type for out of the box.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewSQLXSQLiteDB opens (creating if absent) the single-file SQLite store at
// path.
func NewSQLXSQLiteDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}

	// The driver serializes access; a single connection avoids SQLITE_BUSY
	// under concurrent writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return db, nil
}
