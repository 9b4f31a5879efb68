// Package dbtest opens throwaway in-memory SQLite databases carrying the
// user and s_disposition tables, for tests that need real SQL.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/Skryldev/disposition-api/db"
)

// Schema mirrors the MySQL tables closely enough for the repositories: same
// column names, same nullability, email unique, no key on symbol.
const Schema = `
CREATE TABLE IF NOT EXISTS ` + "`user`" + ` (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS s_disposition (
	stock_date DATE,
	market     TEXT NOT NULL,
	symbol     INTEGER NOT NULL,
	name       TEXT NOT NULL,
	` + "`start`" + `    DATE,
	` + "`end`" + `      DATE,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// DSN returns a DSN for a fresh, uniquely named shared-cache memory database.
// Every connection of the pool sees the same data.
func DSN() string {
	return "file:" + uuid.NewString() + "?mode=memory&cache=shared"
}

// Open returns a migrated DB closed automatically at the end of the test.
func Open(t testing.TB, hooks ...db.Hook) *db.DB {
	t.Helper()

	d, err := db.Open(db.Config{
		DSN:        DSN(),
		DriverName: "sqlite3",
		Hooks:      hooks,
	})
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { _ = d.Close() })

	_, err = d.Exec(context.Background(), Schema)
	require.NoError(t, err, "create schema")
	return d
}

// Acquire checks out a connection released at the end of the test.
func Acquire(t testing.TB, d *db.DB) *db.Conn {
	t.Helper()

	conn, err := d.Acquire(context.Background())
	require.NoError(t, err, "acquire")
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}
