// Package db owns the shared connection pool and the thin SQL execution layer
// the repositories run on: hook dispatch, unified error mapping, connection
// checkout and nullable column coercion. All SQL stays explicit.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Config
// ─────────────────────────────────────────────────────────────────────────────

// Config holds all options for opening and managing the connection pool.
type Config struct {
	// DSN is the driver-specific data-source name.
	DSN string

	// DriverName is "mysql" or "sqlite3".
	DriverName string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// AcquireTimeout bounds how long Acquire waits for a free connection.
	// Zero means wait until one frees up or the caller's context ends.
	AcquireTimeout time.Duration

	// Hooks executed around every statement. Nil entries are skipped.
	Hooks []Hook
}

// probeTimeout bounds the connectivity check performed by Open.
const probeTimeout = 5 * time.Second

// ─────────────────────────────────────────────────────────────────────────────
// DB: the process-wide pool
// ─────────────────────────────────────────────────────────────────────────────

// DB is a concurrency-safe wrapper around *sql.DB. One DB is created at
// startup and handed to every request; it is never recreated.
type DB struct {
	sqldb  *sql.DB
	cfg    Config
	hooks  hookChain
	errMap ErrorMapper
}

// Open opens the pool described by cfg and verifies connectivity with a
// round-trip SELECT 1 before returning. A DB that fails the probe is closed.
func Open(cfg Config) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db: DSN must not be empty")
	}
	if cfg.DriverName == "" {
		return nil, fmt.Errorf("db: DriverName must not be empty")
	}

	sqldb, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	// Pool tuning
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqldb.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	d := &DB{
		sqldb:  sqldb,
		cfg:    cfg,
		hooks:  newHookChain(cfg.Hooks),
		errMap: DefaultErrorMapper(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	var one int
	if err := sqldb.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("db: connectivity probe: %w", err)
	}

	return d, nil
}

// SetErrorMapper replaces the default error mapper.
func (d *DB) SetErrorMapper(m ErrorMapper) { d.errMap = m }

// Close closes all pooled connections. Safe to call multiple times.
func (d *DB) Close() error { return d.sqldb.Close() }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.mapErr(d.sqldb.PingContext(ctx))
}

// Stats returns pool statistics for monitoring.
func (d *DB) Stats() sql.DBStats { return d.sqldb.Stats() }

// Acquire checks out one connection for exclusive use. The caller must
// Close it to hand it back. Failure to obtain a connection is reported as
// ErrConnectionFailed (or ErrTimeout when AcquireTimeout elapsed).
func (d *DB) Acquire(ctx context.Context) (*Conn, error) {
	if d.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.AcquireTimeout)
		defer cancel()
	}

	c, err := d.sqldb.Conn(ctx)
	if err != nil {
		mapped := d.mapErr(err)
		if IsTimeout(mapped) || IsConnectionFailed(mapped) {
			return nil, mapped
		}
		return nil, &DBError{Sentinel: ErrConnectionFailed, Cause: err, Message: "acquire"}
	}
	return &Conn{sqlconn: c, hooks: d.hooks, errMap: d.errMap}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Query execution helpers
// ─────────────────────────────────────────────────────────────────────────────

// Exec executes a statement that returns no rows (INSERT, UPDATE, DELETE, DDL).
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a query that returns rows.
// The caller MUST close the returned *sql.Rows.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	err = d.mapErr(err)
	d.hooks.After(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow executes a query expected to return at most one row.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	d.hooks.Before(ctx, query, args)
	raw := d.sqldb.QueryRowContext(ctx, query, args...)
	d.hooks.After(ctx, query, args, time.Since(start), nil) // err unknown until Scan
	return &Row{raw: raw, errMap: d.errMap}
}

func (d *DB) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return d.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Conn: one connection checked out of the pool
// ─────────────────────────────────────────────────────────────────────────────

// Conn is a single pooled connection owned by one caller at a time. It must
// not be shared between goroutines.
type Conn struct {
	sqlconn *sql.Conn
	hooks   hookChain
	errMap  ErrorMapper
}

// Close returns the connection to the pool.
func (c *Conn) Close() error { return c.sqlconn.Close() }

// Exec executes a statement that does not return rows.
func (c *Conn) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	c.hooks.Before(ctx, query, args)
	res, err := c.sqlconn.ExecContext(ctx, query, args...)
	err = c.mapErr(err)
	c.hooks.After(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a query returning rows. The caller MUST close *sql.Rows.
func (c *Conn) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	c.hooks.Before(ctx, query, args)
	rows, err := c.sqlconn.QueryContext(ctx, query, args...)
	err = c.mapErr(err)
	c.hooks.After(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow executes a query expected to return at most one row.
func (c *Conn) QueryRow(ctx context.Context, query string, args ...any) *Row {
	start := time.Now()
	c.hooks.Before(ctx, query, args)
	raw := c.sqlconn.QueryRowContext(ctx, query, args...)
	c.hooks.After(ctx, query, args, time.Since(start), nil)
	return &Row{raw: raw, errMap: c.errMap}
}

func (c *Conn) mapErr(err error) error {
	if err == nil {
		return nil
	}
	return c.errMap.Map(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Querier: the shared interface accepted by repositories
// ─────────────────────────────────────────────────────────────────────────────

// Querier is the minimal interface shared by *DB and *Conn. Repositories
// accept a Querier so a handler can run several statements on one borrowed
// connection.
type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *Row
}

var (
	_ Querier = (*DB)(nil)
	_ Querier = (*Conn)(nil)
)

// ─────────────────────────────────────────────────────────────────────────────
// Row: wraps *sql.Row to translate errors uniformly
// ─────────────────────────────────────────────────────────────────────────────

// Row wraps *sql.Row and maps errors through the unified error mapper.
type Row struct {
	raw    *sql.Row
	errMap ErrorMapper
}

// Scan copies columns from the matched row into dest values.
// ErrNotFound is returned when no row was found.
func (r *Row) Scan(dest ...any) error {
	err := r.raw.Scan(dest...)
	if err == nil {
		return nil
	}
	return r.errMap.Map(err)
}
