package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sentinel errors
// ─────────────────────────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("db: record not found")

	// ErrDuplicateKey is returned on unique constraint violations.
	ErrDuplicateKey = errors.New("db: duplicate key")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("db: foreign key violation")

	// ErrDeadlock is returned when the database detects a deadlock.
	ErrDeadlock = errors.New("db: deadlock detected")

	// ErrTimeout is returned when a statement or acquisition exceeds its deadline.
	ErrTimeout = errors.New("db: timeout")

	// ErrConnectionFailed is returned when no connection can be obtained from
	// the pool or the driver cannot reach the server.
	ErrConnectionFailed = errors.New("db: connection failed")

	// ErrInvalidURL is returned when the connection URL is empty or cannot be
	// turned into a driver DSN.
	ErrInvalidURL = errors.New("db: invalid connection url")
)

// ─────────────────────────────────────────────────────────────────────────────
// Error helpers: use errors.Is() for type-safe checks
// ─────────────────────────────────────────────────────────────────────────────

func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsDuplicateKey(err error) bool     { return errors.Is(err, ErrDuplicateKey) }
func IsDeadlock(err error) bool         { return errors.Is(err, ErrDeadlock) }
func IsTimeout(err error) bool          { return errors.Is(err, ErrTimeout) }
func IsConnectionFailed(err error) bool { return errors.Is(err, ErrConnectionFailed) }

// ─────────────────────────────────────────────────────────────────────────────
// DBError: rich error type preserving original driver error
// ─────────────────────────────────────────────────────────────────────────────

// DBError wraps a sentinel error with the original driver error so callers can
// either use errors.Is(err, ErrDuplicateKey) for simple checks or inspect the
// raw driver error for additional context.
type DBError struct {
	// Sentinel is one of the package-level Err* variables.
	Sentinel error
	// Cause is the original driver error.
	Cause error
	// Message is an optional human-readable hint.
	Message string
}

func (e *DBError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Sentinel, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (cause: %v)", e.Sentinel, e.Cause)
}

func (e *DBError) Is(target error) bool { return errors.Is(e.Sentinel, target) }
func (e *DBError) Unwrap() error        { return e.Cause }

// ─────────────────────────────────────────────────────────────────────────────
// ErrorMapper interface: pluggable per driver
// ─────────────────────────────────────────────────────────────────────────────

// ErrorMapper translates raw driver errors into the package's sentinel errors.
type ErrorMapper interface {
	Map(err error) error
}

// ErrorMapperFunc is a convenience adapter from a function to ErrorMapper.
type ErrorMapperFunc func(error) error

func (f ErrorMapperFunc) Map(err error) error { return f(err) }

// DefaultErrorMapper returns a mapper that understands MySQL and SQLite.
func DefaultErrorMapper() ErrorMapper {
	return ErrorMapperFunc(defaultMap)
}

func defaultMap(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &DBError{Sentinel: ErrNotFound, Cause: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &DBError{Sentinel: ErrTimeout, Cause: err}
	}

	// Already mapped, do not double-wrap
	var dbe *DBError
	if errors.As(err, &dbe) {
		return err
	}

	if mapped := mapMySQLError(err); mapped != nil {
		return mapped
	}

	if mapped := mapSQLiteError(err); mapped != nil {
		return mapped
	}

	return err
}

// ─────────────────────────────────────────────────────────────────────────────
// MySQL mapping
// ─────────────────────────────────────────────────────────────────────────────

// duplicateEntryText is the fixed prefix MySQL uses for ER_DUP_ENTRY
// ("Duplicate entry 'a@x.com' for key 'email'").
const duplicateEntryText = "Duplicate entry"

func mapMySQLError(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // ER_DUP_ENTRY
			return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
		case 1452, 1216, 1217: // ER_NO_REFERENCED_ROW, ER_ROW_IS_REFERENCED
			return &DBError{Sentinel: ErrForeignKeyViolation, Cause: err}
		case 1213: // ER_LOCK_DEADLOCK
			return &DBError{Sentinel: ErrDeadlock, Cause: err}
		case 3024: // ER_QUERY_TIMEOUT
			return &DBError{Sentinel: ErrTimeout, Cause: err}
		case 1045, 2002, 2003, 2006, 2013:
			return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
		}
		return nil
	}

	// Proxies and wrapped drivers sometimes flatten the typed error to text.
	if strings.Contains(err.Error(), duplicateEntryText) {
		return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return &DBError{Sentinel: ErrConnectionFailed, Cause: err}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// SQLite mapping (string-based, driver doesn't export typed errors)
// ─────────────────────────────────────────────────────────────────────────────

func mapSQLiteError(err error) error {
	s := err.Error()
	switch {
	case strings.Contains(s, "UNIQUE constraint failed"):
		return &DBError{Sentinel: ErrDuplicateKey, Cause: err}
	case strings.Contains(s, "FOREIGN KEY constraint failed"):
		return &DBError{Sentinel: ErrForeignKeyViolation, Cause: err}
	case strings.Contains(s, "database is locked"):
		return &DBError{Sentinel: ErrDeadlock, Cause: err}
	}
	return nil
}

// ChainMapper returns an ErrorMapper that tries each mapper in order,
// returning the first remapped error.
func ChainMapper(mappers ...ErrorMapper) ErrorMapper {
	return ErrorMapperFunc(func(err error) error {
		if err == nil {
			return nil
		}
		for _, m := range mappers {
			if mapped := m.Map(err); mapped != err {
				return mapped
			}
		}
		return err
	})
}
