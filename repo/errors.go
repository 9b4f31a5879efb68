package repo

import (
	"errors"
	"fmt"

	"github.com/Skryldev/disposition-api/db"
)

var (
	// ErrEmailExists is returned when a create or update would give two users
	// the same email. It matches db.ErrDuplicateKey as well.
	ErrEmailExists = fmt.Errorf("%w: email already exists", db.ErrDuplicateKey)

	// ErrInvalidSymbol is returned when a disposition symbol is not a base-10
	// integer. The wrapping error carries the offending text.
	ErrInvalidSymbol = errors.New("repo: invalid symbol format")

	// ErrReadBack is returned when a row that was just written cannot be read
	// again. It points at the storage layer, not at the caller.
	ErrReadBack = errors.New("repo: failed to retrieve newly created record")
)

// emailConflict rewrites duplicate-key failures on the user table into
// ErrEmailExists, keeping the driver error reachable.
func emailConflict(err error) error {
	if db.IsDuplicateKey(err) {
		return fmt.Errorf("%w (%w)", ErrEmailExists, err)
	}
	return err
}
