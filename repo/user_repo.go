package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skryldev/disposition-api/db"
	"github.com/Skryldev/disposition-api/models"
)

// ─────────────────────────────────────────────────────────────────────────────
// UserRepository interface: for mocking in tests
// ─────────────────────────────────────────────────────────────────────────────

// UserRepository defines the contract for user persistence operations.
//
// Lookups of a missing id return db.ErrNotFound. Duplicate emails return
// ErrEmailExists.
type UserRepository interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	Update(ctx context.Context, id int64, params models.UpdateUserParams) (*models.User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// userRepo is the production implementation backed by a db.Querier.
type userRepo struct {
	q db.Querier
}

// NewUserRepo returns a UserRepository backed by q, normally the *db.Conn a
// request borrowed from the pool.
func NewUserRepo(q db.Querier) UserRepository {
	return &userRepo{q: q}
}

// ─────────────────────────────────────────────────────────────────────────────
// SQL constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	userTable = "`user`"

	sqlListUsers = `
		SELECT id, name, email, created_at, updated_at
		FROM   ` + userTable

	sqlGetUserByID = sqlListUsers + `
		WHERE  id = ?`

	sqlInsertUser = `
		INSERT INTO ` + userTable + ` (name, email)
		VALUES (?, ?)`

	sqlDeleteUser = `
		DELETE FROM ` + userTable + ` WHERE id = ?`
)

// GetAll returns every user in storage order.
func (r *userRepo) GetAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, sqlListUsers)
	if err != nil {
		return nil, fmt.Errorf("repo/user: list: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo/user: list: %w", err)
	}
	return users, nil
}

// GetByID returns a single user by primary key.
// Returns db.ErrNotFound when no record matches.
func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.q.QueryRow(ctx, sqlGetUserByID, id))
}

// Create inserts a user and reads it back so the database-assigned id and
// timestamps are populated.
func (r *userRepo) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	res, err := r.q.Exec(ctx, sqlInsertUser, params.Name, params.Email)
	if err != nil {
		return nil, fmt.Errorf("repo/user: insert: %w", emailConflict(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("repo/user: insert id: %w", err)
	}

	u, err := r.GetByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, fmt.Errorf("%w: user %d", ErrReadBack, id)
	}
	return u, err
}

// Update applies a partial update. Only non-nil fields are written, name
// before email. An empty patch runs no UPDATE and returns the current row.
// A missing id yields db.ErrNotFound.
func (r *userRepo) Update(ctx context.Context, id int64, params models.UpdateUserParams) (*models.User, error) {
	if params.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	query, args := buildUpdate(userTable, []assignment{
		field("name", params.Name),
		field("email", params.Email),
	}, "id = ?", id)

	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("repo/user: update: %w", emailConflict(err))
	}
	return r.GetByID(ctx, id)
}

// Delete removes a user by id and reports whether a row was removed.
func (r *userRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.q.Exec(ctx, sqlDeleteUser, id)
	if err != nil {
		return false, fmt.Errorf("repo/user: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("repo/user: delete: %w", err)
	}
	return n > 0, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// scanUser: centralised column mapping
// ─────────────────────────────────────────────────────────────────────────────

// scanner is satisfied by both *db.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanUser scans one user row, coercing the nullable timestamp columns.
func scanUser(s scanner) (*models.User, error) {
	var (
		u                models.User
		created, updated db.Cell
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &created, &updated); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repo/user: scan: %w", err)
	}
	u.CreatedAt = db.CoerceTimestamp(created)
	u.UpdatedAt = db.CoerceTimestamp(updated)
	return &u, nil
}

var _ UserRepository = (*userRepo)(nil)
