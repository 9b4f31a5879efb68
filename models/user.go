package models

import "cloud.google.com/go/civil"

// User represents a row in the "user" table.
// Timestamps are filled in by the database and are nil until it does so.
type User struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	CreatedAt *civil.DateTime `json:"created_at"`
	UpdatedAt *civil.DateTime `json:"updated_at"`
}

// CreateUserParams holds the fields required to create a new user.
// Keeping input types separate from the domain model prevents accidental
// mass-assignment and makes API contracts explicit.
type CreateUserParams struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// UpdateUserParams holds fields that can be updated. All fields are pointers
// so callers only set what needs changing; the repository builds the explicit
// SQL accordingly. A value with every field nil changes nothing.
type UpdateUserParams struct {
	Name  *string `json:"name" binding:"omitnil,min=1"`
	Email *string `json:"email" binding:"omitnil,email"`
}

// IsEmpty reports whether the patch sets no field at all.
func (p UpdateUserParams) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}
