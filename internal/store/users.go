package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/izposoja/internal/model"
)

const userColumns = `id, name, email, created_at, deleted_at`

// Users persists requesters.
type Users struct {
	db *sqlx.DB
}

var _ Repository[model.User] = (*Users)(nil)

// NewUsers returns a user store backed by db.
func NewUsers(db *sqlx.DB) *Users {
	return &Users{db: db}
}

// Get returns a user by ID, including soft-deleted ones.
func (s *Users) Get(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := sqlx.GetContext(ctx, conn(ctx, s.db), u,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// Add creates a new user. An email already used by an active user yields
// ErrConflict.
func (s *Users) Add(ctx context.Context, u *model.User) (int64, error) {
	now := time.Now().UTC()
	result, err := conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO users (name, email, created_at) VALUES (?, ?, ?)`,
		u.Name, u.Email, now,
	)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("creating user %q: %w", u.Email, ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting user id: %w", err)
	}

	u.ID = id
	u.CreatedAt = now
	return id, nil
}

// Update changes a user's name and email.
func (s *Users) Update(ctx context.Context, u *model.User) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET name = ?, email = ? WHERE id = ? AND deleted_at IS NULL`,
		u.Name, u.Email, u.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("updating user %q: %w", u.Email, ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// Delete soft-deletes a user.
func (s *Users) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// QueryAll returns the non-deleted users accepted by match.
func (s *Users) QueryAll(ctx context.Context, match func(*model.User) bool) ([]model.User, error) {
	var users []model.User
	err := sqlx.SelectContext(ctx, conn(ctx, s.db), &users,
		`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return filter(users, match), nil
}
