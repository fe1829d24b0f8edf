package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Repository is the keyed persistence contract every entity store implements.
// Get returns (nil, nil) when no row has the given ID.
type Repository[T any] interface {
	Get(ctx context.Context, id int64) (*T, error)
	Add(ctx context.Context, entity *T) (int64, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id int64) error
	QueryAll(ctx context.Context, match func(*T) bool) ([]T, error)
}

// ErrConflict is returned when a write violates a uniqueness constraint.
var ErrConflict = errors.New("conflicting record exists")

type txKey struct{}

// WithTx runs fn inside a transaction. Store calls made with the context
// passed to fn join the transaction. Nested calls reuse the outer one.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Transactor binds WithTx to db.
func Transactor(db *sqlx.DB) func(ctx context.Context, fn func(ctx context.Context) error) error {
	return func(ctx context.Context, fn func(ctx context.Context) error) error {
		return WithTx(ctx, db, fn)
	}
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// Extended codes disabled: fall back to the message.
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

// filter applies match to rows, keeping those it accepts.
func filter[T any](rows []T, match func(*T) bool) []T {
	if match == nil {
		return rows
	}
	out := rows[:0]
	for i := range rows {
		if match(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
