package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/izposoja/internal/model"
)

const rentalColumns = `id, item_id, user_id, checked_out_at, due_at, returned_at, extension_count`

// ErrRentalHistory is returned when deleting a rental. Rentals are history.
var ErrRentalHistory = errors.New("rentals cannot be deleted")

var sqliteDialect = goqu.Dialect("sqlite3")

// RentalFilter narrows a rental listing. Zero values match everything.
type RentalFilter struct {
	ItemID   int64
	UserID   int64
	OpenOnly bool
}

// Rentals persists rental records.
type Rentals struct {
	db *sqlx.DB
}

var _ Repository[model.Rental] = (*Rentals)(nil)

// NewRentals returns a rental store backed by db.
func NewRentals(db *sqlx.DB) *Rentals {
	return &Rentals{db: db}
}

// Get returns a rental by ID.
func (s *Rentals) Get(ctx context.Context, id int64) (*model.Rental, error) {
	r := &model.Rental{}
	err := sqlx.GetContext(ctx, conn(ctx, s.db), r,
		`SELECT `+rentalColumns+` FROM rentals WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting rental: %w", err)
	}
	return r, nil
}

// Add records a new rental. A second open rental for the same item yields
// ErrConflict.
func (s *Rentals) Add(ctx context.Context, r *model.Rental) (int64, error) {
	result, err := conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO rentals (item_id, user_id, checked_out_at, due_at, returned_at, extension_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ItemID, r.UserID, r.CheckedOutAt, r.DueAt, r.ReturnedAt, r.ExtensionCount,
	)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("recording rental of item %d: %w", r.ItemID, ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("recording rental: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting rental id: %w", err)
	}
	r.ID = id
	return id, nil
}

// Update writes the mutable rental columns: due date, return time and
// extension count.
func (s *Rentals) Update(ctx context.Context, r *model.Rental) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE rentals SET due_at = ?, returned_at = ?, extension_count = ? WHERE id = ?`,
		r.DueAt, r.ReturnedAt, r.ExtensionCount, r.ID,
	)
	if err != nil {
		return fmt.Errorf("updating rental: %w", err)
	}
	return nil
}

// Delete always fails: closed rentals are kept as history.
func (s *Rentals) Delete(ctx context.Context, id int64) error {
	return fmt.Errorf("deleting rental %d: %w", id, ErrRentalHistory)
}

// QueryAll returns every rental accepted by match.
func (s *Rentals) QueryAll(ctx context.Context, match func(*model.Rental) bool) ([]model.Rental, error) {
	rentals, err := s.List(ctx, RentalFilter{})
	if err != nil {
		return nil, err
	}
	return filter(rentals, match), nil
}

// List returns rentals matching f, oldest checkout first.
func (s *Rentals) List(ctx context.Context, f RentalFilter) ([]model.Rental, error) {
	ds := sqliteDialect.From("rentals").
		Select("id", "item_id", "user_id", "checked_out_at", "due_at", "returned_at", "extension_count").
		Order(goqu.C("checked_out_at").Asc(), goqu.C("id").Asc())

	if f.ItemID > 0 {
		ds = ds.Where(goqu.C("item_id").Eq(f.ItemID))
	}
	if f.UserID > 0 {
		ds = ds.Where(goqu.C("user_id").Eq(f.UserID))
	}
	if f.OpenOnly {
		ds = ds.Where(goqu.C("returned_at").IsNull())
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building rental query: %w", err)
	}

	var rentals []model.Rental
	if err := sqlx.SelectContext(ctx, conn(ctx, s.db), &rentals, query, args...); err != nil {
		return nil, fmt.Errorf("listing rentals: %w", err)
	}
	return rentals, nil
}
