package rental

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/izposoja/internal/clock"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// RentalRepository is the rental store the ledger needs.
type RentalRepository interface {
	store.Repository[model.Rental]
	List(ctx context.Context, f store.RentalFilter) ([]model.Rental, error)
}

// Ledger owns rental records and their open -> returned transition.
type Ledger struct {
	rentals    RentalRepository
	clock      clock.Clock
	loanPeriod time.Duration
}

// NewLedger returns a ledger that opens rentals for loanPeriod.
func NewLedger(rentals RentalRepository, clk clock.Clock, loanPeriod time.Duration) *Ledger {
	if loanPeriod <= 0 {
		loanPeriod = model.DefaultLoanPeriod
	}
	return &Ledger{rentals: rentals, clock: clk, loanPeriod: loanPeriod}
}

// Open records a new rental of itemID by userID starting now.
func (l *Ledger) Open(ctx context.Context, itemID, userID int64) (*model.Rental, error) {
	now := l.clock.Now()
	r := &model.Rental{
		ItemID:       itemID,
		UserID:       userID,
		CheckedOutAt: now,
		DueAt:        now.Add(l.loanPeriod),
	}
	if _, err := l.rentals.Add(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns a rental or ErrNotFound.
func (l *Ledger) Get(ctx context.Context, id int64) (*model.Rental, error) {
	r, err := l.rentals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("rental %d: %w", id, ErrNotFound)
	}
	return r, nil
}

// Close marks an open rental returned. A rental that is already returned is
// reported as ErrNotFound.
func (l *Ledger) Close(ctx context.Context, id int64) (*model.Rental, error) {
	r, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Open() {
		return nil, fmt.Errorf("rental %d already returned: %w", id, ErrNotFound)
	}

	now := l.clock.Now()
	r.ReturnedAt = &now
	if err := l.rentals.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Extend pushes an open rental's due date back by days, at most
// model.MaxExtensionDays at a time.
func (l *Ledger) Extend(ctx context.Context, id int64, days int) (*model.Rental, error) {
	if days <= 0 || days > model.MaxExtensionDays {
		return nil, fmt.Errorf("extension of %d days: %w", days, ErrInvalidInput)
	}

	r, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.Open() {
		return nil, fmt.Errorf("rental %d already returned: %w", id, ErrNotFound)
	}
	if !r.CanExtend() {
		return nil, fmt.Errorf("rental %d extended %d times: %w", id, r.ExtensionCount, ErrExtensionLimitExceeded)
	}

	r.DueAt = r.DueAt.AddDate(0, 0, days)
	r.ExtensionCount++
	if err := l.rentals.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// History returns all rentals of a user, oldest first.
func (l *Ledger) History(ctx context.Context, userID int64) ([]model.Rental, error) {
	return l.rentals.List(ctx, store.RentalFilter{UserID: userID})
}

// Overdue returns open rentals whose due date has passed.
func (l *Ledger) Overdue(ctx context.Context) ([]model.Rental, error) {
	now := l.clock.Now()
	return l.rentals.QueryAll(ctx, func(r *model.Rental) bool {
		return r.IsOverdue(now)
	})
}
