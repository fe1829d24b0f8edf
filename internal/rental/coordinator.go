// Package rental coordinates item checkouts, returns, extensions, the
// per-item waiting list and the overdue sweep.
package rental

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/izposoja/internal/clock"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/store"
)

// Outcome tells a successful rent apart from a queued request.
type Outcome string

const (
	OutcomeRented Outcome = "rented"
	OutcomeQueued Outcome = "queued"
)

// RentResult is the result of Rent. Rental is set when the item was rented,
// Entry when the requester was put on the waiting list.
type RentResult struct {
	Outcome Outcome                 `json:"outcome"`
	Rental  *model.Rental           `json:"rental,omitempty"`
	Entry   *model.WaitingListEntry `json:"entry,omitempty"`
}

// TxFunc runs fn in a transaction. Store calls made with the context passed
// to fn take part in it.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// Stores groups the persistence the coordinator works with.
type Stores struct {
	Items   store.Repository[model.Item]
	Users   store.Repository[model.User]
	Rentals RentalRepository
	Waiting store.Repository[model.WaitingListEntry]
	Tx      TxFunc
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLoanPeriod sets the time between checkout and the initial due date.
func WithLoanPeriod(d time.Duration) Option {
	return func(c *Coordinator) {
		c.loanPeriod = d
	}
}

// Coordinator is the only writer of item availability. It keeps the ledger,
// the queue and the item flags consistent.
type Coordinator struct {
	items      store.Repository[model.Item]
	users      store.Repository[model.User]
	ledger     *Ledger
	queue      *Queue
	tx         TxFunc
	clock      clock.Clock
	loanPeriod time.Duration

	itemLocks   keyedMutex
	rentalLocks keyedMutex
}

// NewCoordinator wires a coordinator over s. Notices go through notifier.
func NewCoordinator(s Stores, notifier notify.Notifier, clk clock.Clock, opts ...Option) *Coordinator {
	c := &Coordinator{
		items:      s.Items,
		users:      s.Users,
		tx:         s.Tx,
		clock:      clk,
		loanPeriod: model.DefaultLoanPeriod,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tx == nil {
		c.tx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	c.ledger = NewLedger(s.Rentals, clk, c.loanPeriod)
	c.queue = NewQueue(s.Waiting, s.Items, s.Users, notifier, clk)
	return c
}

// Rent checks itemID out to userID. A checked out item puts the requester on
// the waiting list instead, reported as OutcomeQueued.
func (c *Coordinator) Rent(ctx context.Context, userID, itemID int64) (*RentResult, error) {
	if err := c.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	unlock := c.itemLocks.Lock(itemID)
	defer unlock()

	var result *RentResult
	err := c.tx(ctx, func(ctx context.Context) error {
		item, err := c.activeItem(ctx, itemID)
		if err != nil {
			return err
		}

		if !item.Available() {
			entry, err := c.queue.Enqueue(ctx, itemID, userID)
			if err != nil {
				return fmt.Errorf("queueing request: %w", err)
			}
			result = &RentResult{Outcome: OutcomeQueued, Entry: entry}
			return nil
		}

		item.IsCheckedOut = true
		if err := c.items.Update(ctx, item); err != nil {
			return err
		}

		r, err := c.ledger.Open(ctx, itemID, userID)
		if err != nil {
			return fmt.Errorf("opening rental: %w", err)
		}

		if _, err := c.queue.RemoveEntry(ctx, itemID, userID); err != nil {
			return fmt.Errorf("clearing waiting list entry: %w", err)
		}

		result = &RentResult{Outcome: OutcomeRented, Rental: r}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch result.Outcome {
	case OutcomeRented:
		slog.Info("item rented", "item_id", itemID, "user_id", userID, "rental_id", result.Rental.ID, "due_at", result.Rental.DueAt)
	case OutcomeQueued:
		slog.Info("item unavailable, request queued", "item_id", itemID, "user_id", userID, "entry_id", result.Entry.ID)
	}
	return result, nil
}

// ReturnItem closes an open rental and frees its item. The first requester on
// the item's waiting list is then notified. A rental that was already
// returned is reported as ErrNotFound.
func (c *Coordinator) ReturnItem(ctx context.Context, rentalID int64) (*model.Rental, error) {
	r, err := c.ledger.Get(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	unlockItem := c.itemLocks.Lock(r.ItemID)
	defer unlockItem()
	unlockRental := c.rentalLocks.Lock(rentalID)
	defer unlockRental()

	var closed *model.Rental
	err = c.tx(ctx, func(ctx context.Context) error {
		closed, err = c.ledger.Close(ctx, rentalID)
		if err != nil {
			return err
		}

		item, err := c.items.Get(ctx, closed.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("item %d: %w", closed.ItemID, ErrNotFound)
		}
		item.IsCheckedOut = false
		return c.items.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("item returned", "item_id", closed.ItemID, "user_id", closed.UserID, "rental_id", closed.ID)

	// Promotion runs after commit so notices never hold the transaction.
	if _, err := c.queue.PromoteNext(ctx, closed.ItemID); err != nil {
		slog.Error("waiting list promotion failed", "item_id", closed.ItemID, "error", err)
	}

	return closed, nil
}

// ExtendDueDate moves an open rental's due date back by days.
func (c *Coordinator) ExtendDueDate(ctx context.Context, rentalID int64, days int) (*model.Rental, error) {
	if days <= 0 || days > model.MaxExtensionDays {
		return nil, fmt.Errorf("extension of %d days: %w", days, ErrInvalidInput)
	}

	unlock := c.rentalLocks.Lock(rentalID)
	defer unlock()

	r, err := c.ledger.Extend(ctx, rentalID, days)
	if err != nil {
		if errors.Is(err, ErrExtensionLimitExceeded) {
			slog.Warn("extension refused", "rental_id", rentalID, "error", err)
		}
		return nil, err
	}

	slog.Info("rental extended", "rental_id", r.ID, "due_at", r.DueAt, "extensions", r.ExtensionCount)
	return r, nil
}

// JoinWaitingList puts userID in line for itemID regardless of whether the
// item is currently checked out.
func (c *Coordinator) JoinWaitingList(ctx context.Context, userID, itemID int64) (*model.WaitingListEntry, error) {
	if err := c.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := c.activeItem(ctx, itemID); err != nil {
		return nil, err
	}

	entry, err := c.queue.Enqueue(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	slog.Info("joined waiting list", "item_id", itemID, "user_id", userID, "entry_id", entry.ID)
	return entry, nil
}

// WaitingList returns the waiting list of itemID, first in line first.
func (c *Coordinator) WaitingList(ctx context.Context, itemID int64) ([]model.WaitingListEntry, error) {
	if _, err := c.activeItem(ctx, itemID); err != nil {
		return nil, err
	}
	return c.queue.Entries(ctx, itemID)
}

// RemoveItem withdraws an item from the catalog. Checked out items stay
// until they are returned.
func (c *Coordinator) RemoveItem(ctx context.Context, itemID int64) error {
	unlock := c.itemLocks.Lock(itemID)
	defer unlock()

	item, err := c.activeItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.IsCheckedOut {
		return fmt.Errorf("item %d: %w", itemID, ErrItemCheckedOut)
	}
	if err := c.items.Delete(ctx, itemID); err != nil {
		return err
	}

	slog.Info("item removed", "item_id", itemID)
	return nil
}

// RentalHistory returns every rental of userID, oldest checkout first.
func (c *Coordinator) RentalHistory(ctx context.Context, userID int64) ([]model.Rental, error) {
	return c.ledger.History(ctx, userID)
}

// OverdueRentals returns the open rentals past their due date.
func (c *Coordinator) OverdueRentals(ctx context.Context) ([]model.Rental, error) {
	return c.ledger.Overdue(ctx)
}

func (c *Coordinator) activeItem(ctx context.Context, itemID int64) (*model.Item, error) {
	item, err := c.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}
	return item, nil
}

func (c *Coordinator) requireUser(ctx context.Context, userID int64) error {
	user, err := c.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.DeletedAt != nil {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	return nil
}
