package rental

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/izposoja/internal/clock"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/store"
)

// Queue is the per-item FIFO of requesters waiting for a checked out item.
type Queue struct {
	entries  store.Repository[model.WaitingListEntry]
	items    store.Repository[model.Item]
	users    store.Repository[model.User]
	notifier notify.Notifier
	clock    clock.Clock
}

// NewQueue returns a waiting list queue.
func NewQueue(
	entries store.Repository[model.WaitingListEntry],
	items store.Repository[model.Item],
	users store.Repository[model.User],
	notifier notify.Notifier,
	clk clock.Clock,
) *Queue {
	return &Queue{entries: entries, items: items, users: users, notifier: notifier, clock: clk}
}

// Enqueue appends userID to the waiting list of itemID.
func (q *Queue) Enqueue(ctx context.Context, itemID, userID int64) (*model.WaitingListEntry, error) {
	e := &model.WaitingListEntry{
		ItemID:      itemID,
		UserID:      userID,
		RequestedAt: q.clock.Now(),
	}
	if _, err := q.entries.Add(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Entries returns the waiting list of itemID, first in line first.
func (q *Queue) Entries(ctx context.Context, itemID int64) ([]model.WaitingListEntry, error) {
	entries, err := q.entries.QueryAll(ctx, func(e *model.WaitingListEntry) bool {
		return e.ItemID == itemID
	})
	if err != nil {
		return nil, err
	}
	model.SortFIFO(entries)
	return entries, nil
}

// RemoveEntry deletes the earliest entry of userID for itemID. It reports
// whether an entry was removed.
func (q *Queue) RemoveEntry(ctx context.Context, itemID, userID int64) (bool, error) {
	entries, err := q.Entries(ctx, itemID)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.UserID != userID {
			continue
		}
		if err := q.entries.Delete(ctx, e.ID); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// PromoteNext tells the first requester in line for itemID that the item is
// available and removes their entry. Promotion does not reserve the item.
// Entries of deleted users are dropped on the way. Returns the promoted entry,
// or nil when nobody is waiting.
func (q *Queue) PromoteNext(ctx context.Context, itemID int64) (*model.WaitingListEntry, error) {
	entries, err := q.Entries(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	item, err := q.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrNotFound)
	}

	for _, e := range entries {
		user, err := q.users.Get(ctx, e.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil || user.DeletedAt != nil {
			slog.Warn("dropping waiting list entry of missing user", "entry_id", e.ID, "user_id", e.UserID)
			if err := q.entries.Delete(ctx, e.ID); err != nil {
				return nil, err
			}
			continue
		}

		if err := q.notifier.NotifyAvailable(ctx, user.Email, item.Title); err != nil {
			var transportErr *notify.TransportError
			if !errors.As(err, &transportErr) {
				slog.Error("availability notice failed", "item_id", itemID, "user_id", user.ID, "error", err)
			} else {
				slog.Warn("availability notice not delivered", "item_id", itemID, "user_id", user.ID, "error", err)
			}
		}

		if err := q.entries.Delete(ctx, e.ID); err != nil {
			return nil, err
		}

		slog.Info("waiting list promoted", "item_id", itemID, "user_id", user.ID, "entry_id", e.ID)
		promoted := e
		return &promoted, nil
	}

	return nil, nil
}
