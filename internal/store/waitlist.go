package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/izposoja/internal/model"
)

const waitlistColumns = `id, item_id, user_id, requested_at`

// WaitingList persists waiting list entries.
type WaitingList struct {
	db *sqlx.DB
}

var _ Repository[model.WaitingListEntry] = (*WaitingList)(nil)

// NewWaitingList returns a waiting list store backed by db.
func NewWaitingList(db *sqlx.DB) *WaitingList {
	return &WaitingList{db: db}
}

// Get returns an entry by ID.
func (s *WaitingList) Get(ctx context.Context, id int64) (*model.WaitingListEntry, error) {
	e := &model.WaitingListEntry{}
	err := sqlx.GetContext(ctx, conn(ctx, s.db), e,
		`SELECT `+waitlistColumns+` FROM waiting_list WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting waiting list entry: %w", err)
	}
	return e, nil
}

// Add appends an entry.
func (s *WaitingList) Add(ctx context.Context, e *model.WaitingListEntry) (int64, error) {
	result, err := conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO waiting_list (item_id, user_id, requested_at) VALUES (?, ?, ?)`,
		e.ItemID, e.UserID, e.RequestedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("adding waiting list entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting waiting list entry id: %w", err)
	}
	e.ID = id
	return id, nil
}

// Update rewrites an entry's request time.
func (s *WaitingList) Update(ctx context.Context, e *model.WaitingListEntry) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE waiting_list SET requested_at = ? WHERE id = ?`,
		e.RequestedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating waiting list entry: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (s *WaitingList) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM waiting_list WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting waiting list entry: %w", err)
	}
	return nil
}

// QueryAll returns every entry accepted by match, in insertion order.
func (s *WaitingList) QueryAll(ctx context.Context, match func(*model.WaitingListEntry) bool) ([]model.WaitingListEntry, error) {
	var entries []model.WaitingListEntry
	err := sqlx.SelectContext(ctx, conn(ctx, s.db), &entries,
		`SELECT `+waitlistColumns+` FROM waiting_list ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing waiting list: %w", err)
	}
	return filter(entries, match), nil
}
