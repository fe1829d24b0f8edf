package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/izposoja/internal/model"
)

// Notifications is the journal of notification attempts.
type Notifications struct {
	db *sqlx.DB
}

// NewNotifications returns a notification journal backed by db.
func NewNotifications(db *sqlx.DB) *Notifications {
	return &Notifications{db: db}
}

// Add records a notification attempt.
func (s *Notifications) Add(ctx context.Context, n *model.Notification) (int64, error) {
	result, err := conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO notifications (kind, recipient, item_title, message, sent_at, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.Kind, n.Recipient, n.ItemTitle, n.Message, n.SentAt, n.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("recording notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting notification id: %w", err)
	}
	n.ID = id
	return id, nil
}

// List returns the most recent notifications, newest first. A limit of zero
// or less returns all of them.
func (s *Notifications) List(ctx context.Context, limit int) ([]model.Notification, error) {
	query := `SELECT id, kind, recipient, item_title, message, sent_at, error
	          FROM notifications ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var notifications []model.Notification
	if err := sqlx.SelectContext(ctx, conn(ctx, s.db), &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}
