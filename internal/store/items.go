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

const itemColumns = `id, title, author, isbn, genre, is_checked_out, cover_mime, created_at, updated_at, deleted_at`

// Items persists catalog items.
type Items struct {
	db *sqlx.DB
}

var _ Repository[model.Item] = (*Items)(nil)

// NewItems returns an item store backed by db.
func NewItems(db *sqlx.DB) *Items {
	return &Items{db: db}
}

// Get returns an item by ID, including soft-deleted ones.
func (s *Items) Get(ctx context.Context, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := sqlx.GetContext(ctx, conn(ctx, s.db), item,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// Add creates a new item and sets its ID and timestamps.
func (s *Items) Add(ctx context.Context, item *model.Item) (int64, error) {
	now := time.Now().UTC()
	result, err := conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO items (title, author, isbn, genre, is_checked_out, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Title, item.Author, item.ISBN, item.Genre, item.IsCheckedOut, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return id, nil
}

// Update writes every mutable column of item, including the availability
// flag. Only the rental coordinator calls it; catalog edits go through
// UpdateDetails.
func (s *Items) Update(ctx context.Context, item *model.Item) error {
	now := time.Now().UTC()
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE items SET title = ?, author = ?, isbn = ?, genre = ?, is_checked_out = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		item.Title, item.Author, item.ISBN, item.Genre, item.IsCheckedOut, now, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	item.UpdatedAt = now
	return nil
}

// UpdateDetails updates an item's catalog metadata and leaves availability alone.
func (s *Items) UpdateDetails(ctx context.Context, id int64, title, author, isbn, genre string) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE items SET title = ?, author = ?, isbn = ?, genre = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		title, author, isbn, genre, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating item details: %w", err)
	}
	return nil
}

// Delete soft-deletes an item. Rental history keeps referencing it.
func (s *Items) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE items SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// QueryAll returns the non-deleted items accepted by match, ordered by title.
func (s *Items) QueryAll(ctx context.Context, match func(*model.Item) bool) ([]model.Item, error) {
	var items []model.Item
	err := sqlx.SelectContext(ctx, conn(ctx, s.db), &items,
		`SELECT `+itemColumns+` FROM items WHERE deleted_at IS NULL ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return filter(items, match), nil
}

// SetCover stores an item's cover image.
func (s *Items) SetCover(ctx context.Context, id int64, image []byte, mime string) error {
	_, err := conn(ctx, s.db).ExecContext(ctx,
		`UPDATE items SET cover = ?, cover_mime = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("setting item cover: %w", err)
	}
	return nil
}

// GetCover returns an item's cover image and MIME type.
func (s *Items) GetCover(ctx context.Context, id int64) ([]byte, string, error) {
	var row struct {
		Cover []byte `db:"cover"`
		Mime  string `db:"cover_mime"`
	}
	err := sqlx.GetContext(ctx, conn(ctx, s.db), &row,
		`SELECT cover, cover_mime FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item cover: %w", err)
	}
	return row.Cover, row.Mime, nil
}
