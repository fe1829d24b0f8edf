package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    deleted_at DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id             INTEGER PRIMARY KEY,
    title          TEXT NOT NULL,
    author         TEXT NOT NULL DEFAULT '',
    isbn           TEXT NOT NULL DEFAULT '',
    genre          TEXT NOT NULL DEFAULT '',
    is_checked_out INTEGER NOT NULL DEFAULT 0 CHECK (is_checked_out IN (0, 1)),
    cover          BLOB,
    cover_mime     TEXT NOT NULL DEFAULT '',
    created_at     DATETIME NOT NULL,
    updated_at     DATETIME NOT NULL,
    deleted_at     DATETIME
);

CREATE TABLE IF NOT EXISTS rentals (
    id              INTEGER PRIMARY KEY,
    item_id         INTEGER NOT NULL REFERENCES items(id),
    user_id         INTEGER NOT NULL REFERENCES users(id),
    checked_out_at  DATETIME NOT NULL,
    due_at          DATETIME NOT NULL,
    returned_at     DATETIME,
    extension_count INTEGER NOT NULL DEFAULT 0 CHECK (extension_count BETWEEN 0 AND 2)
);

-- At most one open rental per item.
CREATE UNIQUE INDEX IF NOT EXISTS idx_rentals_item_open
    ON rentals(item_id) WHERE returned_at IS NULL;

CREATE INDEX IF NOT EXISTS idx_rentals_user ON rentals(user_id);

CREATE TABLE IF NOT EXISTS waiting_list (
    id           INTEGER PRIMARY KEY,
    item_id      INTEGER NOT NULL REFERENCES items(id),
    user_id      INTEGER NOT NULL REFERENCES users(id),
    requested_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_waiting_list_item ON waiting_list(item_id, requested_at, id);

CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY,
    kind       TEXT NOT NULL CHECK (kind IN ('overdue', 'available')),
    recipient  TEXT NOT NULL,
    item_title TEXT NOT NULL,
    message    TEXT NOT NULL,
    sent_at    DATETIME NOT NULL,
    error      TEXT NOT NULL DEFAULT ''
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
