package model

import (
	"strings"
	"time"
)

// Item is a rentable catalog entry. A catalog item is a single physical copy.
type Item struct {
	ID           int64      `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Author       string     `json:"author,omitempty" db:"author"`
	ISBN         string     `json:"isbn,omitempty" db:"isbn"`
	Genre        string     `json:"genre,omitempty" db:"genre"`
	IsCheckedOut bool       `json:"is_checked_out" db:"is_checked_out"`
	CoverMime    string     `json:"cover_mime,omitempty" db:"cover_mime"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Available reports whether the item can be rented right now.
func (i *Item) Available() bool {
	return !i.IsCheckedOut && i.DeletedAt == nil
}

// Matches reports whether the title contains title and the genre equals
// genre, both ignoring case. Empty terms match any item.
func (i *Item) Matches(title, genre string) bool {
	if title != "" && !strings.Contains(strings.ToLower(i.Title), strings.ToLower(title)) {
		return false
	}
	return genre == "" || strings.EqualFold(i.Genre, genre)
}
