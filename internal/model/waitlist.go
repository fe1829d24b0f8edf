package model

import (
	"sort"
	"time"
)

// WaitingListEntry is a pending request for an item that was checked out
// when it was made.
type WaitingListEntry struct {
	ID          int64     `json:"id" db:"id"`
	ItemID      int64     `json:"item_id" db:"item_id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	RequestedAt time.Time `json:"requested_at" db:"requested_at"`
}

// SortFIFO orders entries by request time, oldest first. Entries with equal
// request times keep insertion (ID) order.
func SortFIFO(entries []WaitingListEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.RequestedAt.Equal(b.RequestedAt) {
			return a.RequestedAt.Before(b.RequestedAt)
		}
		return a.ID < b.ID
	})
}
