package model

import "time"

// MaxExtensions is the number of times a rental's due date may be extended.
const MaxExtensions = 2

// MaxExtensionDays bounds a single extension.
const MaxExtensionDays = 365

// DefaultLoanPeriod is the time between checkout and the initial due date.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Rental is one checkout of an item by a user. Closed rentals are kept as
// history and never deleted.
type Rental struct {
	ID             int64      `json:"id" db:"id"`
	ItemID         int64      `json:"item_id" db:"item_id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	CheckedOutAt   time.Time  `json:"checked_out_at" db:"checked_out_at"`
	DueAt          time.Time  `json:"due_at" db:"due_at"`
	ReturnedAt     *time.Time `json:"returned_at,omitempty" db:"returned_at"`
	ExtensionCount int        `json:"extension_count" db:"extension_count"`
}

// Open reports whether the item has not been returned yet.
func (r *Rental) Open() bool {
	return r.ReturnedAt == nil
}

// IsOverdue reports whether the rental is open and past its due date at now.
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.ReturnedAt == nil && now.After(r.DueAt)
}

// CanExtend reports whether another extension is allowed.
func (r *Rental) CanExtend() bool {
	return r.ExtensionCount < MaxExtensions
}
