package model

import "time"

// Notification kinds.
const (
	NotificationOverdue   = "overdue"
	NotificationAvailable = "available"
)

// Notification is a journal record of one notification attempt.
type Notification struct {
	ID        int64     `json:"id" db:"id"`
	Kind      string    `json:"kind" db:"kind"`
	Recipient string    `json:"recipient" db:"recipient"`
	ItemTitle string    `json:"item_title" db:"item_title"`
	Message   string    `json:"message" db:"message"`
	SentAt    time.Time `json:"sent_at" db:"sent_at"`
	Error     string    `json:"error,omitempty" db:"error"`
}
