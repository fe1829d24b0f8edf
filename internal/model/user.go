package model

import (
	"fmt"
	"net/mail"
	"time"
)

// User is a requester that rents items and joins waiting lists.
type User struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ValidateEmail checks that addr is a bare email address usable as a
// notification recipient.
func ValidateEmail(addr string) error {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return fmt.Errorf("invalid email address %q", addr)
	}
	if parsed.Address != addr {
		return fmt.Errorf("email must be a bare address, got %q", addr)
	}
	return nil
}
