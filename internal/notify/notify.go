// Package notify delivers overdue and availability notices to requesters.
// Delivery is best effort: callers log failures and move on.
package notify

import (
	"context"
	"fmt"

	"github.com/erazemk/izposoja/internal/model"
)

// Notifier sends notices to a requester's contact address.
type Notifier interface {
	NotifyOverdue(ctx context.Context, recipient, itemTitle string) error
	NotifyAvailable(ctx context.Context, recipient, itemTitle string) error
}

// TransportError is returned when a notice could not be handed to the
// transport.
type TransportError struct {
	Kind      string
	Recipient string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sending %s notice to %s: %v", e.Kind, e.Recipient, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Compose returns the subject and plain-text body for a notice.
func Compose(kind, itemTitle string) (subject, body string) {
	switch kind {
	case model.NotificationOverdue:
		return "Overdue item",
			fmt.Sprintf("Your rental of '%s' is overdue. Please return it as soon as possible.", itemTitle)
	case model.NotificationAvailable:
		return "Item available",
			fmt.Sprintf("'%s' is now available. Rent it before someone else does.", itemTitle)
	}
	return "Notice", itemTitle
}
