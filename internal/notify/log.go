package notify

import (
	"context"
	"log/slog"

	"github.com/erazemk/izposoja/internal/model"
)

// Log writes notices to the structured log instead of sending them. It is
// used when no mail transport is configured.
type Log struct{}

func (Log) NotifyOverdue(_ context.Context, recipient, itemTitle string) error {
	_, body := Compose(model.NotificationOverdue, itemTitle)
	slog.Info("overdue notice", "recipient", recipient, "item", itemTitle, "body", body)
	return nil
}

func (Log) NotifyAvailable(_ context.Context, recipient, itemTitle string) error {
	_, body := Compose(model.NotificationAvailable, itemTitle)
	slog.Info("availability notice", "recipient", recipient, "item", itemTitle, "body", body)
	return nil
}
