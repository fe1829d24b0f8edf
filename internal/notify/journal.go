package notify

import (
	"context"
	"log/slog"

	"github.com/erazemk/izposoja/internal/clock"
	"github.com/erazemk/izposoja/internal/model"
)

// Recorder stores notification attempts.
type Recorder interface {
	Add(ctx context.Context, n *model.Notification) (int64, error)
}

// Journal records every notice it forwards, successful or not.
type Journal struct {
	next     Notifier
	recorder Recorder
	clock    clock.Clock
}

// NewJournal wraps next so each attempt is recorded.
func NewJournal(next Notifier, recorder Recorder, clk clock.Clock) *Journal {
	return &Journal{next: next, recorder: recorder, clock: clk}
}

func (j *Journal) NotifyOverdue(ctx context.Context, recipient, itemTitle string) error {
	err := j.next.NotifyOverdue(ctx, recipient, itemTitle)
	j.record(ctx, model.NotificationOverdue, recipient, itemTitle, err)
	return err
}

func (j *Journal) NotifyAvailable(ctx context.Context, recipient, itemTitle string) error {
	err := j.next.NotifyAvailable(ctx, recipient, itemTitle)
	j.record(ctx, model.NotificationAvailable, recipient, itemTitle, err)
	return err
}

func (j *Journal) record(ctx context.Context, kind, recipient, itemTitle string, sendErr error) {
	_, body := Compose(kind, itemTitle)
	n := &model.Notification{
		Kind:      kind,
		Recipient: recipient,
		ItemTitle: itemTitle,
		Message:   body,
		SentAt:    j.clock.Now(),
	}
	if sendErr != nil {
		n.Error = sendErr.Error()
	}
	if _, err := j.recorder.Add(ctx, n); err != nil {
		slog.Warn("failed to record notification", "kind", kind, "recipient", recipient, "error", err)
	}
}
