package rental

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/store"
)

// DefaultSweepInterval is the time between overdue sweeps.
const DefaultSweepInterval = time.Hour

// ErrSweepRunning is returned by RunOnce while another cycle is in progress.
var ErrSweepRunning = errors.New("sweep already running")

// OverdueSource lists overdue rentals. The Coordinator implements it.
type OverdueSource interface {
	OverdueRentals(ctx context.Context) ([]model.Rental, error)
}

// SweepState is the phase of the current sweep cycle.
type SweepState int32

const (
	SweepIdle SweepState = iota
	SweepScanning
	SweepNotifying
)

func (s SweepState) String() string {
	switch s {
	case SweepScanning:
		return "scanning"
	case SweepNotifying:
		return "notifying"
	}
	return "idle"
}

// SweepReport summarizes one sweep cycle.
type SweepReport struct {
	Overdue  int `json:"overdue"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

// Sweep periodically notifies requesters about their overdue rentals. It only
// reads rentals and never changes them.
type Sweep struct {
	source   OverdueSource
	items    store.Repository[model.Item]
	users    store.Repository[model.User]
	notifier notify.Notifier
	interval time.Duration

	running sync.Mutex
	state   atomic.Int32
}

// NewSweep returns a sweep that runs every interval.
func NewSweep(
	source OverdueSource,
	items store.Repository[model.Item],
	users store.Repository[model.User],
	notifier notify.Notifier,
	interval time.Duration,
) *Sweep {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweep{
		source:   source,
		items:    items,
		users:    users,
		notifier: notifier,
		interval: interval,
	}
}

// State returns the phase the sweep is in.
func (s *Sweep) State() SweepState {
	return SweepState(s.state.Load())
}

// Run sweeps immediately and then every interval until ctx is cancelled.
// A failed cycle is logged and the next one still runs.
func (s *Sweep) Run(ctx context.Context) error {
	slog.Info("overdue sweep started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Error("overdue sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("overdue sweep stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single cycle. A notice that fails for one rental is
// logged and counted, and the cycle moves on to the next rental. Deleted
// requesters are not notified and count as failed.
func (s *Sweep) RunOnce(ctx context.Context) (*SweepReport, error) {
	if !s.running.TryLock() {
		return nil, ErrSweepRunning
	}
	defer s.running.Unlock()
	defer s.state.Store(int32(SweepIdle))

	s.state.Store(int32(SweepScanning))
	overdue, err := s.source.OverdueRentals(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching overdue rentals: %w", err)
	}

	report := &SweepReport{Overdue: len(overdue)}
	if len(overdue) == 0 {
		return report, nil
	}

	s.state.Store(int32(SweepNotifying))
	for i := range overdue {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.notify(ctx, &overdue[i]); err != nil {
			report.Failed++
			slog.Warn("overdue notice failed", "rental_id", overdue[i].ID, "error", err)
			continue
		}
		report.Notified++
	}

	slog.Info("overdue sweep finished", "overdue", report.Overdue, "notified", report.Notified, "failed", report.Failed)
	return report, nil
}

func (s *Sweep) notify(ctx context.Context, r *model.Rental) error {
	user, err := s.users.Get(ctx, r.UserID)
	if err != nil {
		return err
	}
	if user == nil || user.DeletedAt != nil {
		return fmt.Errorf("user %d: %w", r.UserID, ErrNotFound)
	}

	item, err := s.items.Get(ctx, r.ItemID)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item %d: %w", r.ItemID, ErrNotFound)
	}

	return s.notifier.NotifyOverdue(ctx, user.Email, item.Title)
}
