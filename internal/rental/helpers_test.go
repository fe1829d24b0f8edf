package rental

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/clock"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/store"
)

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type notice struct {
	Kind      string
	Recipient string
	ItemTitle string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
	failFor map[string]bool
}

func (n *recordingNotifier) NotifyOverdue(_ context.Context, recipient, itemTitle string) error {
	return n.record(model.NotificationOverdue, recipient, itemTitle)
}

func (n *recordingNotifier) NotifyAvailable(_ context.Context, recipient, itemTitle string) error {
	return n.record(model.NotificationAvailable, recipient, itemTitle)
}

func (n *recordingNotifier) record(kind, recipient, itemTitle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[recipient] {
		return &notify.TransportError{Kind: kind, Recipient: recipient, Err: errors.New("mailbox unavailable")}
	}
	n.notices = append(n.notices, notice{Kind: kind, Recipient: recipient, ItemTitle: itemTitle})
	return nil
}

func (n *recordingNotifier) sent() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notice(nil), n.notices...)
}

type fixture struct {
	db       *sqlx.DB
	clock    *clock.Manual
	notifier *recordingNotifier
	items    *store.Items
	users    *store.Users
	rentals  *store.Rentals
	waiting  *store.WaitingList
	coord    *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := db.NewTestDB(t)
	f := &fixture{
		db:       database,
		clock:    clock.NewManual(start),
		notifier: &recordingNotifier{},
		items:    store.NewItems(database),
		users:    store.NewUsers(database),
		rentals:  store.NewRentals(database),
		waiting:  store.NewWaitingList(database),
	}
	f.coord = NewCoordinator(Stores{
		Items:   f.items,
		Users:   f.users,
		Rentals: f.rentals,
		Waiting: f.waiting,
		Tx:      store.Transactor(database),
	}, f.notifier, f.clock)
	return f
}

func (f *fixture) addItem(t *testing.T, title string) *model.Item {
	t.Helper()
	item := &model.Item{Title: title}
	_, err := f.items.Add(context.Background(), item)
	require.NoError(t, err)
	return item
}

func (f *fixture) addUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Name: email, Email: email}
	_, err := f.users.Add(context.Background(), user)
	require.NoError(t, err)
	return user
}

func (f *fixture) item(t *testing.T, id int64) *model.Item {
	t.Helper()
	item, err := f.items.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func (f *fixture) openRentals(t *testing.T, itemID int64) []model.Rental {
	t.Helper()
	rentals, err := f.rentals.List(context.Background(), store.RentalFilter{ItemID: itemID, OpenOnly: true})
	require.NoError(t, err)
	return rentals
}
