package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func seedItemAndUser(t *testing.T, database *sqlx.DB, title, email string) (*model.Item, *model.User) {
	t.Helper()
	ctx := context.Background()

	item := &model.Item{Title: title}
	if _, err := NewItems(database).Add(ctx, item); err != nil {
		t.Fatalf("adding item: %v", err)
	}
	user := &model.User{Name: email, Email: email}
	if _, err := NewUsers(database).Add(ctx, user); err != nil {
		t.Fatalf("adding user: %v", err)
	}
	return item, user
}

func TestAddAndGetRental(t *testing.T) {
	database := db.NewTestDB(t)
	rentals := NewRentals(database)
	ctx := context.Background()
	item, user := seedItemAndUser(t, database, "Dune", "alice@example.com")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := &model.Rental{ItemID: item.ID, UserID: user.ID, CheckedOutAt: now, DueAt: now.Add(model.DefaultLoanPeriod)}
	if _, err := rentals.Add(ctx, r); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := rentals.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.DueAt.Equal(now.Add(model.DefaultLoanPeriod)) {
		t.Errorf("expected due %v, got %v", now.Add(model.DefaultLoanPeriod), got.DueAt)
	}
	if got.ReturnedAt != nil {
		t.Error("expected open rental")
	}
}

func TestSecondOpenRentalConflicts(t *testing.T) {
	database := db.NewTestDB(t)
	rentals := NewRentals(database)
	ctx := context.Background()
	item, user := seedItemAndUser(t, database, "Dune", "alice@example.com")

	now := time.Now().UTC()
	rentals.Add(ctx, &model.Rental{ItemID: item.ID, UserID: user.ID, CheckedOutAt: now, DueAt: now})

	_, err := rentals.Add(ctx, &model.Rental{ItemID: item.ID, UserID: user.ID, CheckedOutAt: now, DueAt: now})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for second open rental, got %v", err)
	}
}

func TestReturnedRentalAllowsNewOne(t *testing.T) {
	database := db.NewTestDB(t)
	rentals := NewRentals(database)
	ctx := context.Background()
	item, user := seedItemAndUser(t, database, "Dune", "alice@example.com")

	now := time.Now().UTC()
	first := &model.Rental{ItemID: item.ID, UserID: user.ID, CheckedOutAt: now, DueAt: now}
	rentals.Add(ctx, first)

	first.ReturnedAt = &now
	if err := rentals.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, err := rentals.Add(ctx, &model.Rental{ItemID: item.ID, UserID: user.ID, CheckedOutAt: now, DueAt: now}); err != nil {
		t.Errorf("expected new rental after return, got %v", err)
	}
}

func TestDeleteRentalRejected(t *testing.T) {
	rentals := NewRentals(db.NewTestDB(t))

	err := rentals.Delete(context.Background(), 1)
	if !errors.Is(err, ErrRentalHistory) {
		t.Errorf("expected ErrRentalHistory, got %v", err)
	}
}

func TestListRentalsFiltered(t *testing.T) {
	database := db.NewTestDB(t)
	rentals := NewRentals(database)
	ctx := context.Background()
	item1, alice := seedItemAndUser(t, database, "Dune", "alice@example.com")
	item2, bob := seedItemAndUser(t, database, "Emma", "bob@example.com")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	returned := base.Add(time.Hour)
	rentals.Add(ctx, &model.Rental{ItemID: item1.ID, UserID: alice.ID, CheckedOutAt: base, DueAt: base, ReturnedAt: &returned})
	rentals.Add(ctx, &model.Rental{ItemID: item1.ID, UserID: bob.ID, CheckedOutAt: base.Add(2 * time.Hour), DueAt: base})
	rentals.Add(ctx, &model.Rental{ItemID: item2.ID, UserID: alice.ID, CheckedOutAt: base.Add(time.Hour), DueAt: base})

	all, _ := rentals.List(ctx, RentalFilter{})
	if len(all) != 3 {
		t.Errorf("expected 3 rentals, got %d", len(all))
	}

	byAlice, _ := rentals.List(ctx, RentalFilter{UserID: alice.ID})
	if len(byAlice) != 2 {
		t.Fatalf("expected 2 rentals for alice, got %d", len(byAlice))
	}
	if byAlice[0].ItemID != item1.ID || byAlice[1].ItemID != item2.ID {
		t.Errorf("expected alice's rentals oldest first, got %+v", byAlice)
	}

	openForItem1, _ := rentals.List(ctx, RentalFilter{ItemID: item1.ID, OpenOnly: true})
	if len(openForItem1) != 1 || openForItem1[0].UserID != bob.ID {
		t.Errorf("expected bob's open rental for item1, got %+v", openForItem1)
	}
}
