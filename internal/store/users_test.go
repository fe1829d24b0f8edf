package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestAddAndGetUser(t *testing.T) {
	users := NewUsers(db.NewTestDB(t))
	ctx := context.Background()

	u := &model.User{Name: "Alice", Email: "alice@example.com"}
	if _, err := users.Add(ctx, u); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := users.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("expected email 'alice@example.com', got %q", got.Email)
	}
}

func TestAddUserDuplicateEmail(t *testing.T) {
	users := NewUsers(db.NewTestDB(t))
	ctx := context.Background()

	users.Add(ctx, &model.User{Name: "Alice", Email: "alice@example.com"})

	_, err := users.Add(ctx, &model.User{Name: "Other Alice", Email: "alice@example.com"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestDeletedUserEmailReusable(t *testing.T) {
	users := NewUsers(db.NewTestDB(t))
	ctx := context.Background()

	u := &model.User{Name: "Alice", Email: "alice@example.com"}
	users.Add(ctx, u)
	users.Delete(ctx, u.ID)

	if _, err := users.Add(ctx, &model.User{Name: "Alice", Email: "alice@example.com"}); err != nil {
		t.Errorf("expected email of deleted user to be reusable, got %v", err)
	}

	all, _ := users.QueryAll(ctx, nil)
	if len(all) != 1 {
		t.Errorf("expected 1 active user, got %d", len(all))
	}
}

func TestUpdateUser(t *testing.T) {
	users := NewUsers(db.NewTestDB(t))
	ctx := context.Background()

	u := &model.User{Name: "Bob", Email: "bob@example.com"}
	users.Add(ctx, u)

	u.Email = "robert@example.com"
	if err := users.Update(ctx, u); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := users.Get(ctx, u.ID)
	if got.Email != "robert@example.com" {
		t.Errorf("expected updated email, got %q", got.Email)
	}
}
