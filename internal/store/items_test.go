package store

import (
	"context"
	"testing"

	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/model"
)

func TestAddAndGetItem(t *testing.T) {
	items := NewItems(db.NewTestDB(t))
	ctx := context.Background()

	item := &model.Item{Title: "Dune", Author: "Frank Herbert", Genre: "sci-fi"}
	id, err := items.Add(ctx, item)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == 0 || item.ID != id {
		t.Fatalf("expected item ID to be set, got %d / %d", id, item.ID)
	}

	got, err := items.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Dune" || got.Author != "Frank Herbert" {
		t.Errorf("unexpected item %+v", got)
	}
	if got.IsCheckedOut {
		t.Error("expected new item to be available")
	}
}

func TestGetMissingItem(t *testing.T) {
	items := NewItems(db.NewTestDB(t))

	got, err := items.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing item, got %+v", got)
	}
}

func TestUpdateItemAvailability(t *testing.T) {
	items := NewItems(db.NewTestDB(t))
	ctx := context.Background()

	item := &model.Item{Title: "Dune"}
	items.Add(ctx, item)

	item.IsCheckedOut = true
	if err := items.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := items.Get(ctx, item.ID)
	if !got.IsCheckedOut {
		t.Error("expected item to be checked out after update")
	}
}

func TestUpdateDetailsKeepsAvailability(t *testing.T) {
	items := NewItems(db.NewTestDB(t))
	ctx := context.Background()

	item := &model.Item{Title: "Dune", IsCheckedOut: true}
	items.Add(ctx, item)

	if err := items.UpdateDetails(ctx, item.ID, "Dune Messiah", "Frank Herbert", "", "sci-fi"); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	got, _ := items.Get(ctx, item.ID)
	if got.Title != "Dune Messiah" {
		t.Errorf("expected title 'Dune Messiah', got %q", got.Title)
	}
	if !got.IsCheckedOut {
		t.Error("expected availability flag to be untouched")
	}
}

func TestSoftDeleteItem(t *testing.T) {
	items := NewItems(db.NewTestDB(t))
	ctx := context.Background()

	item := &model.Item{Title: "Delete Me"}
	items.Add(ctx, item)
	items.Delete(ctx, item.ID)

	all, _ := items.QueryAll(ctx, nil)
	if len(all) != 0 {
		t.Errorf("expected 0 items after soft delete, got %d", len(all))
	}

	// Still fetchable by ID for rental history.
	got, _ := items.Get(ctx, item.ID)
	if got == nil || got.DeletedAt == nil {
		t.Error("expected soft-deleted item to still be fetchable by ID")
	}
}

func TestQueryAllItemsWithPredicate(t *testing.T) {
	items := NewItems(db.NewTestDB(t))
	ctx := context.Background()

	items.Add(ctx, &model.Item{Title: "A"})
	items.Add(ctx, &model.Item{Title: "B", IsCheckedOut: true})
	items.Add(ctx, &model.Item{Title: "C"})

	available, err := items.QueryAll(ctx, func(i *model.Item) bool { return !i.IsCheckedOut })
	if err != nil {
		t.Fatalf("QueryAll: %v", err)
	}
	if len(available) != 2 {
		t.Errorf("expected 2 available items, got %d", len(available))
	}
}

func TestItemCover(t *testing.T) {
	items := NewItems(db.NewTestDB(t))
	ctx := context.Background()

	item := &model.Item{Title: "Cover Item"}
	items.Add(ctx, item)
	items.SetCover(ctx, item.ID, []byte("fake image data"), "image/jpeg")

	data, mime, err := items.GetCover(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetCover: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected cover data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}
}
