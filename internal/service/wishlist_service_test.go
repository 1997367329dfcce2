package service

import (
	"errors"
	"testing"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/models"
)

func TestWishlistToggleAndDedupe(t *testing.T) {
	wishlist := NewWishlistService(kvstore.NewMemoryStore(), &staticIdentity{}, nil)
	product := testProduct(1, 500)

	items, added, err := wishlist.Toggle(product)
	if err != nil || !added || len(items) != 1 {
		t.Fatalf("expected added, got items=%d added=%v err=%v", len(items), added, err)
	}
	if items, _ = wishlist.Add(product); len(items) != 1 {
		t.Fatalf("add must not duplicate, got %d", len(items))
	}
	items, added, _ = wishlist.Toggle(product)
	if added || len(items) != 0 {
		t.Fatalf("expected removed, got items=%d added=%v", len(items), added)
	}
}

func TestWishlistGuestMigration(t *testing.T) {
	store := kvstore.NewMemoryStore()
	identity := &staticIdentity{}
	wishlist := NewWishlistService(store, identity, nil)
	_, _ = wishlist.Add(testProduct(1, 500))
	_, _ = wishlist.Add(testProduct(2, 500))

	identity.Set(&models.Identity{ID: "u1", Email: "a@example.com"})
	_, _ = wishlist.Add(testProduct(2, 500))

	for i := 0; i < 2; i++ {
		if err := wishlist.MigrateGuest("u1"); err != nil {
			t.Fatalf("migrate failed: %v", err)
		}
	}
	items, _ := wishlist.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 unique products, got %d", len(items))
	}
	if ok, _ := wishlist.Contains(1); !ok {
		t.Fatalf("expected guest product to be migrated")
	}
	if _, ok, _ := store.Get(constants.WishlistKeyPrefix + constants.GuestIdentityKey); ok {
		t.Fatalf("guest wishlist should be removed")
	}
}

func TestComparisonCap(t *testing.T) {
	comparison := NewComparisonService(kvstore.NewMemoryStore(), nil, 3)
	for id := uint(1); id <= 3; id++ {
		if _, err := comparison.Add(testProduct(id, 100)); err != nil {
			t.Fatalf("add %d failed: %v", id, err)
		}
	}
	items, err := comparison.Add(testProduct(4, 100))
	if !errors.Is(err, ErrComparisonFull) {
		t.Fatalf("expected comparison full, got %v", err)
	}
	stored, _ := comparison.Items()
	if len(items) != 3 || len(stored) != 3 || stored[2].ID != 3 {
		t.Fatalf("list must stay unchanged, got %+v", stored)
	}
	if _, err := comparison.Add(testProduct(2, 100)); err != nil {
		t.Fatalf("re-adding an existing product should succeed, got %v", err)
	}
}

func TestComparisonToggleRemoveClear(t *testing.T) {
	comparison := NewComparisonService(kvstore.NewMemoryStore(), nil, 0)
	if comparison.MaxItems() != 3 {
		t.Fatalf("expected default cap 3, got %d", comparison.MaxItems())
	}
	_, _ = comparison.Toggle(testProduct(1, 100))
	_, _ = comparison.Toggle(testProduct(2, 100))
	items, _ := comparison.Toggle(testProduct(1, 100))
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("expected only product 2, got %+v", items)
	}
	items, _ = comparison.Remove(2)
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %+v", items)
	}
	_, _ = comparison.Add(testProduct(3, 100))
	if err := comparison.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if items, _ = comparison.Items(); len(items) != 0 {
		t.Fatalf("expected cleared list")
	}
}

func TestSearchHistoryRecord(t *testing.T) {
	history := NewSearchHistoryService(kvstore.NewMemoryStore(), 3)
	for _, term := range []string{"shoes", "Tee", "  shoes ", "jeans", "hat"} {
		if _, err := history.Record(term); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	items, _ := history.List()
	if len(items) != 3 {
		t.Fatalf("expected cap of 3, got %d", len(items))
	}
	if items[0].Term != "hat" || items[1].Term != "jeans" || items[2].Term != "shoes" || items[2].Count != 2 {
		t.Fatalf("unexpected history: %+v", items)
	}
	if _, err := history.Record("SHOES"); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	items, _ = history.List()
	if items[0].Term != "SHOES" || items[0].Count != 3 {
		t.Fatalf("expected case-insensitive dedupe, got %+v", items[0])
	}
	items, _ = history.Remove("shoes")
	if len(items) != 2 {
		t.Fatalf("expected removal, got %+v", items)
	}
	if err := history.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
}
