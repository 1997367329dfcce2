package kvstore

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestDatabaseStore(t *testing.T) *DatabaseStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewDatabaseStore(repository.NewKVRepository(db))
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	if _, ok, err := store.Get("cart_guest"); err != nil || ok {
		t.Fatalf("expected miss on empty store, ok=%v err=%v", ok, err)
	}
	if err := store.Set("cart_guest", "[]"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set("cart_guest", `[{"id":1}]`); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	value, ok, err := store.Get("cart_guest")
	if err != nil || !ok || value != `[{"id":1}]` {
		t.Fatalf("unexpected get result value=%s ok=%v err=%v", value, ok, err)
	}
	if err := store.Set("orders_u1", "[]"); err != nil {
		t.Fatalf("set orders failed: %v", err)
	}
	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "cart_guest" || keys[1] != "orders_u1" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if err := store.Remove("cart_guest"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := store.Remove("cart_guest"); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
	if _, ok, _ := store.Get("cart_guest"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestDatabaseStore(t *testing.T) {
	exerciseStore(t, newTestDatabaseStore(t))
}

func TestNamespaceIsolatesClients(t *testing.T) {
	for name, base := range map[string]Store{
		"memory":   NewMemoryStore(),
		"database": newTestDatabaseStore(t),
	} {
		t.Run(name, func(t *testing.T) {
			a := Namespace(base, "a")
			b := Namespace(base, "ab")
			if err := a.Set("orders_u1", "[1]"); err != nil {
				t.Fatalf("set a failed: %v", err)
			}
			if err := b.Set("orders_u1", "[2]"); err != nil {
				t.Fatalf("set b failed: %v", err)
			}
			value, ok, err := a.Get("orders_u1")
			if err != nil || !ok || value != "[1]" {
				t.Fatalf("client a should see its own value, got %s ok=%v err=%v", value, ok, err)
			}
			keys, err := a.Keys()
			if err != nil {
				t.Fatalf("keys failed: %v", err)
			}
			if len(keys) != 1 || keys[0] != "orders_u1" {
				t.Fatalf("expected stripped namespace keys, got %v", keys)
			}
			raw, ok, _ := base.Get("client:ab:orders_u1")
			if !ok || raw != "[2]" {
				t.Fatalf("expected prefixed key in base store, got %s", raw)
			}
		})
	}
}

func TestGetJSONCorruptValue(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Set("wishlist_guest", "{not json")
	var dest []models.Product
	ok, err := GetJSON(store, "wishlist_guest", &dest)
	if ok {
		t.Fatalf("corrupt value must not be reported as hit")
	}
	if !errors.Is(err, ErrCorruptValue) {
		t.Fatalf("expected ErrCorruptValue, got %v", err)
	}
}

func TestSetJSONRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	if err := SetJSON(store, "searchHistory", []models.SearchTerm{{Term: "shoes", Count: 2}}); err != nil {
		t.Fatalf("set json failed: %v", err)
	}
	var got []models.SearchTerm
	ok, err := GetJSON(store, "searchHistory", &got)
	if err != nil || !ok {
		t.Fatalf("get json failed ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Term != "shoes" || got[0].Count != 2 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestEscapeGlob(t *testing.T) {
	if got := escapeGlob("kv:client:a*b?"); got != `kv:client:a\*b\?` {
		t.Fatalf("unexpected escape result: %s", got)
	}
}
