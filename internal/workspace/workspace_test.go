package workspace

import (
	"testing"
	"time"

	"github.com/shopizen/internal/config"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/models"
	"github.com/shopizen/internal/service"
)

func testProduct() models.Product {
	return models.Product{ID: 1, Name: "Tee", Price: models.NewMoneyFromInt(500), Sizes: []string{"M"}}
}

func TestWorkspacesAreIsolated(t *testing.T) {
	base := kvstore.NewMemoryStore()
	registry := NewRegistry(Deps{Base: base, Config: config.Defaults()})
	defer registry.CloseAll()

	a, err := registry.Get("client-a")
	if err != nil {
		t.Fatalf("get workspace failed: %v", err)
	}
	b, _ := registry.Get("client-b")
	if _, err := a.Cart.AddItem(testProduct(), "M", ""); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	lines, _ := b.Cart.Items()
	if len(lines) != 0 {
		t.Fatalf("client b must not see client a's cart")
	}
	again, _ := registry.Get("client-a")
	if again != a {
		t.Fatalf("expected the same workspace instance")
	}
	if _, err := registry.Get("  "); err != ErrClientIDRequired {
		t.Fatalf("expected client id required, got %v", err)
	}
}

func TestWorkspaceRestoresSessionAfterEviction(t *testing.T) {
	base := kvstore.NewMemoryStore()
	registry := NewRegistry(Deps{Base: base, Config: config.Defaults()})
	defer registry.CloseAll()

	ws, _ := registry.Get("client-a")
	if err := ws.Session.Login(models.Identity{Email: "a@example.com"}, service.SessionPolicy{}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !registry.Evict("client-a") {
		t.Fatalf("expected eviction")
	}
	restored, _ := registry.Get("client-a")
	if restored == ws {
		t.Fatalf("expected a new workspace instance")
	}
	if restored.IdentityKey() != "a@example.com" {
		t.Fatalf("expected restored identity, got %s", restored.IdentityKey())
	}
}

func TestSweepEvictsIdleWorkspaces(t *testing.T) {
	cfg := config.Defaults()
	cfg.Workspace.EvictIdleMinutes = 1
	registry := NewRegistry(Deps{Base: kvstore.NewMemoryStore(), Config: cfg})
	defer registry.CloseAll()

	_, _ = registry.Get("idle")
	busy, _ := registry.Get("busy")
	busy.Touch(time.Now().Add(2 * time.Minute))

	if evicted := registry.Sweep(time.Now().Add(90 * time.Second)); evicted != 1 {
		t.Fatalf("expected one eviction, got %d", evicted)
	}
	if _, ok := registry.Lookup("idle"); ok {
		t.Fatalf("idle workspace should be evicted")
	}
	if registry.Len() != 1 {
		t.Fatalf("expected busy workspace to remain")
	}
}

func TestLogoutStopsTracking(t *testing.T) {
	registry := NewRegistry(Deps{Base: kvstore.NewMemoryStore(), Config: config.Defaults()})
	defer registry.CloseAll()
	ws, _ := registry.Get("client-a")
	_ = ws.Session.Login(models.Identity{Email: "a@example.com"}, service.SessionPolicy{})
	_, _ = ws.Cart.AddItem(testProduct(), "M", "")
	if _, err := ws.Orders.ConfirmDetails(models.CustomerInfo{
		FirstName: "A", LastName: "B", Email: "a@example.com", Phone: "9876543210", HouseNo: "1",
		Address: "Street", City: "Pune", State: "MH", Pincode: "411001", Country: "India", PaymentMethod: "cod",
	}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	order, err := ws.Orders.PlaceOrder(service.PlaceOrderInput{})
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if started, err := ws.Tracker.Track(order.ID); err != nil || !started {
		t.Fatalf("track failed: started=%v err=%v", started, err)
	}
	ws.Session.Logout(false)
	if ws.Tracker.Tracking(order.ID) {
		t.Fatalf("logout must stop tracking")
	}
}
