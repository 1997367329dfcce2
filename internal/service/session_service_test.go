package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/models"
)

type sessionFixture struct {
	store    kvstore.Store
	clock    *fakeClock
	notify   *NotificationService
	session  *SessionService
	cart     *CartService
	wishlist *WishlistService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	store := kvstore.NewMemoryStore()
	clock := newFakeClock()
	notify := NewNotificationService(store, "c1", nil, clock.Now)
	session := NewSessionService(store, notify, SessionOptions{
		CheckInterval:    time.Hour,
		ActivityCoalesce: time.Second,
		Clock:            clock.Now,
	})
	t.Cleanup(session.Close)
	cart := NewCartService(store, session, notify)
	wishlist := NewWishlistService(store, session, notify)
	session.AddMigrator(cart, wishlist)
	return &sessionFixture{store: store, clock: clock, notify: notify, session: session, cart: cart, wishlist: wishlist}
}

func lastToast(toasts []models.Toast) models.Toast {
	if len(toasts) == 0 {
		return models.Toast{}
	}
	return toasts[len(toasts)-1]
}

func TestLoginRejectsIdentityWithoutHandle(t *testing.T) {
	f := newSessionFixture(t)
	err := f.session.Login(models.Identity{ID: "u1", Name: "Nobody"}, SessionPolicy{})
	if !errors.Is(err, ErrInvalidIdentity) {
		t.Fatalf("expected invalid identity, got %v", err)
	}
	if _, ok, _ := f.store.Get(constants.SessionKey); ok {
		t.Fatalf("rejected login must not persist a session")
	}
	if toast := lastToast(f.notify.DrainToasts()); toast.Kind != constants.ToastError {
		t.Fatalf("expected error toast, got %+v", toast)
	}
	if f.session.IsSessionActive() {
		t.Fatalf("session must stay inactive")
	}
}

func TestLoginPersistsSessionAndDefaultsRole(t *testing.T) {
	f := newSessionFixture(t)
	if err := f.session.Login(models.Identity{Email: " a@example.com ", Name: "Asha"}, SessionPolicy{}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	var stored models.StoredSession
	if ok, err := kvstore.GetJSON(f.store, constants.SessionKey, &stored); !ok || err != nil {
		t.Fatalf("expected persisted session, ok=%v err=%v", ok, err)
	}
	if stored.User.Role != constants.RoleUser || stored.User.Email != "a@example.com" {
		t.Fatalf("unexpected stored identity: %+v", stored.User)
	}
	now := f.clock.Now()
	if stored.Meta.IdleExpiresAt != now.Add(15*time.Minute).UnixMilli() || stored.Meta.AbsoluteExpiresAt != now.Add(8*time.Hour).UnixMilli() {
		t.Fatalf("unexpected meta: %+v", stored.Meta)
	}
	if toast := lastToast(f.notify.DrainToasts()); toast.Kind != constants.ToastSuccess {
		t.Fatalf("expected welcome toast, got %+v", toast)
	}
}

func TestSessionIdleExpiry(t *testing.T) {
	f := newSessionFixture(t)
	_ = f.session.Login(models.Identity{Email: "a@example.com"}, SessionPolicy{IdleMinutes: 15, AbsoluteHours: 8})
	f.clock.Advance(15*time.Minute + time.Millisecond)

	if f.session.IsSessionActive() {
		t.Fatalf("expected idle expiry")
	}
	if _, err := f.session.RequireActive(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected not authenticated, got %v", err)
	}
	if _, ok, _ := f.store.Get(constants.SessionKey); ok {
		t.Fatalf("expired session record should be removed")
	}
	toast := lastToast(f.notify.DrainToasts())
	if toast.Message != "Session expired. Logged out." {
		t.Fatalf("expected expiry toast, got %+v", toast)
	}
}

func TestExtendIdleKeepsAbsoluteDeadline(t *testing.T) {
	f := newSessionFixture(t)
	_ = f.session.Login(models.Identity{Email: "a@example.com"}, SessionPolicy{IdleMinutes: 15, AbsoluteHours: 1})
	for i := 0; i < 4; i++ {
		f.clock.Advance(14 * time.Minute)
		if err := f.session.RecordActivity(constants.ActivityClick); err != nil {
			t.Fatalf("activity %d failed: %v", i, err)
		}
	}
	f.clock.Advance(5 * time.Minute)
	if f.session.IsSessionActive() {
		t.Fatalf("absolute deadline must end the session despite activity")
	}
	if err := f.session.RecordActivity("scroll"); !errors.Is(err, ErrInvalidActivity) {
		t.Fatalf("expected invalid activity, got %v", err)
	}
}

func TestRecordActivityCoalesces(t *testing.T) {
	f := newSessionFixture(t)
	_ = f.session.Login(models.Identity{Email: "a@example.com"}, SessionPolicy{})
	first := f.session.State().Meta.IdleExpiresAt

	f.clock.Advance(500 * time.Millisecond)
	_ = f.session.RecordActivity(constants.ActivityMouseMove)
	if got := f.session.State().Meta.IdleExpiresAt; got != first {
		t.Fatalf("activity inside coalesce window should not rewrite meta")
	}
	f.clock.Advance(time.Second)
	_ = f.session.RecordActivity(constants.ActivityKeyDown)
	if got := f.session.State().Meta.IdleExpiresAt; got <= first {
		t.Fatalf("expected idle deadline to move forward")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	f := newSessionFixture(t)
	var events [][2]*models.Identity
	f.session.OnIdentityChange(func(previous, next *models.Identity) {
		events = append(events, [2]*models.Identity{previous, next})
	})
	_ = f.session.Login(models.Identity{Mobile: "9876543210"}, SessionPolicy{})
	f.notify.DrainToasts()
	f.session.Logout(false)

	if f.session.Current() != nil {
		t.Fatalf("expected guest after logout")
	}
	if toast := lastToast(f.notify.DrainToasts()); toast.Message != "You have been logged out." {
		t.Fatalf("expected logout toast, got %+v", toast)
	}
	if len(events) != 2 || events[1][1] != nil {
		t.Fatalf("expected login and logout events, got %d", len(events))
	}
}

func TestLoginMigratesGuestDataOnce(t *testing.T) {
	f := newSessionFixture(t)
	_, _ = f.cart.AddItem(testProduct(1, 500), "M", "Red")
	_, _ = f.wishlist.Add(testProduct(3, 100))

	_ = f.session.Login(models.Identity{Email: "a@example.com"}, SessionPolicy{})
	lines, _ := f.cart.Items()
	items, _ := f.wishlist.Items()
	if len(lines) != 1 || len(items) != 1 {
		t.Fatalf("expected migrated data, cart=%d wishlist=%d", len(lines), len(items))
	}

	_ = f.session.Login(models.Identity{Email: "a@example.com"}, SessionPolicy{})
	lines, _ = f.cart.Items()
	items, _ = f.wishlist.Items()
	if len(lines) != 1 || lines[0].Quantity != 1 || len(items) != 1 {
		t.Fatalf("second login must not duplicate, cart=%+v wishlist=%d", lines, len(items))
	}
	guest, _ := f.cart.ItemsFor(constants.GuestIdentityKey)
	if len(guest) != 0 {
		t.Fatalf("guest cart should be empty")
	}
}

func TestRestoreSession(t *testing.T) {
	f := newSessionFixture(t)
	_ = f.session.Login(models.Identity{Email: "a@example.com"}, SessionPolicy{})
	f.session.Close()

	restored := NewSessionService(f.store, nil, SessionOptions{CheckInterval: time.Hour, Clock: f.clock.Now})
	defer restored.Close()
	if err := restored.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if current := restored.Current(); current == nil || current.Email != "a@example.com" {
		t.Fatalf("expected restored identity, got %+v", current)
	}

	f.clock.Advance(time.Hour)
	expired := NewSessionService(f.store, nil, SessionOptions{CheckInterval: time.Hour, Clock: f.clock.Now})
	defer expired.Close()
	if err := expired.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if expired.Current() != nil {
		t.Fatalf("expired record must not be restored")
	}
	if _, ok, _ := f.store.Get(constants.SessionKey); ok {
		t.Fatalf("expired record should be removed")
	}

	_ = f.store.Set(constants.SessionKey, "garbage")
	corrupt := NewSessionService(f.store, nil, SessionOptions{CheckInterval: time.Hour, Clock: f.clock.Now})
	if err := corrupt.Restore(); err != nil || corrupt.Current() != nil {
		t.Fatalf("corrupt record should start as guest, err=%v", err)
	}
}

func TestWatcherLogsOutOnExpiry(t *testing.T) {
	store := kvstore.NewMemoryStore()
	clock := newFakeClock()
	session := NewSessionService(store, nil, SessionOptions{CheckInterval: 5 * time.Millisecond, Clock: clock.Now})
	defer session.Close()
	_ = session.Login(models.Identity{Username: "asha"}, SessionPolicy{IdleMinutes: 1})

	clock.Advance(2 * time.Minute)
	waitFor(t, 2*time.Second, func() bool {
		_, ok, _ := store.Get(constants.SessionKey)
		return !ok
	})
}
