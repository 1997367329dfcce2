package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/models"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestTrackerAdvancesUntilDelivered(t *testing.T) {
	f := newOrderFixture(nil)
	order := placeSingleItemOrder(t, f)
	tracker := NewOrderTracker(f.orders, f.identity, "c1", 5*time.Millisecond)
	defer tracker.Close()

	started, err := tracker.Track(order.ID)
	if err != nil || !started {
		t.Fatalf("track failed: started=%v err=%v", started, err)
	}
	waitFor(t, 2*time.Second, func() bool { return !tracker.Tracking(order.ID) })

	stored, _ := f.orders.Get(order.ID)
	if stored.Items[0].StatusIndex != constants.OrderItemStatusDelivered {
		t.Fatalf("expected delivered, got %d", stored.Items[0].StatusIndex)
	}
	if started, _ := tracker.Track(order.ID); started {
		t.Fatalf("delivered order should not be tracked again")
	}
}

func TestTrackerStopsOnIdentityChange(t *testing.T) {
	f := newOrderFixture(nil)
	user := &models.Identity{ID: "u1"}
	f.identity.Set(user)
	order := placeSingleItemOrder(t, f)
	tracker := NewOrderTracker(f.orders, f.identity, "c1", time.Hour)
	defer tracker.Close()

	if _, err := tracker.Track(order.ID); err != nil {
		t.Fatalf("track failed: %v", err)
	}
	f.identity.Set(nil)
	tracker.HandleIdentityChange(user, nil)
	if tracker.Tracking(order.ID) {
		t.Fatalf("tracking must stop on identity change")
	}
}

// gatedIdentity 读取身份后在放行前阻塞，模拟推进途中发生登出
type gatedIdentity struct {
	staticIdentity
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedIdentity) Peek() *models.Identity {
	identity := g.Current()
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return identity
}

func TestTrackerStopAllWaitsForInFlightTick(t *testing.T) {
	f := newOrderFixture(nil)
	user := &models.Identity{ID: "u1"}
	f.identity.Set(user)
	order := placeSingleItemOrder(t, f)

	gate := &gatedIdentity{entered: make(chan struct{}), release: make(chan struct{})}
	gate.Set(user)
	tracker := NewOrderTracker(f.orders, gate, "c1", time.Hour)
	defer tracker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	tracker.mu.Lock()
	tracker.trackers[order.ID] = &tracking{owner: "u1", cancel: cancel, done: make(chan struct{})}
	tracker.mu.Unlock()

	go func() { _, _ = tracker.tick(ctx, order.ID, "u1") }()
	<-gate.entered

	gate.Set(nil)
	stopped := make(chan struct{})
	go func() {
		tracker.HandleIdentityChange(user, nil)
		close(stopped)
	}()
	select {
	case <-stopped:
		t.Fatalf("identity change must wait for the in-flight tick")
	case <-time.After(30 * time.Millisecond):
	}

	close(gate.release)
	<-stopped
	stored, _ := f.orders.GetFor("u1", order.ID)
	settled := stored.Items[0].StatusIndex

	finished, err := tracker.tick(ctx, order.ID, "u1")
	if !finished || err != nil {
		t.Fatalf("cancelled tick should finish quietly, finished=%v err=%v", finished, err)
	}
	stored, _ = f.orders.GetFor("u1", order.ID)
	if stored.Items[0].StatusIndex != settled {
		t.Fatalf("order advanced after logout: %d -> %d", settled, stored.Items[0].StatusIndex)
	}
	if tracker.Tracking(order.ID) {
		t.Fatalf("tracking must stop on identity change")
	}
}

func TestTrackerTickRefusesOtherIdentity(t *testing.T) {
	f := newOrderFixture(nil)
	f.identity.Set(&models.Identity{ID: "u1"})
	order := placeSingleItemOrder(t, f)
	tracker := NewOrderTracker(f.orders, f.identity, "c1", time.Hour)

	f.identity.Set(&models.Identity{ID: "u2"})
	finished, err := tracker.tick(context.Background(), order.ID, "u1")
	if !finished || !errors.Is(err, ErrTrackerIdentity) {
		t.Fatalf("expected identity refusal, finished=%v err=%v", finished, err)
	}
	stored, _ := f.orders.GetFor("u1", order.ID)
	if stored.Items[0].StatusIndex != constants.OrderItemStatusPlaced {
		t.Fatalf("order of previous identity must not advance")
	}
}

func TestTrackerCloseRejectsNewTracking(t *testing.T) {
	f := newOrderFixture(nil)
	order := placeSingleItemOrder(t, f)
	tracker := NewOrderTracker(f.orders, f.identity, "c1", time.Hour)
	if _, err := tracker.Track(order.ID); err != nil {
		t.Fatalf("track failed: %v", err)
	}
	tracker.Close()
	if tracker.Tracking(order.ID) {
		t.Fatalf("close must stop all tracking")
	}
	if started, _ := tracker.Track(order.ID); started {
		t.Fatalf("closed tracker must not start new tracking")
	}
}
