package service

import (
	"testing"
	"time"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/queue"

	"github.com/hibiken/asynq"
)

type recordingPublisher struct {
	enabled  bool
	payloads []queue.NotificationPayload
}

func (p *recordingPublisher) Enabled() bool { return p.enabled }

func (p *recordingPublisher) EnqueueNotification(payload queue.NotificationPayload, _ ...asynq.Option) error {
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestNotificationRecordDedupesByOrder(t *testing.T) {
	clock := newFakeClock()
	svc := NewNotificationService(kvstore.NewMemoryStore(), "c1", nil, clock.Now)

	if err := svc.Record("u1", "ORD-1", "placed", constants.ToastSuccess, time.Time{}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if err := svc.Record("u1", "ORD-2", "placed 2", constants.ToastSuccess, time.Time{}); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	items, _ := svc.List("u1")
	if err := svc.MarkRead("u1", items[1].ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if err := svc.Record("u1", "ORD-1", "delivered", constants.ToastInfo, time.Time{}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	items, err := svc.List("u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected one notification per order, got %d", len(items))
	}
	if items[0].OrderID != "ORD-1" || items[0].Message != "delivered" || items[0].IsRead {
		t.Fatalf("expected replaced unread notification first, got %+v", items[0])
	}
	if items[0].ID == items[1].ID {
		t.Fatalf("expected unique ids")
	}
}

func TestNotificationMarkAllRead(t *testing.T) {
	svc := NewNotificationService(kvstore.NewMemoryStore(), "c1", nil, nil)
	_ = svc.Record("u1", "ORD-1", "a", constants.ToastInfo, time.Time{})
	_ = svc.Record("u1", "ORD-2", "b", constants.ToastInfo, time.Time{})

	if count, _ := svc.UnreadCount("u1"); count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}
	if err := svc.MarkAllRead("u1"); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if count, _ := svc.UnreadCount("u1"); count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
	if err := svc.MarkRead("u1", 42); err != ErrNotificationNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNotifyOrderSkipsGuestAndUsesQueue(t *testing.T) {
	publisher := &recordingPublisher{enabled: true}
	store := kvstore.NewMemoryStore()
	svc := NewNotificationService(store, "c1", publisher, nil)

	svc.NotifyOrder(constants.GuestIdentityKey, "ORD-1", "placed", constants.ToastSuccess)
	if len(publisher.payloads) != 0 {
		t.Fatalf("guest notifications must be skipped")
	}

	svc.NotifyOrder("u1", "ORD-1", "placed", constants.ToastSuccess)
	if len(publisher.payloads) != 1 || publisher.payloads[0].ClientID != "c1" {
		t.Fatalf("expected enqueued payload, got %+v", publisher.payloads)
	}
	if items, _ := svc.List("u1"); len(items) != 0 {
		t.Fatalf("queued notification should not be written synchronously")
	}

	publisher.enabled = false
	svc.NotifyOrder("u1", "ORD-2", "placed", constants.ToastSuccess)
	if items, _ := svc.List("u1"); len(items) != 1 {
		t.Fatalf("expected synchronous write when queue disabled")
	}
}

func TestToastBufferDrain(t *testing.T) {
	svc := NewNotificationService(kvstore.NewMemoryStore(), "c1", nil, nil)
	for i := 0; i < toastBufferSize+5; i++ {
		svc.ShowToast("hello", "bogus")
	}
	svc.ShowToast("  ", constants.ToastError)

	toasts := svc.DrainToasts()
	if len(toasts) != toastBufferSize {
		t.Fatalf("expected buffer capped at %d, got %d", toastBufferSize, len(toasts))
	}
	if toasts[0].Kind != constants.ToastInfo {
		t.Fatalf("unknown kind should fall back to info, got %s", toasts[0].Kind)
	}
	if len(svc.DrainToasts()) != 0 {
		t.Fatalf("expected empty buffer after drain")
	}
}
