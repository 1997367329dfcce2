package service

import (
	"testing"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/models"
)

func TestAdvanceItemIsMonotonic(t *testing.T) {
	item := models.OrderItem{StatusIndex: constants.OrderItemStatusPlaced}
	seen := []int{item.StatusIndex}
	for i := 0; i < 6; i++ {
		err := advanceItem(&item)
		if item.StatusIndex < seen[len(seen)-1] {
			t.Fatalf("status decreased: %v -> %d", seen, item.StatusIndex)
		}
		if err != nil && err != ErrOrderItemTerminal {
			t.Fatalf("unexpected error: %v", err)
		}
		seen = append(seen, item.StatusIndex)
	}
	if item.StatusIndex != constants.OrderItemStatusDelivered {
		t.Fatalf("expected delivered, got %d", item.StatusIndex)
	}
	if err := advanceItem(&item); err != ErrOrderItemTerminal {
		t.Fatalf("expected terminal error on delivered, got %v", err)
	}
}

func TestTerminateItemGating(t *testing.T) {
	cases := []struct {
		status int
		action string
		want   error
	}{
		{constants.OrderItemStatusPlaced, constants.OrderItemActionCancel, nil},
		{constants.OrderItemStatusShipped, constants.OrderItemActionCancel, nil},
		{constants.OrderItemStatusDelivered, constants.OrderItemActionCancel, ErrCancelNotAllowed},
		{constants.OrderItemStatusShipped, constants.OrderItemActionReturn, ErrReturnNotAllowed},
		{constants.OrderItemStatusDelivered, constants.OrderItemActionReturn, nil},
		{constants.OrderItemStatusTerminal, constants.OrderItemActionCancel, ErrOrderItemTerminal},
		{constants.OrderItemStatusPlaced, "exchange", ErrInvalidOrderAction},
	}
	for _, tc := range cases {
		item := models.OrderItem{StatusIndex: tc.status}
		err := terminateItem(&item, tc.action, "changed my mind")
		if err != tc.want {
			t.Fatalf("status=%d action=%s: expected %v, got %v", tc.status, tc.action, tc.want, err)
		}
		if err == nil && (item.StatusIndex != constants.OrderItemStatusTerminal || item.Action != tc.action) {
			t.Fatalf("expected terminal item, got %+v", item)
		}
		if err != nil && item.StatusIndex != tc.status {
			t.Fatalf("rejected transition must not change status")
		}
	}
}

func TestTerminatedItemCannotAdvance(t *testing.T) {
	item := models.OrderItem{StatusIndex: constants.OrderItemStatusConfirmed}
	if err := terminateItem(&item, constants.OrderItemActionCancel, "late"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if err := advanceItem(&item); err != ErrOrderItemTerminal {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if item.StatusIndex != constants.OrderItemStatusTerminal {
		t.Fatalf("terminal item must stay at -1")
	}
	if err := terminateItem(&item, constants.OrderItemActionCancel, "again"); err != ErrOrderItemTerminal {
		t.Fatalf("expected terminal error on repeat cancel, got %v", err)
	}
}

func TestTerminateItemRequiresReason(t *testing.T) {
	item := models.OrderItem{}
	if err := terminateItem(&item, constants.OrderItemActionCancel, "  "); err != ErrReasonRequired {
		t.Fatalf("expected reason required, got %v", err)
	}
}
