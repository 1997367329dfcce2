package service

import (
	"strings"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/models"
)

// advanceItem 订单项状态前进一步；已送达或已终止时拒绝
func advanceItem(item *models.OrderItem) error {
	if item.Terminal() {
		return ErrOrderItemTerminal
	}
	item.StatusIndex++
	return nil
}

// terminateItem 取消（送达前）或退货（送达后），终止后不可再变化
func terminateItem(item *models.OrderItem, action, reason string) error {
	action = strings.ToLower(strings.TrimSpace(action))
	reason = strings.TrimSpace(reason)
	if item.StatusIndex == constants.OrderItemStatusTerminal {
		return ErrOrderItemTerminal
	}
	switch action {
	case constants.OrderItemActionCancel:
		if item.StatusIndex >= constants.OrderItemStatusDelivered {
			return ErrCancelNotAllowed
		}
	case constants.OrderItemActionReturn:
		if item.StatusIndex != constants.OrderItemStatusDelivered {
			return ErrReturnNotAllowed
		}
	default:
		return ErrInvalidOrderAction
	}
	if reason == "" {
		return ErrReasonRequired
	}
	item.StatusIndex = constants.OrderItemStatusTerminal
	item.Action = action
	item.Reason = reason
	return nil
}

// trackingFinished 全部订单项终止，或任一订单项已取消/退货
func trackingFinished(order *models.Order) bool {
	for _, item := range order.Items {
		if item.StatusIndex == constants.OrderItemStatusTerminal {
			return true
		}
	}
	for _, item := range order.Items {
		if !item.Terminal() {
			return false
		}
	}
	return true
}
