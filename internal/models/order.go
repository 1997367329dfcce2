package models

import (
	"time"

	"github.com/shopizen/internal/constants"
)

// CustomerInfo 下单客户信息（同时作为地址簿记录）
type CustomerInfo struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	HouseNo       string `json:"houseNo"`
	Address       string `json:"address"`
	Landmark      string `json:"landmark,omitempty"` // 选填
	City          string `json:"city"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	Country       string `json:"country"`
	PaymentMethod string `json:"paymentMethod"`
}

// OrderItem 订单项
type OrderItem struct {
	OrderItemID      string `json:"orderItemId"`      // 订单项ID
	ProductID        uint   `json:"productId"`        // 商品ID
	Name             string `json:"name"`             // 商品名称
	Image            string `json:"image,omitempty"`  // 主图
	SelectedSize     string `json:"selectedSize"`     // 尺码
	SelectedColor    string `json:"selectedColor"`    // 颜色
	Quantity         int    `json:"quantity"`         // 数量
	Price            Money  `json:"price"`            // 单价
	ExpectedDelivery string `json:"expectedDelivery"` // 预计送达日期 YYYY-MM-DD
	StatusIndex      int    `json:"statusIndex"`      // 状态 -1 终止，0..3 正常流转
	Action           string `json:"action,omitempty"` // cancel / return
	Reason           string `json:"reason,omitempty"` // 取消或退货原因
}

// Terminal 是否处于终止状态（已送达或已取消/退货）
func (i OrderItem) Terminal() bool {
	return i.StatusIndex == constants.OrderItemStatusTerminal ||
		i.StatusIndex >= constants.OrderItemStatusDelivered
}

// StatusLabel 状态展示名称
func (i OrderItem) StatusLabel() string {
	if i.StatusIndex == constants.OrderItemStatusTerminal {
		if i.Action == constants.OrderItemActionReturn {
			return "Returned"
		}
		return "Cancelled"
	}
	if i.StatusIndex >= 0 && i.StatusIndex < len(constants.OrderItemStatusLabels) {
		return constants.OrderItemStatusLabels[i.StatusIndex]
	}
	return constants.OrderItemStatusLabels[0]
}

// Order 订单记录，创建后仅订单项状态可变
type Order struct {
	ID            string       `json:"id"`            // 订单号 ORD-<毫秒>
	Customer      CustomerInfo `json:"customer"`      // 客户信息快照
	Items         []OrderItem  `json:"items"`         // 订单项
	TotalItems    int          `json:"totalItems"`    // 商品总件数
	TotalPrice    Money        `json:"totalPrice"`    // 订单总额
	UserID        string       `json:"userId"`        // 下单身份键
	PaymentMethod string       `json:"paymentMethod"` // 支付方式
	PaymentStatus string       `json:"paymentStatus"` // 支付状态
	CreatedAt     time.Time    `json:"createdAt"`     // 创建时间
}

// ItemIndex 查找订单项下标
func (o *Order) ItemIndex(orderItemID string) int {
	for idx := range o.Items {
		if o.Items[idx].OrderItemID == orderItemID {
			return idx
		}
	}
	return -1
}

// OwnedOrder 管理端视图：订单及其所属身份键
type OwnedOrder struct {
	Owner string `json:"owner"`
	Order
}
