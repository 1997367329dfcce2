package models

import "time"

// Toast 即时提示
type Toast struct {
	Message string `json:"message"`
	Kind    string `json:"kind"` // success / error / info / warning
}

// Notification 个人通知
type Notification struct {
	ID        int64     `json:"id"`
	OrderID   string    `json:"orderId,omitempty"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	IsRead    bool      `json:"isRead"`
	Timestamp time.Time `json:"timestamp"`
}

// SearchTerm 搜索历史条目
type SearchTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
