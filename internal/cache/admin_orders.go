package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shopizen/internal/models"
)

const adminOrdersCacheTTL = 30 * time.Second

func adminOrdersKey(clientID string) string {
	return fmt.Sprintf("admin:orders:%s", clientID)
}

// GetAdminOrders 读取管理端订单总览缓存
func GetAdminOrders(ctx context.Context, clientID string) ([]models.OwnedOrder, bool, error) {
	var orders []models.OwnedOrder
	hit, err := GetJSON(ctx, adminOrdersKey(clientID), &orders)
	if err != nil || !hit {
		return nil, false, err
	}
	return orders, true, nil
}

// SetAdminOrders 写入管理端订单总览缓存
func SetAdminOrders(ctx context.Context, clientID string, orders []models.OwnedOrder) error {
	return SetJSON(ctx, adminOrdersKey(clientID), orders, adminOrdersCacheTTL)
}

// InvalidateAdminOrders 订单变更后清除总览缓存
func InvalidateAdminOrders(ctx context.Context, clientID string) error {
	return Del(ctx, adminOrdersKey(clientID))
}
