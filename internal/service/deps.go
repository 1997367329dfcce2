package service

import (
	"time"

	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
)

// Clock 可注入的时间源
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// IdentitySource 提供当前会话身份，游客返回 nil
type IdentitySource interface {
	Current() *models.Identity
}

// Notifier 即时提示与个人通知出口
type Notifier interface {
	ShowToast(message, kind string)
	NotifyOrder(identityKey, orderID, message, kind string)
}

// GuestDataMigrator 登录时把游客数据并入用户命名空间
type GuestDataMigrator interface {
	MigrateGuest(identityKey string) error
}

// IdentityListener 身份切换回调（登录、登出、过期）
type IdentityListener func(previous, next *models.Identity)

type nopNotifier struct{}

func (nopNotifier) ShowToast(string, string)                    {}
func (nopNotifier) NotifyOrder(string, string, string, string) {}

// loadList 读取列表快照，损坏数据按空列表处理并记录日志
func loadList[T any](store kvstore.Store, key, event string) ([]T, error) {
	var items []T
	ok, err := kvstore.GetJSON(store, key, &items)
	if err != nil {
		if isCorrupt(err) {
			logger.Warnw(event, "key", key, "error", err)
			return []T{}, nil
		}
		return nil, err
	}
	if !ok || items == nil {
		return []T{}, nil
	}
	return items, nil
}

// saveList 整体写回列表快照
func saveList[T any](store kvstore.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	if err := kvstore.SetJSON(store, key, items); err != nil {
		return wrapStorageErr(err)
	}
	return nil
}
