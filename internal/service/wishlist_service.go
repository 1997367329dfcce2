package service

import (
	"sync"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/i18n"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
)

// WishlistService 心愿单，按商品ID去重
type WishlistService struct {
	store    kvstore.Store
	identity IdentitySource
	notifier Notifier

	mu sync.Mutex
}

// NewWishlistService 创建心愿单服务
func NewWishlistService(store kvstore.Store, identity IdentitySource, notifier Notifier) *WishlistService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &WishlistService{store: store, identity: identity, notifier: notifier}
}

func (s *WishlistService) currentKey() string {
	if s.identity == nil {
		return constants.WishlistKeyPrefix + constants.GuestIdentityKey
	}
	return constants.WishlistKeyPrefix + models.IdentityKey(s.identity.Current())
}

// Items 当前身份心愿单
func (s *WishlistService) Items() ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[models.Product](s.store, s.currentKey(), "wishlist_snapshot_decode_failed")
}

// Contains 是否已收藏
func (s *WishlistService) Contains(productID uint) (bool, error) {
	items, err := s.Items()
	if err != nil {
		return false, err
	}
	return indexOfProduct(items, productID) >= 0, nil
}

// Add 加入心愿单，已存在时不变
func (s *WishlistService) Add(product models.Product) ([]models.Product, error) {
	items, _, err := s.apply(product, false)
	return items, err
}

// Remove 移出心愿单
func (s *WishlistService) Remove(productID uint) ([]models.Product, error) {
	key := s.currentKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadList[models.Product](s.store, key, "wishlist_snapshot_decode_failed")
	if err != nil {
		return nil, err
	}
	idx := indexOfProduct(items, productID)
	if idx < 0 {
		return items, nil
	}
	removed := items[idx]
	items = append(items[:idx], items[idx+1:]...)
	if err := saveList(s.store, key, items); err != nil {
		logger.Errorw("wishlist_snapshot_write_failed", "key", key, "error", err)
		return nil, err
	}
	s.notifier.ShowToast(i18n.Sprintf(i18n.DefaultLocale, "toast.wishlist_removed", removed.Name), constants.ToastInfo)
	return items, nil
}

// Toggle 切换收藏状态，返回切换后是否已收藏
func (s *WishlistService) Toggle(product models.Product) ([]models.Product, bool, error) {
	return s.apply(product, true)
}

func (s *WishlistService) apply(product models.Product, toggle bool) ([]models.Product, bool, error) {
	key := s.currentKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := loadList[models.Product](s.store, key, "wishlist_snapshot_decode_failed")
	if err != nil {
		return nil, false, err
	}
	idx := indexOfProduct(items, product.ID)
	if idx >= 0 && !toggle {
		return items, true, nil
	}
	added := idx < 0
	if added {
		items = append(items, product)
	} else {
		items = append(items[:idx], items[idx+1:]...)
	}
	if err := saveList(s.store, key, items); err != nil {
		logger.Errorw("wishlist_snapshot_write_failed", "key", key, "error", err)
		return nil, false, err
	}
	if added {
		s.notifier.ShowToast(i18n.Sprintf(i18n.DefaultLocale, "toast.wishlist_added", product.Name), constants.ToastSuccess)
	} else {
		s.notifier.ShowToast(i18n.Sprintf(i18n.DefaultLocale, "toast.wishlist_removed", product.Name), constants.ToastInfo)
	}
	return items, added, nil
}

// MigrateGuest 游客心愿单并入用户心愿单，用户已有商品优先
func (s *WishlistService) MigrateGuest(identityKey string) error {
	if identityKey == "" || identityKey == constants.GuestIdentityKey {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	guestKey := constants.WishlistKeyPrefix + constants.GuestIdentityKey
	guest, err := loadList[models.Product](s.store, guestKey, "wishlist_snapshot_decode_failed")
	if err != nil {
		return err
	}
	if len(guest) == 0 {
		return s.store.Remove(guestKey)
	}
	userKey := constants.WishlistKeyPrefix + identityKey
	merged, err := loadList[models.Product](s.store, userKey, "wishlist_snapshot_decode_failed")
	if err != nil {
		return err
	}
	for _, product := range guest {
		if indexOfProduct(merged, product.ID) < 0 {
			merged = append(merged, product)
		}
	}
	if err := saveList(s.store, userKey, merged); err != nil {
		return err
	}
	logger.Infow("wishlist_guest_migrated", "identity_key", identityKey, "guest_items", len(guest))
	return s.store.Remove(guestKey)
}

func indexOfProduct(items []models.Product, productID uint) int {
	for idx := range items {
		if items[idx].ID == productID {
			return idx
		}
	}
	return -1
}
