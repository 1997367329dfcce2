package service

import (
	"sync"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/i18n"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
)

const defaultComparisonMax = 3

// ComparisonService 商品对比列表，全局共享，不区分身份
type ComparisonService struct {
	store    kvstore.Store
	notifier Notifier
	maxItems int

	mu sync.Mutex
}

// NewComparisonService 创建对比服务
func NewComparisonService(store kvstore.Store, notifier Notifier, maxItems int) *ComparisonService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if maxItems <= 0 {
		maxItems = defaultComparisonMax
	}
	return &ComparisonService{store: store, notifier: notifier, maxItems: maxItems}
}

// MaxItems 对比上限
func (s *ComparisonService) MaxItems() int {
	return s.maxItems
}

// Items 对比列表（保持加入顺序）
func (s *ComparisonService) Items() ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Add 加入对比；已满时拒绝且列表不变
func (s *ComparisonService) Add(product models.Product) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	if indexOfProduct(items, product.ID) >= 0 {
		return items, nil
	}
	if len(items) >= s.maxItems {
		s.notifier.ShowToast(i18n.Sprintf(i18n.DefaultLocale, "toast.comparison_full", s.maxItems), constants.ToastWarning)
		return items, ErrComparisonFull
	}
	return s.saveLocked(append(items, product))
}

// Toggle 已在列表中则移除，否则加入
func (s *ComparisonService) Toggle(product models.Product) ([]models.Product, error) {
	if ok, err := s.contains(product.ID); err != nil {
		return nil, err
	} else if ok {
		return s.Remove(product.ID)
	}
	return s.Add(product)
}

// Remove 移出对比
func (s *ComparisonService) Remove(productID uint) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	idx := indexOfProduct(items, productID)
	if idx < 0 {
		return items, nil
	}
	return s.saveLocked(append(items[:idx], items[idx+1:]...))
}

// Clear 清空对比列表
func (s *ComparisonService) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.saveLocked([]models.Product{})
	return err
}

func (s *ComparisonService) contains(productID uint) (bool, error) {
	items, err := s.Items()
	if err != nil {
		return false, err
	}
	return indexOfProduct(items, productID) >= 0, nil
}

func (s *ComparisonService) loadLocked() ([]models.Product, error) {
	return loadList[models.Product](s.store, constants.ComparisonKey, "comparison_snapshot_decode_failed")
}

func (s *ComparisonService) saveLocked(items []models.Product) ([]models.Product, error) {
	if err := saveList(s.store, constants.ComparisonKey, items); err != nil {
		logger.Errorw("comparison_snapshot_write_failed", "error", err)
		return nil, err
	}
	return items, nil
}
