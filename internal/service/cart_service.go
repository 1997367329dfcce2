package service

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/i18n"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"
)

// CartSummary 购物车汇总
type CartSummary struct {
	Lines      []models.CartLine `json:"lines"`
	TotalItems int               `json:"totalItems"`
	TotalPrice models.Money      `json:"totalPrice"`
}

// CartService 购物车，按 (商品, 尺码, 颜色) 唯一
type CartService struct {
	store    kvstore.Store
	identity IdentitySource
	notifier Notifier

	mu sync.Mutex
}

// NewCartService 创建购物车服务
func NewCartService(store kvstore.Store, identity IdentitySource, notifier Notifier) *CartService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &CartService{store: store, identity: identity, notifier: notifier}
}

func cartKey(identityKey string) string {
	return constants.CartKeyPrefix + identityKey
}

func (s *CartService) currentKey() string {
	if s.identity == nil {
		return constants.GuestIdentityKey
	}
	return models.IdentityKey(s.identity.Current())
}

// Items 当前身份的购物车
func (s *CartService) Items() ([]models.CartLine, error) {
	return s.ItemsFor(s.currentKey())
}

// ItemsFor 指定身份的购物车
func (s *CartService) ItemsFor(identityKey string) ([]models.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[models.CartLine](s.store, cartKey(identityKey), "cart_snapshot_decode_failed")
}

// Summary 返回购物车及合计
func (s *CartService) Summary() (CartSummary, error) {
	lines, err := s.Items()
	if err != nil {
		return CartSummary{}, err
	}
	return SummarizeCart(lines), nil
}

// AddItem 加入购物车：同规格累加数量，否则追加新行
func (s *CartService) AddItem(product models.Product, size, color string) ([]models.CartLine, error) {
	size, color, err := ResolveVariant(product, size, color)
	if err != nil {
		return nil, err
	}
	lines, err := s.mutate("cart_add", func(lines []models.CartLine) ([]models.CartLine, error) {
		for idx := range lines {
			if lines[idx].SameVariant(product.ID, size, color) {
				lines[idx].Quantity++
				return lines, nil
			}
		}
		return append(lines, models.CartLine{
			Product:       product,
			SelectedSize:  size,
			SelectedColor: color,
			Quantity:      1,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.ShowToast(i18n.Sprintf(i18n.DefaultLocale, "toast.cart_added", product.Name), constants.ToastSuccess)
	return lines, nil
}

// RemoveItem 删除指定规格；不存在时视为成功
func (s *CartService) RemoveItem(productID uint, size, color string) ([]models.CartLine, error) {
	size, color = normalizeVariant(size, color)
	return s.mutate("cart_remove", func(lines []models.CartLine) ([]models.CartLine, error) {
		next := lines[:0]
		for _, line := range lines {
			if line.SameVariant(productID, size, color) {
				continue
			}
			next = append(next, line)
		}
		return next, nil
	})
}

// IncreaseQuantity 数量加一
func (s *CartService) IncreaseQuantity(productID uint, size, color string) ([]models.CartLine, error) {
	size, color = normalizeVariant(size, color)
	return s.mutate("cart_increase", func(lines []models.CartLine) ([]models.CartLine, error) {
		idx := findLine(lines, productID, size, color)
		if idx < 0 {
			return nil, ErrCartLineNotFound
		}
		lines[idx].Quantity++
		return lines, nil
	})
}

// DecreaseQuantity 数量减一，最小为 1，不会自动删除
func (s *CartService) DecreaseQuantity(productID uint, size, color string) ([]models.CartLine, error) {
	size, color = normalizeVariant(size, color)
	return s.mutate("cart_decrease", func(lines []models.CartLine) ([]models.CartLine, error) {
		idx := findLine(lines, productID, size, color)
		if idx < 0 {
			return nil, ErrCartLineNotFound
		}
		if lines[idx].Quantity > 1 {
			lines[idx].Quantity--
		}
		return lines, nil
	})
}

// UpdateVariant 修改尺码；与已有同规格行冲突时合并数量
func (s *CartService) UpdateVariant(productID uint, color, oldSize, newSize string) ([]models.CartLine, error) {
	newSize = strings.TrimSpace(newSize)
	if newSize == "" {
		return nil, ErrSizeRequired
	}
	oldSize, color = normalizeVariant(oldSize, color)
	return s.mutate("cart_update_variant", func(lines []models.CartLine) ([]models.CartLine, error) {
		idx := findLine(lines, productID, oldSize, color)
		if idx < 0 {
			return nil, ErrCartLineNotFound
		}
		if sizes := lines[idx].Sizes; len(sizes) > 0 && !containsFold(sizes, newSize) {
			return nil, fmt.Errorf("%w: %s", ErrSizeRequired, newSize)
		}
		if oldSize == newSize {
			return lines, nil
		}
		if target := findLine(lines, productID, newSize, color); target >= 0 {
			lines[target].Quantity += lines[idx].Quantity
			return append(lines[:idx], lines[idx+1:]...), nil
		}
		lines[idx].SelectedSize = newSize
		return lines, nil
	})
}

// Clear 清空当前身份购物车
func (s *CartService) Clear() error {
	return s.ClearFor(s.currentKey())
}

// ClearFor 清空指定身份购物车
func (s *CartService) ClearFor(identityKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := saveList(s.store, cartKey(identityKey), []models.CartLine{}); err != nil {
		logger.Errorw("cart_snapshot_write_failed", "identity_key", identityKey, "op", "cart_clear", "error", err)
		return err
	}
	return nil
}

// RemoveLinesFor 从指定身份购物车扣除已下单的数量；下单后新加入的行保留
func (s *CartService) RemoveLinesFor(identityKey string, ordered []models.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := cartKey(identityKey)
	lines, err := loadList[models.CartLine](s.store, key, "cart_snapshot_decode_failed")
	if err != nil {
		return err
	}
	for _, done := range ordered {
		idx := findLine(lines, done.ID, done.SelectedSize, done.SelectedColor)
		if idx < 0 {
			continue
		}
		lines[idx].Quantity -= done.Quantity
		if lines[idx].Quantity <= 0 {
			lines = append(lines[:idx], lines[idx+1:]...)
		}
	}
	if lines == nil {
		lines = []models.CartLine{}
	}
	if err := saveList(s.store, key, lines); err != nil {
		logger.Errorw("cart_snapshot_write_failed", "identity_key", identityKey, "op", "cart_remove_ordered", "error", err)
		return err
	}
	return nil
}

// MigrateGuest 合并游客购物车：同规格以用户已有行为准，游客重复行丢弃
func (s *CartService) MigrateGuest(identityKey string) error {
	if identityKey == "" || identityKey == constants.GuestIdentityKey {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	guestKey := cartKey(constants.GuestIdentityKey)
	guest, err := loadList[models.CartLine](s.store, guestKey, "cart_snapshot_decode_failed")
	if err != nil {
		return err
	}
	if len(guest) == 0 {
		return s.store.Remove(guestKey)
	}
	userKey := cartKey(identityKey)
	merged, err := loadList[models.CartLine](s.store, userKey, "cart_snapshot_decode_failed")
	if err != nil {
		return err
	}
	added := 0
	for _, line := range guest {
		if findLine(merged, line.ID, line.SelectedSize, line.SelectedColor) >= 0 {
			continue
		}
		merged = append(merged, line)
		added++
	}
	if err := saveList(s.store, userKey, merged); err != nil {
		return err
	}
	if err := s.store.Remove(guestKey); err != nil {
		return err
	}
	logger.Infow("cart_guest_migrated", "identity_key", identityKey, "merged_lines", added, "dropped_lines", len(guest)-added)
	return nil
}

// mutate 读取-修改-整体写回；写入失败时状态不变
func (s *CartService) mutate(op string, fn func([]models.CartLine) ([]models.CartLine, error)) ([]models.CartLine, error) {
	key := cartKey(s.currentKey())
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := loadList[models.CartLine](s.store, key, "cart_snapshot_decode_failed")
	if err != nil {
		return nil, err
	}
	next, err := fn(lines)
	if err != nil {
		return nil, err
	}
	if err := saveList(s.store, key, next); err != nil {
		logger.Errorw("cart_snapshot_write_failed", "key", key, "op", op, "error", err)
		s.notifier.ShowToast(i18n.T(i18n.DefaultLocale, "toast.storage_failed"), constants.ToastError)
		return nil, err
	}
	if next == nil {
		next = []models.CartLine{}
	}
	return next, nil
}

func findLine(lines []models.CartLine, productID uint, size, color string) int {
	for idx := range lines {
		if lines[idx].SameVariant(productID, size, color) {
			return idx
		}
	}
	return -1
}

func normalizeVariant(size, color string) (string, string) {
	size = strings.TrimSpace(size)
	color = strings.TrimSpace(color)
	if size == "" {
		size = constants.DefaultCartSize
	}
	if color == "" {
		color = constants.DefaultCartColor
	}
	return size, color
}

// ResolveVariant 解析商品规格，有尺码可选的商品必须显式选择尺码
func ResolveVariant(product models.Product, size, color string) (string, string, error) {
	if strings.TrimSpace(size) == "" && len(product.Sizes) > 0 {
		return "", "", ErrSizeRequired
	}
	size, color = normalizeVariant(size, color)
	if len(product.Sizes) > 0 && !containsFold(product.Sizes, size) {
		return "", "", fmt.Errorf("%w: %s", ErrSizeRequired, size)
	}
	return size, color, nil
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}

// SummarizeCart 计算购物车件数与总额
func SummarizeCart(lines []models.CartLine) CartSummary {
	summary := CartSummary{Lines: lines, TotalPrice: models.NewMoneyFromInt(0)}
	for _, line := range lines {
		summary.TotalItems += line.Quantity
		summary.TotalPrice = summary.TotalPrice.Plus(line.Subtotal())
	}
	return summary
}
