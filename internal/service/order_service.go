package service

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopizen/internal/cache"
	"github.com/shopizen/internal/constants"
	"github.com/shopizen/internal/i18n"
	"github.com/shopizen/internal/kvstore"
	"github.com/shopizen/internal/logger"
	"github.com/shopizen/internal/models"

	"github.com/google/uuid"
)

const defaultDeliveryDays = 7

var (
	pincodePattern = regexp.MustCompile(`^[0-9A-Za-z -]{3,10}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

var paymentMethods = map[string]struct{}{
	constants.PaymentMethodCOD:        {},
	constants.PaymentMethodUPI:        {},
	constants.PaymentMethodNetBanking: {},
	constants.PaymentMethodCard:       {},
	constants.PaymentMethodWallet:     {},
	constants.PaymentMethodEMI:        {},
	constants.PaymentMethodPayLater:   {},
}

// OrderOptions 订单服务参数
type OrderOptions struct {
	ClientID     string
	DeliveryDays int
	Clock        Clock
}

// PlaceOrderInput 下单参数
type PlaceOrderInput struct {
	Customer      *models.CustomerInfo // 为空时使用已确认的客户信息
	PaymentMethod string               // 为空时使用已确认的支付方式
	BuyNow        *models.CartLine     // 立即购买时的单行快照，不清空购物车
}

// OrderService 订单生命周期
type OrderService struct {
	store    kvstore.Store
	identity IdentitySource
	cart     *CartService
	address  *AddressService
	notifier Notifier
	opts     OrderOptions

	mu        sync.Mutex
	confirmed map[string]models.CustomerInfo
}

// NewOrderService 创建订单服务
func NewOrderService(store kvstore.Store, identity IdentitySource, cart *CartService, address *AddressService, notifier Notifier, opts OrderOptions) *OrderService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if opts.DeliveryDays <= 0 {
		opts.DeliveryDays = defaultDeliveryDays
	}
	return &OrderService{
		store:     store,
		identity:  identity,
		cart:      cart,
		address:   address,
		notifier:  notifier,
		opts:      opts,
		confirmed: make(map[string]models.CustomerInfo),
	}
}

func ordersKey(identityKey string) string {
	return constants.OrdersKeyPrefix + identityKey
}

func (s *OrderService) currentKey() string {
	if s.identity == nil {
		return constants.GuestIdentityKey
	}
	return models.IdentityKey(s.identity.Current())
}

// ConfirmDetails 校验并确认客户信息，下单前必须调用
func (s *OrderService) ConfirmDetails(info models.CustomerInfo) (models.CustomerInfo, error) {
	info = normalizeCustomerInfo(info)
	if err := validateCustomerInfo(info); err != nil {
		return models.CustomerInfo{}, err
	}
	key := s.currentKey()
	s.mu.Lock()
	s.confirmed[key] = info
	s.mu.Unlock()
	logger.ForClient(s.opts.ClientID).Debugw("checkout_details_confirmed", "identity_key", key, "payment_method", info.PaymentMethod)
	return info, nil
}

// ConfirmedDetails 返回已确认的客户信息
func (s *OrderService) ConfirmedDetails() (models.CustomerInfo, bool) {
	key := s.currentKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.confirmed[key]
	return info, ok
}

// ResetConfirmation 丢弃已确认信息（身份切换时调用）
func (s *OrderService) ResetConfirmation() {
	s.mu.Lock()
	s.confirmed = make(map[string]models.CustomerInfo)
	s.mu.Unlock()
}

// PlaceOrder 创建订单；仅在订单写入成功后从购物车扣除已下单的行
func (s *OrderService) PlaceOrder(input PlaceOrderInput) (*models.Order, error) {
	key := s.currentKey()
	s.mu.Lock()
	confirmed, ok := s.confirmed[key]
	s.mu.Unlock()
	if !ok {
		return nil, ErrDetailsNotConfirmed
	}
	customer := confirmed
	if input.Customer != nil {
		customer = normalizeCustomerInfo(*input.Customer)
		customer.PaymentMethod = confirmed.PaymentMethod
	}
	if method := strings.ToLower(strings.TrimSpace(input.PaymentMethod)); method != "" {
		customer.PaymentMethod = method
	}
	if err := validateCustomerInfo(customer); err != nil {
		return nil, err
	}

	var lines []models.CartLine
	if input.BuyNow != nil {
		line := *input.BuyNow
		line.SelectedSize, line.SelectedColor = normalizeVariant(line.SelectedSize, line.SelectedColor)
		if line.Quantity <= 0 {
			line.Quantity = 1
		}
		lines = []models.CartLine{line}
	} else {
		items, err := s.cart.ItemsFor(key)
		if err != nil {
			return nil, err
		}
		lines = items
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCheckout
	}

	s.mu.Lock()
	orders, err := loadList[models.Order](s.store, ordersKey(key), "order_snapshot_decode_failed")
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	order := s.buildOrder(key, customer, lines, orders)
	if err := saveList(s.store, ordersKey(key), append(orders, order)); err != nil {
		s.mu.Unlock()
		logger.ForClient(s.opts.ClientID).Errorw("order_snapshot_write_failed", "identity_key", key, "order_id", order.ID, "error", err)
		s.notifier.ShowToast(i18n.T(i18n.DefaultLocale, "toast.storage_failed"), constants.ToastError)
		return nil, err
	}
	delete(s.confirmed, key)
	s.mu.Unlock()

	if input.BuyNow == nil {
		if err := s.cart.RemoveLinesFor(key, lines); err != nil {
			logger.ForClient(s.opts.ClientID).Warnw("order_cart_clear_failed", "identity_key", key, "order_id", order.ID, "error", err)
		}
	}
	if s.address != nil {
		if err := s.address.SaveFor(key, customer); err != nil {
			logger.ForClient(s.opts.ClientID).Warnw("order_address_save_failed", "identity_key", key, "error", err)
		}
	}
	s.invalidateAdminView()

	s.notifier.ShowToast(i18n.Sprintf(i18n.DefaultLocale, "toast.order_placed", order.ID), constants.ToastSuccess)
	s.notifier.NotifyOrder(key, order.ID, i18n.Sprintf(i18n.DefaultLocale, "notify.order_placed", order.ID), constants.ToastSuccess)
	logger.ForClient(s.opts.ClientID).Infow("order_placed",
		"identity_key", key,
		"order_id", order.ID,
		"total_items", order.TotalItems,
		"total_price", order.TotalPrice.String(),
		"payment_method", order.PaymentMethod,
		"buy_now", input.BuyNow != nil,
	)
	return &order, nil
}

// List 当前身份的订单
func (s *OrderService) List() ([]models.Order, error) {
	return s.ListFor(s.currentKey())
}

// ListFor 指定身份的订单
func (s *OrderService) ListFor(identityKey string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadList[models.Order](s.store, ordersKey(identityKey), "order_snapshot_decode_failed")
}

// Get 当前身份的单个订单
func (s *OrderService) Get(orderID string) (*models.Order, error) {
	return s.GetFor(s.currentKey(), orderID)
}

// GetFor 指定身份的单个订单
func (s *OrderService) GetFor(identityKey, orderID string) (*models.Order, error) {
	orders, err := s.ListFor(identityKey)
	if err != nil {
		return nil, err
	}
	for idx := range orders {
		if orders[idx].ID == orderID {
			return &orders[idx], nil
		}
	}
	return nil, ErrOrderNotFound
}

// AdvanceStatus 当前身份订单项状态前进一步，返回新状态
func (s *OrderService) AdvanceStatus(orderID, orderItemID string) (int, error) {
	return s.AdvanceStatusFor(s.currentKey(), orderID, orderItemID)
}

// AdvanceStatusFor 指定身份订单项状态前进一步（管理端与物流模拟共用）
func (s *OrderService) AdvanceStatusFor(identityKey, orderID, orderItemID string) (int, error) {
	item, err := s.mutateItem(identityKey, orderID, orderItemID, advanceItem)
	if err != nil {
		return 0, err
	}
	if item.StatusIndex == constants.OrderItemStatusDelivered {
		s.notifier.NotifyOrder(identityKey, orderID, i18n.Sprintf(i18n.DefaultLocale, "notify.order_delivered", orderID), constants.ToastSuccess)
	}
	return item.StatusIndex, nil
}

// CancelOrReturn 当前身份订单项取消或退货
func (s *OrderService) CancelOrReturn(orderID, orderItemID, action, reason string) (models.OrderItem, error) {
	return s.CancelOrReturnFor(s.currentKey(), orderID, orderItemID, action, reason)
}

// CancelOrReturnFor 指定身份订单项取消或退货
func (s *OrderService) CancelOrReturnFor(identityKey, orderID, orderItemID, action, reason string) (models.OrderItem, error) {
	item, err := s.mutateItem(identityKey, orderID, orderItemID, func(item *models.OrderItem) error {
		return terminateItem(item, action, reason)
	})
	if err != nil {
		return models.OrderItem{}, err
	}
	messageKey := "notify.order_cancelled"
	if item.Action == constants.OrderItemActionReturn {
		messageKey = "notify.order_returned"
	}
	s.notifier.NotifyOrder(identityKey, orderID, i18n.Sprintf(i18n.DefaultLocale, messageKey, item.Name, orderID), constants.ToastInfo)
	return item, nil
}

// AdvanceOrder 订单内所有未终止订单项前进一步，返回最新订单与是否已无需继续跟踪
func (s *OrderService) AdvanceOrder(identityKey, orderID string) (models.Order, bool, error) {
	s.mu.Lock()
	key := ordersKey(identityKey)
	orders, err := loadList[models.Order](s.store, key, "order_snapshot_decode_failed")
	if err != nil {
		s.mu.Unlock()
		return models.Order{}, false, err
	}
	idx := indexOfOrder(orders, orderID)
	if idx < 0 {
		s.mu.Unlock()
		return models.Order{}, false, ErrOrderNotFound
	}
	order := &orders[idx]
	if trackingFinished(order) {
		s.mu.Unlock()
		return *order, true, nil
	}
	delivered := false
	for itemIdx := range order.Items {
		if advanceItem(&order.Items[itemIdx]) == nil && order.Items[itemIdx].StatusIndex == constants.OrderItemStatusDelivered {
			delivered = true
		}
	}
	if err := saveList(s.store, key, orders); err != nil {
		s.mu.Unlock()
		return models.Order{}, false, err
	}
	snapshot := *order
	s.mu.Unlock()

	s.invalidateAdminView()
	finished := trackingFinished(&snapshot)
	if delivered && finished {
		s.notifier.NotifyOrder(identityKey, orderID, i18n.Sprintf(i18n.DefaultLocale, "notify.order_delivered", orderID), constants.ToastSuccess)
	}
	return snapshot, finished, nil
}

// ListAll 管理端：当前工作区内所有身份的订单，按创建时间倒序
func (s *OrderService) ListAll(ctx context.Context) ([]models.OwnedOrder, error) {
	if cached, ok, err := cache.GetAdminOrders(ctx, s.opts.ClientID); err == nil && ok {
		return cached, nil
	} else if err != nil {
		logger.ForClient(s.opts.ClientID).Warnw("admin_orders_cache_read_failed", "error", err)
	}

	keys, err := kvstore.KeysWithPrefix(s.store, constants.OrdersKeyPrefix)
	if err != nil {
		return nil, err
	}
	all := make([]models.OwnedOrder, 0)
	for _, key := range keys {
		owner := strings.TrimPrefix(key, constants.OrdersKeyPrefix)
		orders, err := s.ListFor(owner)
		if err != nil {
			return nil, err
		}
		for _, order := range orders {
			all = append(all, models.OwnedOrder{Owner: owner, Order: order})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if err := cache.SetAdminOrders(ctx, s.opts.ClientID, all); err != nil {
		logger.ForClient(s.opts.ClientID).Warnw("admin_orders_cache_write_failed", "error", err)
	}
	return all, nil
}

func (s *OrderService) mutateItem(identityKey, orderID, orderItemID string, fn func(*models.OrderItem) error) (models.OrderItem, error) {
	s.mu.Lock()
	key := ordersKey(identityKey)
	orders, err := loadList[models.Order](s.store, key, "order_snapshot_decode_failed")
	if err != nil {
		s.mu.Unlock()
		return models.OrderItem{}, err
	}
	idx := indexOfOrder(orders, orderID)
	if idx < 0 {
		s.mu.Unlock()
		return models.OrderItem{}, ErrOrderNotFound
	}
	itemIdx := orders[idx].ItemIndex(orderItemID)
	if itemIdx < 0 {
		s.mu.Unlock()
		return models.OrderItem{}, ErrOrderItemNotFound
	}
	item := orders[idx].Items[itemIdx]
	if err := fn(&item); err != nil {
		s.mu.Unlock()
		return models.OrderItem{}, err
	}
	orders[idx].Items[itemIdx] = item
	if err := saveList(s.store, key, orders); err != nil {
		s.mu.Unlock()
		logger.ForClient(s.opts.ClientID).Errorw("order_snapshot_write_failed", "identity_key", identityKey, "order_id", orderID, "error", err)
		return models.OrderItem{}, err
	}
	s.mu.Unlock()

	s.invalidateAdminView()
	logger.ForClient(s.opts.ClientID).Infow("order_item_updated",
		"identity_key", identityKey,
		"order_id", orderID,
		"order_item_id", orderItemID,
		"status_index", item.StatusIndex,
		"action", item.Action,
	)
	return item, nil
}

func (s *OrderService) buildOrder(identityKey string, customer models.CustomerInfo, lines []models.CartLine, existing []models.Order) models.Order {
	now := s.opts.Clock.now()
	stamp := now.UnixMilli()
	for indexOfOrder(existing, fmt.Sprintf("ORD-%d", stamp)) >= 0 {
		stamp++
	}
	expected := now.AddDate(0, 0, s.opts.DeliveryDays).Format("2006-01-02")

	order := models.Order{
		ID:            fmt.Sprintf("ORD-%d", stamp),
		Customer:      customer,
		Items:         make([]models.OrderItem, 0, len(lines)),
		TotalPrice:    models.NewMoneyFromInt(0),
		UserID:        identityKey,
		PaymentMethod: customer.PaymentMethod,
		PaymentStatus: paymentStatusFor(customer.PaymentMethod),
		CreatedAt:     now,
	}
	for _, line := range lines {
		image := ""
		if len(line.Images) > 0 {
			image = line.Images[0]
		}
		order.Items = append(order.Items, models.OrderItem{
			OrderItemID:      fmt.Sprintf("IT-%d-%s", stamp, uuid.NewString()[:8]),
			ProductID:        line.ID,
			Name:             line.Name,
			Image:            image,
			SelectedSize:     line.SelectedSize,
			SelectedColor:    line.SelectedColor,
			Quantity:         line.Quantity,
			Price:            line.Price,
			ExpectedDelivery: expected,
			StatusIndex:      constants.OrderItemStatusPlaced,
		})
		order.TotalItems += line.Quantity
		order.TotalPrice = order.TotalPrice.Plus(line.Subtotal())
	}
	return order
}

func (s *OrderService) invalidateAdminView() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := cache.InvalidateAdminOrders(ctx, s.opts.ClientID); err != nil {
		logger.ForClient(s.opts.ClientID).Warnw("admin_orders_cache_invalidate_failed", "error", err)
	}
}

func indexOfOrder(orders []models.Order, orderID string) int {
	for idx := range orders {
		if orders[idx].ID == orderID {
			return idx
		}
	}
	return -1
}

// paymentStatusFor 货到付款待支付，其余在线方式等待外部确认
func paymentStatusFor(method string) string {
	if method == constants.PaymentMethodCOD {
		return constants.PaymentStatusPending
	}
	return constants.PaymentStatusInitiated
}

func normalizeCustomerInfo(info models.CustomerInfo) models.CustomerInfo {
	info.FirstName = strings.TrimSpace(info.FirstName)
	info.LastName = strings.TrimSpace(info.LastName)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	info.HouseNo = strings.TrimSpace(info.HouseNo)
	info.Address = strings.TrimSpace(info.Address)
	info.Landmark = strings.TrimSpace(info.Landmark)
	info.City = strings.TrimSpace(info.City)
	info.State = strings.TrimSpace(info.State)
	info.Pincode = strings.TrimSpace(info.Pincode)
	info.Country = strings.TrimSpace(info.Country)
	info.PaymentMethod = strings.ToLower(strings.TrimSpace(info.PaymentMethod))
	return info
}

func validateCustomerInfo(info models.CustomerInfo) error {
	required := []string{
		info.FirstName, info.LastName, info.Email, info.Phone, info.HouseNo,
		info.Address, info.City, info.State, info.Pincode, info.Country,
	}
	for _, value := range required {
		if value == "" {
			return ErrCustomerInfoIncomplete
		}
	}
	if _, err := mail.ParseAddress(info.Email); err != nil {
		return ErrInvalidEmail
	}
	if !phonePattern.MatchString(info.Phone) {
		return ErrInvalidMobile
	}
	if !pincodePattern.MatchString(info.Pincode) {
		return ErrCustomerInfoIncomplete
	}
	if _, ok := paymentMethods[info.PaymentMethod]; !ok {
		return ErrPaymentMethodInvalid
	}
	return nil
}
