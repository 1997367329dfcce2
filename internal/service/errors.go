package service

import "errors"

// 校验类错误
var (
	ErrInvalidIdentity        = errors.New("identity must carry an email, mobile or username")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidEmail           = errors.New("invalid email")
	ErrInvalidMobile          = errors.New("invalid mobile")
	ErrNameRequired           = errors.New("name is required")
	ErrEmailExists            = errors.New("email already registered")
	ErrWeakPassword           = errors.New("password does not satisfy policy")
	ErrInvalidActivity        = errors.New("unknown activity kind")
	ErrSizeRequired           = errors.New("size is required")
	ErrCartLineNotFound       = errors.New("cart line not found")
	ErrEmptyCheckout          = errors.New("checkout has no items")
	ErrDetailsNotConfirmed    = errors.New("customer details not confirmed")
	ErrCustomerInfoIncomplete = errors.New("customer details incomplete")
	ErrPaymentMethodInvalid   = errors.New("payment method invalid")
	ErrReasonRequired         = errors.New("reason is required")
	ErrCaptchaRequired        = errors.New("captcha required")
	ErrCaptchaInvalid         = errors.New("captcha invalid")
)

// 不变量类错误
var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrComparisonFull       = errors.New("comparison list is full")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderItemNotFound    = errors.New("order item not found")
	ErrOrderItemTerminal    = errors.New("order item is in a terminal status")
	ErrCancelNotAllowed     = errors.New("cancel not allowed after delivery")
	ErrReturnNotAllowed     = errors.New("return not allowed before delivery")
	ErrInvalidOrderAction   = errors.New("invalid order item action")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrTrackerIdentity      = errors.New("tracker bound to another identity")
	ErrClientTokenInvalid   = errors.New("client token invalid")
)

// 存储类错误
var (
	ErrStorageWrite     = errors.New("storage write failed")
	ErrQueueUnavailable = errors.New("queue unavailable")
)
