package constants

// 存储键常量
const (
	SessionKey            = "loggedInUser_v2"
	CartKeyPrefix         = "cart_"
	WishlistKeyPrefix     = "wishlist_"
	OrdersKeyPrefix       = "orders_"
	AddressKeyPrefix      = "address_"
	NotificationKeyPrefix = "notifications_user_"
	ComparisonKey         = "comparisonList"
	SearchHistoryKey      = "searchHistory"
	AccountRegistryKey    = "registeredUsers"
	GuestIdentityKey      = "guest"
	ClientNamespaceFmt    = "client:%s:"
)

// 角色常量
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 订单项状态常量
const (
	OrderItemStatusTerminal  = -1
	OrderItemStatusPlaced    = 0
	OrderItemStatusConfirmed = 1
	OrderItemStatusShipped   = 2
	OrderItemStatusDelivered = 3
)

// OrderItemStatusLabels 非终止状态对应的展示名称
var OrderItemStatusLabels = []string{"Placed", "Confirmed", "Shipped", "Delivered"}

// 订单项终止动作
const (
	OrderItemActionCancel = "cancel"
	OrderItemActionReturn = "return"
)

// 支付方式常量
const (
	PaymentMethodCOD        = "cod"
	PaymentMethodUPI        = "upi"
	PaymentMethodNetBanking = "netbanking"
	PaymentMethodCard       = "card"
	PaymentMethodWallet     = "wallet"
	PaymentMethodEMI        = "emi"
	PaymentMethodPayLater   = "paylater"
)

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusInitiated = "initiated"
)

// 通知类型常量
const (
	ToastSuccess = "success"
	ToastError   = "error"
	ToastInfo    = "info"
	ToastWarning = "warning"
)

// 用户活动类型
const (
	ActivityMouseMove  = "mousemove"
	ActivityKeyDown    = "keydown"
	ActivityTouchStart = "touchstart"
	ActivityClick      = "click"
)

// 购物车默认规格
const (
	DefaultCartSize  = "Free Size"
	DefaultCartColor = "Default"
)

// 异步任务队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 存储后端类型
const (
	StorageBackendMemory   = "memory"
	StorageBackendRedis    = "redis"
	StorageBackendDatabase = "database"
)

// 异步任务类型
const (
	TaskNotificationDeliver = "notification:deliver"
)
