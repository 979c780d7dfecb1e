package constants

// Order status constants.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusReady     = "ready"
	OrderStatusDelivered = "delivered"
	OrderStatusCanceled  = "canceled"
)

// Cart item kind constants.
const (
	CartItemKindProduct = "product"
	CartItemKindOffer   = "offer"
)

// Cart record kind constants. The cart and the selected branch are stored
// as independent records per owner.
const (
	CartRecordKindCart           = "cart"
	CartRecordKindSelectedBranch = "selected_branch"
)

// Cart item key namespaces.
const (
	CartKeyPrefixProduct = "product:"
	CartKeyPrefixOffer   = "offer:"
)

// User status constants.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Queue constants.
const (
	QueueDefault           = "default"
	QueueCritical          = "critical"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
	TaskCartStaleSweep     = "cart:stale_sweep"
)

// Cache constants.
const (
	RedisPrefixDefault   = "hnd"
	CacheKeyPublicConfig = "public:config"
)

// Setting key constants.
const (
	SettingKeySiteConfig          = "site_config"
	SettingKeyOrderConfig         = "order_config"
	SettingFieldSiteCurrency      = "currency"
	SettingFieldConfirmExpireMins = "confirm_expire_minutes"
	SettingFieldLowStockThreshold = "low_stock_threshold"
)

// Currency constants.
const (
	SiteCurrencyDefault = "ARS"
)
