package constants

// Order status constants.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status constants.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// Payment method constants.
const (
	PaymentMethodCard     = "card"     // embedded card form backed by a PaymentIntent
	PaymentMethodCheckout = "checkout" // redirect to a hosted Checkout Session
)

// Stripe webhook event types the order lifecycle reacts to.
const (
	StripeEventPaymentSucceeded = "payment_intent.succeeded"
	StripeEventPaymentFailed    = "payment_intent.payment_failed"
	StripeEventCheckoutComplete = "checkout.session.completed"
)

// User status constants.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Product stock status constants.
const (
	ProductStockStatusUnlimited  = "unlimited"
	ProductStockStatusInStock    = "in_stock"
	ProductStockStatusLowStock   = "low_stock"
	ProductStockStatusOutOfStock = "out_of_stock"
)

// Queue constants.
const (
	QueueDefault           = "default"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// Cache constants.
const (
	RedisPrefixDefault = "crx"
)

// Guest state constants.
const (
	GuestTokenHeader  = "X-Guest-Token"
	GuestStateTTLDays = 30
)

// Setting key constants.
const (
	SettingKeySiteConfig  = "site_config"
	SettingKeyOrderConfig = "order_config"
)

// Currency constants.
const (
	SiteCurrencyDefault = "USD"
)
