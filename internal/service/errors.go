package service

import "errors"

var (
	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserDisabled       = errors.New("user account disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserStatusInvalid  = errors.New("user status invalid")

	// Catalog errors
	ErrProductNotFound     = errors.New("product not found")
	ErrProductNotAvailable = errors.New("product not available")
	ErrStockInsufficient   = errors.New("insufficient stock")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryHasProducts = errors.New("category still has products")
	ErrSlugTaken           = errors.New("slug already in use")

	// Cart errors
	ErrInvalidCartItem = errors.New("invalid cart item")
	ErrCartEmpty       = errors.New("cart is empty")

	// Guest state errors
	ErrGuestStateUnavailable = errors.New("guest state store unavailable")
	ErrGuestTokenInvalid     = errors.New("guest token invalid")
	ErrReconcileInFlight     = errors.New("reconciliation already in progress")

	// Order errors
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderFetchFailed       = errors.New("failed to fetch order")
	ErrOrderCreateFailed      = errors.New("failed to create order")
	ErrOrderUpdateFailed      = errors.New("failed to update order")
	ErrOrderCancelNotAllowed  = errors.New("order cannot be cancelled")
	ErrOrderStatusInvalid     = errors.New("invalid order status transition")
	ErrOrderCreateInFlight    = errors.New("order creation already in progress")
	ErrOrderNotPayable        = errors.New("order is not payable")
	ErrShippingAddressInvalid = errors.New("shipping address invalid")

	// Payment errors
	ErrPaymentAmountInvalid          = errors.New("payment amount invalid")
	ErrPaymentMethodInvalid          = errors.New("payment method invalid")
	ErrPaymentConfigInvalid          = errors.New("payment configuration invalid")
	ErrPaymentGatewayRequestFailed   = errors.New("payment gateway request failed")
	ErrPaymentGatewayResponseInvalid = errors.New("payment gateway response invalid")
	ErrWebhookSignatureInvalid       = errors.New("webhook signature invalid")

	// Infrastructure errors
	ErrQueueUnavailable = errors.New("task queue unavailable")
)
