package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a customer order. Status moves forward only:
// pending -> processing -> shipped -> delivered, with pending -> cancelled
// as the single abort path. PaymentStatus converges to paid or failed no
// matter whether the client confirmation or the Stripe webhook lands first.
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                      // primary key
	OrderNo             string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // human-facing order number
	UserID              uint           `gorm:"index;not null" json:"user_id"`                             // owner
	Status              string         `gorm:"index;not null" json:"status"`                              // order status
	PaymentStatus       string         `gorm:"index;not null;default:'pending'" json:"payment_status"`    // payment status
	PaymentMethod       string         `gorm:"type:varchar(20)" json:"payment_method,omitempty"`          // card or checkout
	PaymentIntentID     string         `gorm:"index" json:"payment_intent_id,omitempty"`                  // Stripe PaymentIntent reference
	CheckoutSessionID   string         `gorm:"index" json:"checkout_session_id,omitempty"`                // Stripe Checkout Session reference
	Currency            string         `gorm:"not null" json:"currency"`                                  // currency code
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // order total
	ShippingAddressJSON JSON           `gorm:"type:json;not null" json:"shipping_address"`                // shipping address snapshot
	ClientIP            string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`               // client IP at creation
	ExpiresAt           *time.Time     `gorm:"index" json:"expires_at"`                                   // payment deadline
	PaidAt              *time.Time     `gorm:"index" json:"paid_at"`                                      // payment time
	CancelledAt         *time.Time     `gorm:"index" json:"cancelled_at"`                                 // cancellation time
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                   // creation time
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                   // update time
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                            // soft delete time

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // line items
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
