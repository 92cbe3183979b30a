package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem is one line of a signed-in user's cart. The (user, product) pair
// is unique; adding the same product again bumps the quantity instead.
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                         // primary key
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`    // owner
	ProductID uint           `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"` // product
	Quantity  int            `gorm:"not null" json:"quantity"`                                     // quantity
	UnitPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`      // price snapshot at add time
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                      // creation time
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                      // update time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                               // soft delete time

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // product info
}

// TableName sets the table name.
func (CartItem) TableName() string {
	return "cart_items"
}
