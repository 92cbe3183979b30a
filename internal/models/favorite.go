package models

import (
	"time"

	"gorm.io/gorm"
)

// Favorite marks a product saved by a user. Set semantics: the
// (user, product) pair is unique and favoriting twice is a no-op.
type Favorite struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                        // primary key
	UserID    uint           `gorm:"not null;uniqueIndex:idx_fav_user_product" json:"user_id"`    // owner
	ProductID uint           `gorm:"not null;uniqueIndex:idx_fav_user_product" json:"product_id"` // product
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                     // creation time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                              // soft delete time

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // product info
}

// TableName sets the table name.
func (Favorite) TableName() string {
	return "favorites"
}
