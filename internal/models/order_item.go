package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem is a snapshotted order line. Product name and unit price are
// copied at creation so later catalog edits never rewrite order history.
type OrderItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // primary key
	OrderID     uint           `gorm:"index;not null" json:"order_id"`                            // parent order
	ProductID   uint           `gorm:"index;not null" json:"product_id"`                          // product
	ProductName string         `gorm:"not null" json:"product_name"`                              // name snapshot
	DosageForm  string         `gorm:"type:varchar(50)" json:"dosage_form,omitempty"`             // dosage form snapshot
	UnitPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`   // price snapshot
	Quantity    int            `gorm:"not null" json:"quantity"`                                  // quantity
	TotalPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`  // line subtotal
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // creation time
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                   // update time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // soft delete time
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
