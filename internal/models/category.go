package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products (e.g. hormone therapy, dermatology, veterinary).
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`              // primary key
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`  // URL identifier
	Name        string         `gorm:"not null" json:"name"`              // display name
	Description string         `gorm:"type:text" json:"description"`      // short description
	Icon        string         `gorm:"type:varchar(500)" json:"icon"`     // icon image path
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"` // sort weight
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`           // creation time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                    // soft delete time
}

// TableName sets the table name.
func (Category) TableName() string {
	return "categories"
}
