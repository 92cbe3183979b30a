package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a storefront customer account.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`              // primary key
	Email        string         `gorm:"uniqueIndex;not null" json:"email"` // email
	PasswordHash string         `gorm:"not null" json:"-"`                 // bcrypt hash, never serialized
	DisplayName  string         `gorm:"default:''" json:"display_name"`    // display name
	Status       string         `gorm:"default:'active'" json:"status"`    // account status
	LastLoginAt  *time.Time     `json:"last_login_at"`                     // last login time
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`           // creation time
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`           // update time
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                    // soft delete time
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}
