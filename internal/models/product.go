package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a compounded preparation offered by the pharmacy.
//
// Stock tracking is opt-in: StockTotal == 0 means unlimited availability.
// When tracked, pending orders hold StockLocked units and paid orders move
// them to StockSold, so available = total - locked - sold.
type Product struct {
	ID                   uint           `gorm:"primarykey" json:"id"`                                 // primary key
	CategoryID           uint           `gorm:"not null;index" json:"category_id"`                    // category
	Slug                 string         `gorm:"uniqueIndex;not null" json:"slug"`                     // URL identifier
	Name                 string         `gorm:"not null;index" json:"name"`                           // display name
	Description          string         `gorm:"type:text" json:"description"`                         // long description
	DosageForm           string         `gorm:"type:varchar(50)" json:"dosage_form"`                  // cream, capsule, troche…
	Strength             string         `gorm:"type:varchar(50)" json:"strength"`                     // e.g. "10mg/mL"
	RequiresPrescription bool           `gorm:"not null;default:false" json:"requires_prescription"`  // Rx-only preparation
	Price                Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`   // unit price
	Images               StringArray    `gorm:"type:json" json:"images"`                              // image paths
	Tags                 StringArray    `gorm:"type:json" json:"tags"`                                // search tags
	StockTotal           int            `gorm:"not null;default:0" json:"stock_total"`                // 0 disables stock tracking
	StockLocked          int            `gorm:"not null;default:0" json:"stock_locked"`               // reserved by pending orders
	StockSold            int            `gorm:"not null;default:0" json:"stock_sold"`                 // committed by paid orders
	IsActive             bool           `gorm:"default:true;index" json:"is_active"`                  // listed in the storefront
	SortOrder            int            `gorm:"default:0;index" json:"sort_order"`                    // sort weight
	CreatedAt            time.Time      `gorm:"index" json:"created_at"`                              // creation time
	UpdatedAt            time.Time      `json:"updated_at"`                                           // update time
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`                                       // soft delete time

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // category info
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}

// StockAvailable returns the purchasable quantity, or -1 when untracked.
func (p *Product) StockAvailable() int {
	if p.StockTotal <= 0 {
		return -1
	}
	avail := p.StockTotal - p.StockLocked - p.StockSold
	if avail < 0 {
		return 0
	}
	return avail
}
