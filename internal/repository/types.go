package repository

import "time"

// ProductListFilter narrows product list queries.
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   string
	Search       string
	StockStatus  string
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter narrows order list queries.
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	Status        string
	PaymentStatus string
	OrderNo       string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// UserListFilter narrows user list queries.
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
