package service

import (
	"time"

	"github.com/compoundrx/storefront/internal/repository"
)

// ReportService aggregates the admin dashboard numbers.
type ReportService struct {
	reportRepo repository.ReportRepository
	settings   *SettingService
}

// NewReportService builds a report service.
func NewReportService(reportRepo repository.ReportRepository, settings *SettingService) *ReportService {
	return &ReportService{reportRepo: reportRepo, settings: settings}
}

// Overview is the dashboard headline block.
type Overview struct {
	OrdersTotal      int64   `json:"orders_total"`
	PendingOrders    int64   `json:"pending_orders"`
	ProcessingOrders int64   `json:"processing_orders"`
	ShippedOrders    int64   `json:"shipped_orders"`
	DeliveredOrders  int64   `json:"delivered_orders"`
	CancelledOrders  int64   `json:"cancelled_orders"`
	PaidOrders       int64   `json:"paid_orders"`
	RevenuePaid      float64 `json:"revenue_paid"`
	NewUsers         int64   `json:"new_users"`
	ActiveProducts   int64   `json:"active_products"`

	OutOfStockProducts int64 `json:"out_of_stock_products"`
	LowStockProducts   int64 `json:"low_stock_products"`
}

// ProductRanking is one best-seller row.
type ProductRanking struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	PaidOrders  int64   `json:"paid_orders"`
	Quantity    int64   `json:"quantity"`
	PaidAmount  float64 `json:"paid_amount"`
}

// resolveRange defaults to the trailing 30 days and swaps inverted bounds.
func resolveRange(startAt, endAt time.Time) (time.Time, time.Time) {
	if endAt.IsZero() {
		endAt = time.Now()
	}
	if startAt.IsZero() {
		startAt = endAt.AddDate(0, 0, -30)
	}
	if startAt.After(endAt) {
		startAt, endAt = endAt, startAt
	}
	return startAt, endAt
}

// GetOverview returns the dashboard aggregates for a time range.
func (s *ReportService) GetOverview(startAt, endAt time.Time) (*Overview, error) {
	startAt, endAt = resolveRange(startAt, endAt)

	row, err := s.reportRepo.GetOverview(startAt, endAt)
	if err != nil {
		return nil, err
	}

	threshold := 5
	if s.settings != nil {
		threshold = s.settings.GetLowStockThreshold()
	}
	stock, err := s.reportRepo.GetStockStats(threshold)
	if err != nil {
		return nil, err
	}

	return &Overview{
		OrdersTotal:        row.OrdersTotal,
		PendingOrders:      row.PendingOrders,
		ProcessingOrders:   row.ProcessingOrders,
		ShippedOrders:      row.ShippedOrders,
		DeliveredOrders:    row.DeliveredOrders,
		CancelledOrders:    row.CancelledOrders,
		PaidOrders:         row.PaidOrders,
		RevenuePaid:        row.RevenuePaid,
		NewUsers:           row.NewUsers,
		ActiveProducts:     row.ActiveProducts,
		OutOfStockProducts: stock.OutOfStockProducts,
		LowStockProducts:   stock.LowStockProducts,
	}, nil
}

// GetTopProducts returns the best sellers by paid quantity.
func (s *ReportService) GetTopProducts(startAt, endAt time.Time, limit int) ([]ProductRanking, error) {
	startAt, endAt = resolveRange(startAt, endAt)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	rows, err := s.reportRepo.GetTopProducts(startAt, endAt, limit)
	if err != nil {
		return nil, err
	}
	ranking := make([]ProductRanking, 0, len(rows))
	for _, row := range rows {
		ranking = append(ranking, ProductRanking{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			PaidOrders:  row.PaidOrders,
			Quantity:    row.Quantity,
			PaidAmount:  row.PaidAmount,
		})
	}
	return ranking, nil
}
