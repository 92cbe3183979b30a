package repository

import (
	"time"

	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/models"

	"gorm.io/gorm"
)

// ReportRepository aggregates sales numbers for the admin dashboard.
// Aggregation only, no business rules.
type ReportRepository interface {
	GetOverview(startAt, endAt time.Time) (ReportOverviewRow, error)
	GetStockStats(lowStockThreshold int) (ReportStockStatsRow, error)
	GetTopProducts(startAt, endAt time.Time, limit int) ([]ReportProductRankingRow, error)
}

// ReportOverviewRow is the raw overview aggregate.
type ReportOverviewRow struct {
	OrdersTotal      int64
	PendingOrders    int64
	ProcessingOrders int64
	ShippedOrders    int64
	DeliveredOrders  int64
	CancelledOrders  int64
	PaidOrders       int64
	RevenuePaid      float64
	NewUsers         int64
	ActiveProducts   int64
}

// ReportStockStatsRow is the raw stock aggregate.
type ReportStockStatsRow struct {
	OutOfStockProducts int64
	LowStockProducts   int64
}

// ReportProductRankingRow is one row of the best-seller ranking.
type ReportProductRankingRow struct {
	ProductID   uint
	ProductName string
	PaidOrders  int64
	Quantity    int64
	PaidAmount  float64
}

// GormReportRepository is the GORM implementation.
type GormReportRepository struct {
	db *gorm.DB
}

// NewReportRepository builds a report repository.
func NewReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// GetOverview gathers the overview aggregate for a window.
func (r *GormReportRepository) GetOverview(startAt, endAt time.Time) (ReportOverviewRow, error) {
	result := ReportOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}

	statusCounts := []struct {
		status string
		dest   *int64
	}{
		{constants.OrderStatusPending, &result.PendingOrders},
		{constants.OrderStatusProcessing, &result.ProcessingOrders},
		{constants.OrderStatusShipped, &result.ShippedOrders},
		{constants.OrderStatusDelivered, &result.DeliveredOrders},
		{constants.OrderStatusCancelled, &result.CancelledOrders},
	}
	for _, sc := range statusCounts {
		if err := orderBase().Where("status = ?", sc.status).Count(sc.dest).Error; err != nil {
			return result, err
		}
	}

	if err := orderBase().Where("payment_status = ?", constants.PaymentStatusPaid).Count(&result.PaidOrders).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Order{}).
		Where("paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ? AND payment_status = ?", startAt, endAt, constants.PaymentStatusPaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&result.RevenuePaid).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetStockStats gathers tracked-stock health numbers.
func (r *GormReportRepository) GetStockStats(lowStockThreshold int) (ReportStockStatsRow, error) {
	result := ReportStockStatsRow{}
	if lowStockThreshold <= 0 {
		lowStockThreshold = 5
	}

	if err := r.db.Model(&models.Product{}).
		Where("stock_total > 0 AND stock_total - stock_locked - stock_sold <= 0").
		Count(&result.OutOfStockProducts).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Product{}).
		Where("stock_total > 0 AND stock_total - stock_locked - stock_sold > 0 AND stock_total - stock_locked - stock_sold <= ?", lowStockThreshold).
		Count(&result.LowStockProducts).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetTopProducts ranks products by paid quantity inside a window.
func (r *GormReportRepository) GetTopProducts(startAt, endAt time.Time, limit int) ([]ReportProductRankingRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []ReportProductRankingRow
	err := r.db.Model(&models.OrderItem{}).
		Select("order_items.product_id AS product_id, order_items.product_name AS product_name, COUNT(DISTINCT order_items.order_id) AS paid_orders, COALESCE(SUM(order_items.quantity), 0) AS quantity, COALESCE(SUM(order_items.total_price), 0) AS paid_amount").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.payment_status = ? AND orders.paid_at >= ? AND orders.paid_at < ?", constants.PaymentStatusPaid, startAt, endAt).
		Group("order_items.product_id, order_items.product_name").
		Order("quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
