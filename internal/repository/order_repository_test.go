package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/models"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOrderRepository(db), db
}

func seedOrder(t *testing.T, repo *GormOrderRepository, orderNo string, userID uint, status string, expiresAt *time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:             orderNo,
		UserID:              userID,
		Status:              status,
		PaymentStatus:       constants.PaymentStatusPending,
		Currency:            "USD",
		TotalAmount:         models.NewMoneyFromDecimal(decimal.NewFromFloat(20)),
		ShippingAddressJSON: models.JSON{"name": "Pat"},
		ExpiresAt:           expiresAt,
	}
	items := []models.OrderItem{{
		ProductID:   1,
		ProductName: "Test Product",
		UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromFloat(10)),
		Quantity:    2,
		TotalPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(20)),
	}}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestUpdateStatusIfGuard(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)
	order := seedOrder(t, repo, "ORD-GUARD-1", 1, constants.OrderStatusPending, nil)

	rows, err := repo.UpdateStatusIf(order.ID, constants.OrderStatusPending, constants.OrderStatusProcessing,
		map[string]interface{}{"payment_status": constants.PaymentStatusPaid})
	if err != nil {
		t.Fatalf("guarded update failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("first transition should match one row, got %d", rows)
	}

	// The losing side of a race sees zero rows.
	rows, err = repo.UpdateStatusIf(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled, nil)
	if err != nil {
		t.Fatalf("stale transition errored: %v", err)
	}
	if rows != 0 {
		t.Fatalf("stale transition must match no rows, got %d", rows)
	}

	var got models.Order
	if err := db.First(&got, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.Status != constants.OrderStatusProcessing {
		t.Fatalf("status want processing, got %s", got.Status)
	}
	if got.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("extra columns must apply with the transition, got %s", got.PaymentStatus)
	}
}

func TestListExpiredPending(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	now := time.Now()
	past := now.Add(-time.Hour)
	older := now.Add(-2 * time.Hour)
	future := now.Add(time.Hour)

	seedOrder(t, repo, "ORD-EXP-1", 1, constants.OrderStatusPending, &past)
	seedOrder(t, repo, "ORD-EXP-2", 1, constants.OrderStatusPending, &older)
	seedOrder(t, repo, "ORD-EXP-3", 1, constants.OrderStatusPending, &future)
	seedOrder(t, repo, "ORD-EXP-4", 1, constants.OrderStatusProcessing, &past)
	seedOrder(t, repo, "ORD-EXP-5", 1, constants.OrderStatusPending, nil)

	orders, err := repo.ListExpiredPending(now, 10)
	if err != nil {
		t.Fatalf("list expired failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expired orders want 2, got %d", len(orders))
	}
	// Oldest deadline first.
	if orders[0].OrderNo != "ORD-EXP-2" || orders[1].OrderNo != "ORD-EXP-1" {
		t.Fatalf("unexpected order: %s, %s", orders[0].OrderNo, orders[1].OrderNo)
	}
	if len(orders[0].Items) != 1 {
		t.Fatalf("items must be preloaded for stock release, got %d", len(orders[0].Items))
	}
}

func TestGetByPaymentReferences(t *testing.T) {
	repo, db := setupOrderRepositoryTest(t)
	order := seedOrder(t, repo, "ORD-REF-1", 7, constants.OrderStatusPending, nil)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
		"payment_intent_id":   "pi_123",
		"checkout_session_id": "cs_456",
	}).Error; err != nil {
		t.Fatalf("attach references failed: %v", err)
	}

	byIntent, err := repo.GetByPaymentIntentID("pi_123")
	if err != nil {
		t.Fatalf("get by intent failed: %v", err)
	}
	if byIntent == nil || byIntent.ID != order.ID {
		t.Fatalf("intent lookup missed the order")
	}

	bySession, err := repo.GetByCheckoutSessionID("cs_456")
	if err != nil {
		t.Fatalf("get by session failed: %v", err)
	}
	if bySession == nil || bySession.ID != order.ID {
		t.Fatalf("session lookup missed the order")
	}

	missing, err := repo.GetByPaymentIntentID("pi_nope")
	if err != nil {
		t.Fatalf("missing intent errored: %v", err)
	}
	if missing != nil {
		t.Fatalf("unknown intent should return nil")
	}
}

func TestListByUserScopesToOwner(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	seedOrder(t, repo, "ORD-OWN-1", 1, constants.OrderStatusPending, nil)
	seedOrder(t, repo, "ORD-OWN-2", 1, constants.OrderStatusCancelled, nil)
	seedOrder(t, repo, "ORD-OWN-3", 2, constants.OrderStatusPending, nil)

	orders, total, err := repo.ListByUser(OrderListFilter{UserID: 1, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by user failed: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("want 2 orders for user 1, got total=%d len=%d", total, len(orders))
	}

	orders, total, err = repo.ListByUser(OrderListFilter{UserID: 1, Status: constants.OrderStatusCancelled, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 1 || orders[0].OrderNo != "ORD-OWN-2" {
		t.Fatalf("status filter missed, total=%d", total)
	}
}
