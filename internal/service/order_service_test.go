package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		nil, nil, nil,
	)
	return svc, db
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, price float64, stockTotal int, active bool) *models.Product {
	t.Helper()
	category := models.Category{Slug: slug + "-cat", Name: "Category " + slug}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		CategoryID: category.ID,
		Slug:       slug,
		Name:       "Product " + slug,
		Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		StockTotal: stockTotal,
		IsActive:   active,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return &product
}

func addCartLine(t *testing.T, db *gorm.DB, userID uint, product *models.Product, quantity int) {
	t.Helper()
	item := models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) *models.Product {
	t.Helper()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return &product
}

func reloadOrder(t *testing.T, db *gorm.DB, id uint) *models.Order {
	t.Helper()
	var order models.Order
	if err := db.First(&order, id).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return &order
}

var testAddress = ShippingAddress{
	Name:       "Pat Doe",
	Line1:      "1 Main St",
	City:       "Springfield",
	PostalCode: "12345",
	Country:    "US",
}

func TestCreateOrderReservesStockAndClearsCart(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "keto-cream", 42.50, 10, true)
	addCartLine(t, db, 1, product, 2)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress, ClientIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending, got %s", order.Status)
	}
	if order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("payment status want pending, got %s", order.PaymentStatus)
	}
	if got := order.TotalAmount.String(); got != "85.00" {
		t.Fatalf("total want 85.00, got %s", got)
	}
	if order.ExpiresAt == nil || !order.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected a future payment deadline, got %v", order.ExpiresAt)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}

	if p := reloadProduct(t, db, product.ID); p.StockLocked != 2 {
		t.Fatalf("stock locked want 2, got %d", p.StockLocked)
	}

	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart should be empty after checkout, got %d lines", cartCount)
	}
}

func TestCreateOrderUntrackedProductSkipsReservation(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "ldn-capsules", 38.00, 0, true)
	addCartLine(t, db, 1, product, 5)

	if _, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if p := reloadProduct(t, db, product.ID); p.StockLocked != 0 {
		t.Fatalf("untracked product must not lock stock, got %d", p.StockLocked)
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)
	if _, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress}); err != ErrCartEmpty {
		t.Fatalf("want ErrCartEmpty, got %v", err)
	}
}

func TestCreateOrderInvalidAddress(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "melatonin-troche", 19.95, 10, true)
	addCartLine(t, db, 1, product, 1)

	addr := testAddress
	addr.PostalCode = "  "
	if _, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: addr}); err != ErrShippingAddressInvalid {
		t.Fatalf("want ErrShippingAddressInvalid, got %v", err)
	}
}

func TestCreateOrderSkipsUnlistedProducts(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	retired := createTestProduct(t, db, "retired-cream", 30.00, 10, false)
	addCartLine(t, db, 1, retired, 1)

	// A cart holding only unlisted products has nothing to check out.
	if _, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress}); err != ErrCartEmpty {
		t.Fatalf("want ErrCartEmpty, got %v", err)
	}

	active := createTestProduct(t, db, "active-cream", 30.00, 10, true)
	addCartLine(t, db, 1, active, 1)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != active.ID {
		t.Fatalf("unlisted lines must not enter the order, got %+v", order.Items)
	}
	if got := order.TotalAmount.String(); got != "30.00" {
		t.Fatalf("total want 30.00, got %s", got)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "short-stock", 12.00, 2, true)
	addCartLine(t, db, 1, product, 3)

	if _, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress}); err != ErrStockInsufficient {
		t.Fatalf("want ErrStockInsufficient, got %v", err)
	}
	if p := reloadProduct(t, db, product.ID); p.StockLocked != 0 {
		t.Fatalf("failed checkout must not leave stock locked, got %d", p.StockLocked)
	}

	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if cartCount != 1 {
		t.Fatalf("cart must survive a failed checkout, got %d lines", cartCount)
	}
}

func TestCancelOrderReleasesStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "cancel-me", 20.00, 10, true)
	addCartLine(t, db, 1, product, 4)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.CancelOrder(1, order.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	got := reloadOrder(t, db, order.ID)
	if got.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled, got %s", got.Status)
	}
	if got.CancelledAt == nil {
		t.Fatalf("cancelled_at not recorded")
	}
	if p := reloadProduct(t, db, product.ID); p.StockLocked != 0 {
		t.Fatalf("cancellation must release locked stock, got %d", p.StockLocked)
	}

	// Cancelling again is a no-op.
	if err := svc.CancelOrder(1, order.ID); err != nil {
		t.Fatalf("repeat cancel should be a no-op, got %v", err)
	}
	if p := reloadProduct(t, db, product.ID); p.StockLocked != 0 {
		t.Fatalf("repeat cancel must not touch stock, got locked=%d", p.StockLocked)
	}
}

func TestCancelOrderWrongUser(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "not-yours", 20.00, 10, true)
	addCartLine(t, db, 1, product, 1)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := svc.CancelOrder(2, order.ID); err != ErrOrderNotFound {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestMarkOrderPaidIdempotent(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "pay-me", 15.00, 10, true)
	addCartLine(t, db, 1, product, 3)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.MarkOrderPaid(order.ID, "card"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	got := reloadOrder(t, db, order.ID)
	if got.Status != constants.OrderStatusProcessing {
		t.Fatalf("status want processing, got %s", got.Status)
	}
	if got.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("payment status want paid, got %s", got.PaymentStatus)
	}
	if got.PaidAt == nil {
		t.Fatalf("paid_at not recorded")
	}
	p := reloadProduct(t, db, product.ID)
	if p.StockLocked != 0 || p.StockSold != 3 {
		t.Fatalf("stock want locked=0 sold=3, got locked=%d sold=%d", p.StockLocked, p.StockSold)
	}

	// The webhook replaying the confirmation converges without side effects.
	if err := svc.MarkOrderPaid(order.ID, "checkout"); err != nil {
		t.Fatalf("replayed mark paid should converge, got %v", err)
	}
	p = reloadProduct(t, db, product.ID)
	if p.StockSold != 3 {
		t.Fatalf("replay must not consume stock again, got sold=%d", p.StockSold)
	}
	if got := reloadOrder(t, db, order.ID); got.PaymentMethod != "card" {
		t.Fatalf("replay must not rewrite the payment method, got %s", got.PaymentMethod)
	}
}

func TestMarkOrderPaidAfterCancel(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "late-payment", 25.00, 10, true)
	addCartLine(t, db, 1, product, 2)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := svc.CancelOrder(1, order.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if err := svc.MarkOrderPaid(order.ID, "card"); err != nil {
		t.Fatalf("late payment handling failed: %v", err)
	}
	got := reloadOrder(t, db, order.ID)
	if got.Status != constants.OrderStatusCancelled {
		t.Fatalf("cancelled status must survive, got %s", got.Status)
	}
	if got.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("late payment must be recorded, got %s", got.PaymentStatus)
	}
	if p := reloadProduct(t, db, product.ID); p.StockSold != 0 {
		t.Fatalf("late payment must not consume stock, got sold=%d", p.StockSold)
	}
}

func TestMarkOrderPaymentFailedCancelsOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "declined-card", 10.00, 10, true)
	addCartLine(t, db, 1, product, 2)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := svc.MarkOrderPaymentFailed(order.ID); err != nil {
		t.Fatalf("mark failed errored: %v", err)
	}
	got := reloadOrder(t, db, order.ID)
	if got.Status != constants.OrderStatusCancelled {
		t.Fatalf("failed payment must cancel the order, got %s", got.Status)
	}
	if got.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("payment status want failed, got %s", got.PaymentStatus)
	}
	if got.CancelledAt == nil {
		t.Fatalf("cancelled_at not recorded")
	}
	if p := reloadProduct(t, db, product.ID); p.StockLocked != 0 {
		t.Fatalf("failed payment must release stock, got locked=%d", p.StockLocked)
	}

	// A redelivered failure event converges without side effects.
	if err := svc.MarkOrderPaymentFailed(order.ID); err != nil {
		t.Fatalf("replayed failure errored: %v", err)
	}
	if p := reloadProduct(t, db, product.ID); p.StockLocked != 0 || p.StockSold != 0 {
		t.Fatalf("replay must not touch stock, got locked=%d sold=%d", p.StockLocked, p.StockSold)
	}
}

func TestMarkOrderPaymentFailedAfterPaidIsStale(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "stale-failure", 10.00, 10, true)
	addCartLine(t, db, 1, product, 1)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if err := svc.MarkOrderPaid(order.ID, "card"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	if err := svc.MarkOrderPaymentFailed(order.ID); err != nil {
		t.Fatalf("stale failure report errored: %v", err)
	}
	got := reloadOrder(t, db, order.ID)
	if got.Status != constants.OrderStatusProcessing || got.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("a paid order must shrug off a late failure event, got %s/%s", got.Status, got.PaymentStatus)
	}
}

func TestAttachPaymentKeepsOneReference(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "switch-flow", 11.00, 10, true)
	addCartLine(t, db, 1, product, 1)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.AttachPayment(order.ID, "checkout", "", "cs_1"); err != nil {
		t.Fatalf("attach session failed: %v", err)
	}
	got := reloadOrder(t, db, order.ID)
	if got.CheckoutSessionID != "cs_1" || got.PaymentMethod != "checkout" {
		t.Fatalf("unexpected references: %+v", got)
	}

	// Switching to a payment intent clears the stale session reference.
	if err := svc.AttachPayment(order.ID, "card", "pi_1", ""); err != nil {
		t.Fatalf("attach intent failed: %v", err)
	}
	got = reloadOrder(t, db, order.ID)
	if got.PaymentIntentID != "pi_1" {
		t.Fatalf("intent reference want pi_1, got %s", got.PaymentIntentID)
	}
	if got.CheckoutSessionID != "" {
		t.Fatalf("stale session reference must be cleared, got %s", got.CheckoutSessionID)
	}

	if err := svc.MarkOrderPaid(order.ID, "card"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if err := svc.AttachPayment(order.ID, "checkout", "", "cs_2"); err != ErrOrderNotPayable {
		t.Fatalf("attaching to a paid order want ErrOrderNotPayable, got %v", err)
	}
}

func TestCancelExpiredOrder(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "expired-order", 18.00, 10, true)
	addCartLine(t, db, 1, product, 2)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// Not yet expired: no change.
	if err := svc.CancelExpiredOrder(order.ID); err != nil {
		t.Fatalf("premature expiry check errored: %v", err)
	}
	if got := reloadOrder(t, db, order.ID); got.Status != constants.OrderStatusPending {
		t.Fatalf("unexpired order must stay pending, got %s", got.Status)
	}

	past := time.Now().Add(-time.Minute)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate expiry failed: %v", err)
	}

	if err := svc.CancelExpiredOrder(order.ID); err != nil {
		t.Fatalf("expiry cancel failed: %v", err)
	}
	if got := reloadOrder(t, db, order.ID); got.Status != constants.OrderStatusCancelled {
		t.Fatalf("expired order want cancelled, got %s", got.Status)
	}
	if p := reloadProduct(t, db, product.ID); p.StockLocked != 0 {
		t.Fatalf("expiry must release stock, got locked=%d", p.StockLocked)
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "ship-me", 22.00, 10, true)
	addCartLine(t, db, 1, product, 1)

	order, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// pending cannot jump straight to shipped.
	if err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusShipped); err != ErrOrderStatusInvalid {
		t.Fatalf("want ErrOrderStatusInvalid, got %v", err)
	}

	if err := svc.MarkOrderPaid(order.ID, "card"); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusShipped); err != nil {
		t.Fatalf("processing -> shipped failed: %v", err)
	}
	if err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusDelivered); err != nil {
		t.Fatalf("shipped -> delivered failed: %v", err)
	}

	// Delivered is terminal; repeating it is accepted.
	if err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusDelivered); err != nil {
		t.Fatalf("repeating the current status should be a no-op, got %v", err)
	}
	if err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusCancelled); err != ErrOrderStatusInvalid {
		t.Fatalf("delivered -> cancelled must be rejected, got %v", err)
	}
}

func TestCreateOrderInFlightGuard(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "double-submit", 9.00, 10, true)
	addCartLine(t, db, 1, product, 1)

	svc.createGuard.Store(uint(1), struct{}{})
	if _, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress}); err != ErrOrderCreateInFlight {
		t.Fatalf("want ErrOrderCreateInFlight, got %v", err)
	}
	svc.createGuard.Delete(uint(1))

	if _, err := svc.CreateOrder(1, CreateOrderInput{ShippingAddress: testAddress}); err != nil {
		t.Fatalf("create after guard release failed: %v", err)
	}
}
