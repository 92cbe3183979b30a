package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
	return svc, db
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "cart-add", 10.00, 0, true)

	if err := svc.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := svc.AddItem(1, product.ID, 3); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	var item models.CartItem
	if err := db.Where("user_id = ? AND product_id = ?", 1, product.ID).First(&item).Error; err != nil {
		t.Fatalf("load cart item failed: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("quantity want 5, got %d", item.Quantity)
	}
}

func TestAddItemKeepsFirstPriceSnapshot(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "cart-snapshot", 10.00, 0, true)

	if err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", "14.00").Error; err != nil {
		t.Fatalf("reprice product failed: %v", err)
	}
	if err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	var item models.CartItem
	if err := db.Where("user_id = ? AND product_id = ?", 1, product.ID).First(&item).Error; err != nil {
		t.Fatalf("load cart item failed: %v", err)
	}
	if got := item.UnitPrice.String(); got != "10.00" {
		t.Fatalf("price snapshot from the first add must survive, got %s", got)
	}
}

func TestAddItemRejectsUnavailableProduct(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	inactive := createTestProduct(t, db, "cart-inactive", 10.00, 0, false)

	if err := svc.AddItem(1, inactive.ID, 1); err != ErrProductNotAvailable {
		t.Fatalf("want ErrProductNotAvailable, got %v", err)
	}
	if err := svc.AddItem(1, 9999, 1); err != ErrProductNotAvailable {
		t.Fatalf("missing product want ErrProductNotAvailable, got %v", err)
	}
	if err := svc.AddItem(1, 0, 1); err != ErrInvalidCartItem {
		t.Fatalf("zero product id want ErrInvalidCartItem, got %v", err)
	}
}

func TestSetQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "cart-set", 10.00, 0, true)

	if err := svc.SetQuantity(1, product.ID, 4); err != ErrInvalidCartItem {
		t.Fatalf("set on a missing line want ErrInvalidCartItem, got %v", err)
	}

	if err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.SetQuantity(1, product.ID, 4); err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}

	var item models.CartItem
	if err := db.Where("user_id = ? AND product_id = ?", 1, product.ID).First(&item).Error; err != nil {
		t.Fatalf("load cart item failed: %v", err)
	}
	if item.Quantity != 4 {
		t.Fatalf("quantity want 4, got %d", item.Quantity)
	}

	// Zero removes the line.
	if err := svc.SetQuantity(1, product.ID, 0); err != nil {
		t.Fatalf("zero quantity failed: %v", err)
	}
	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("line should be removed, got %d", count)
	}
}

func TestGetCartTotals(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	productA := createTestProduct(t, db, "cart-total-a", 10.00, 0, true)
	productB := createTestProduct(t, db, "cart-total-b", 2.50, 0, true)

	if err := svc.AddItem(1, productA.ID, 2); err != nil {
		t.Fatalf("add a failed: %v", err)
	}
	if err := svc.AddItem(1, productB.ID, 3); err != nil {
		t.Fatalf("add b failed: %v", err)
	}

	summary, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("items want 2, got %d", len(summary.Items))
	}
	if summary.TotalQuantity != 5 {
		t.Fatalf("total quantity want 5, got %d", summary.TotalQuantity)
	}
	if got := summary.TotalAmount.String(); got != "27.50" {
		t.Fatalf("total amount want 27.50, got %s", got)
	}
}

func TestGetCartHidesUnlistedProducts(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "cart-hidden", 10.00, 0, true)

	if err := svc.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("unlist product failed: %v", err)
	}

	summary, err := svc.GetCart(1)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(summary.Items) != 0 || summary.TotalQuantity != 0 {
		t.Fatalf("unlisted lines must be hidden, got %+v", summary)
	}

	// The row itself stays until the cart is cleared.
	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("hidden line should still exist, got %d", count)
	}
}

func TestClearCart(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "cart-clear", 10.00, 0, true)

	if err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.AddItem(2, product.ID, 1); err != nil {
		t.Fatalf("add for second user failed: %v", err)
	}
	if err := svc.ClearCart(1); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 2).Count(&count).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("other users' carts must survive, got %d", count)
	}
}
