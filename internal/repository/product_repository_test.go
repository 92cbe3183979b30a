package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/compoundrx/storefront/internal/models"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewProductRepository(db), db
}

func seedProduct(t *testing.T, db *gorm.DB, slug string, stockTotal, stockLocked, stockSold int, active bool) *models.Product {
	t.Helper()
	category := models.Category{Slug: slug + "-cat", Name: "Category " + slug}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	product := models.Product{
		CategoryID:  category.ID,
		Slug:        slug,
		Name:        "Product " + slug,
		Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(10)),
		StockTotal:  stockTotal,
		StockLocked: stockLocked,
		StockSold:   stockSold,
		IsActive:    active,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return &product
}

func stockBuckets(t *testing.T, db *gorm.DB, id uint) (total, locked, sold int) {
	t.Helper()
	var product models.Product
	if err := db.First(&product, id).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product.StockTotal, product.StockLocked, product.StockSold
}

func TestReserveStock(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := seedProduct(t, db, "reserve", 10, 0, 0, true)

	rows, err := repo.ReserveStock(product.ID, 4)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("reserve should match one row, got %d", rows)
	}
	if _, locked, _ := stockBuckets(t, db, product.ID); locked != 4 {
		t.Fatalf("locked want 4, got %d", locked)
	}

	// Only 6 left; asking for 7 matches nothing.
	rows, err = repo.ReserveStock(product.ID, 7)
	if err != nil {
		t.Fatalf("oversized reserve errored: %v", err)
	}
	if rows != 0 {
		t.Fatalf("oversized reserve must match no rows, got %d", rows)
	}
	if _, locked, _ := stockBuckets(t, db, product.ID); locked != 4 {
		t.Fatalf("failed reserve must not change stock, got locked=%d", locked)
	}
}

func TestReserveStockUntrackedProduct(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := seedProduct(t, db, "untracked", 0, 0, 0, true)

	rows, err := repo.ReserveStock(product.ID, 1)
	if err != nil {
		t.Fatalf("reserve errored: %v", err)
	}
	if rows != 0 {
		t.Fatalf("untracked product must not reserve, got %d rows", rows)
	}
}

func TestReserveStockInvalidParams(t *testing.T) {
	repo, _ := setupProductRepositoryTest(t)
	if _, err := repo.ReserveStock(0, 1); err == nil {
		t.Fatalf("zero product id must error")
	}
	if _, err := repo.ReserveStock(1, 0); err == nil {
		t.Fatalf("zero quantity must error")
	}
}

func TestReleaseStock(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := seedProduct(t, db, "release", 10, 3, 0, true)

	rows, err := repo.ReleaseStock(product.ID, 3)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("release should match one row, got %d", rows)
	}
	if _, locked, _ := stockBuckets(t, db, product.ID); locked != 0 {
		t.Fatalf("locked want 0, got %d", locked)
	}

	// Nothing locked anymore; a second release matches nothing.
	rows, err = repo.ReleaseStock(product.ID, 3)
	if err != nil {
		t.Fatalf("repeat release errored: %v", err)
	}
	if rows != 0 {
		t.Fatalf("repeat release must match no rows, got %d", rows)
	}
}

func TestConsumeStock(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := seedProduct(t, db, "consume", 10, 5, 1, true)

	rows, err := repo.ConsumeStock(product.ID, 5)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("consume should match one row, got %d", rows)
	}
	total, locked, sold := stockBuckets(t, db, product.ID)
	if total != 10 || locked != 0 || sold != 6 {
		t.Fatalf("buckets want 10/0/6, got %d/%d/%d", total, locked, sold)
	}

	rows, err = repo.ConsumeStock(product.ID, 1)
	if err != nil {
		t.Fatalf("over-consume errored: %v", err)
	}
	if rows != 0 {
		t.Fatalf("consuming more than locked must match no rows, got %d", rows)
	}
}

func TestAdjustStockTotal(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := seedProduct(t, db, "adjust", 10, 2, 3, true)

	rows, err := repo.AdjustStockTotal(product.ID, 5)
	if err != nil {
		t.Fatalf("adjust up failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("adjust should match one row, got %d", rows)
	}
	if total, _, _ := stockBuckets(t, db, product.ID); total != 15 {
		t.Fatalf("total want 15, got %d", total)
	}

	// 15 total with 2 locked + 3 sold: shrinking by 11 would strand the
	// committed units, so it matches nothing.
	rows, err = repo.AdjustStockTotal(product.ID, -11)
	if err != nil {
		t.Fatalf("adjust down errored: %v", err)
	}
	if rows != 0 {
		t.Fatalf("shrink below locked+sold must match no rows, got %d", rows)
	}

	rows, err = repo.AdjustStockTotal(product.ID, -10)
	if err != nil {
		t.Fatalf("valid shrink failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("valid shrink should match one row, got %d", rows)
	}
	if total, _, _ := stockBuckets(t, db, product.ID); total != 5 {
		t.Fatalf("total want 5, got %d", total)
	}
}

func TestCountLowStock(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	// Availability: low-a has 2, low-b has 10, low-c is untracked, low-d has 0.
	seedProduct(t, db, "low-a", 10, 5, 3, true)
	seedProduct(t, db, "low-b", 10, 0, 0, true)
	seedProduct(t, db, "low-c", 0, 0, 0, true)
	seedProduct(t, db, "low-d", 5, 2, 3, true)

	count, err := repo.CountLowStock(2)
	if err != nil {
		t.Fatalf("count low stock failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("low stock count want 2, got %d", count)
	}
}

func TestListFiltersByStockStatus(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	seedProduct(t, db, "list-unlimited", 0, 0, 0, true)
	seedProduct(t, db, "list-in-stock", 10, 2, 3, true)
	seedProduct(t, db, "list-out", 5, 2, 3, true)

	cases := []struct {
		status string
		want   string
	}{
		{"unlimited", "list-unlimited"},
		{"in_stock", "list-in-stock"},
		{"out_of_stock", "list-out"},
	}
	for _, tc := range cases {
		products, total, err := repo.List(ProductListFilter{StockStatus: tc.status, Page: 1, PageSize: 10})
		if err != nil {
			t.Fatalf("list %s failed: %v", tc.status, err)
		}
		if total != 1 || len(products) != 1 || products[0].Slug != tc.want {
			t.Fatalf("filter %s: want only %s, got total=%d products=%v", tc.status, tc.want, total, products)
		}
	}
}
