package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

func setupSettingServiceTest(t *testing.T) *SettingService {
	t.Helper()
	dsn := fmt.Sprintf("file:setting_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewSettingService(repository.NewSettingRepository(db))
}

func TestSettingUpdateMergesFields(t *testing.T) {
	svc := setupSettingServiceTest(t)

	if _, err := svc.Update(constants.SettingKeySiteConfig, models.JSON{"site_name": "CompoundRx", "low_stock_threshold": 3}); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	if _, err := svc.Update(constants.SettingKeySiteConfig, models.JSON{"site_name": "CompoundRx Pharmacy"}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	doc, err := svc.Get(constants.SettingKeySiteConfig)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if doc["site_name"] != "CompoundRx Pharmacy" {
		t.Fatalf("site_name want updated value, got %v", doc["site_name"])
	}
	if _, ok := doc["low_stock_threshold"]; !ok {
		t.Fatalf("untouched fields must survive a partial update")
	}
}

func TestSettingGetMissingKey(t *testing.T) {
	svc := setupSettingServiceTest(t)
	doc, err := svc.Get("nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("missing key should read as an empty document, got %v", doc)
	}
}

func TestParseSettingInt(t *testing.T) {
	doc := models.JSON{
		"as_float":  float64(7),
		"as_int":    3,
		"as_string": "12",
		"bad":       "not a number",
		"wrong":     true,
	}
	cases := []struct {
		field  string
		want   int
		wantOK bool
	}{
		{"as_float", 7, true},
		{"as_int", 3, true},
		{"as_string", 12, true},
		{"bad", 0, false},
		{"wrong", 0, false},
		{"absent", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseSettingInt(doc, tc.field)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("field %s: want (%d,%v), got (%d,%v)", tc.field, tc.want, tc.wantOK, got, ok)
		}
	}
}

func TestGetOrderPaymentExpireMinutes(t *testing.T) {
	svc := setupSettingServiceTest(t)

	if got := svc.GetOrderPaymentExpireMinutes(); got != 0 {
		t.Fatalf("unset window should read 0, got %d", got)
	}
	if _, err := svc.Update(constants.SettingKeyOrderConfig, models.JSON{"payment_expire_minutes": 30}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := svc.GetOrderPaymentExpireMinutes(); got != 30 {
		t.Fatalf("window want 30, got %d", got)
	}
	if _, err := svc.Update(constants.SettingKeyOrderConfig, models.JSON{"payment_expire_minutes": -5}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := svc.GetOrderPaymentExpireMinutes(); got != 0 {
		t.Fatalf("non-positive window should read 0, got %d", got)
	}
}

func TestGetLowStockThreshold(t *testing.T) {
	svc := setupSettingServiceTest(t)

	if got := svc.GetLowStockThreshold(); got != 5 {
		t.Fatalf("default threshold want 5, got %d", got)
	}
	if _, err := svc.Update(constants.SettingKeySiteConfig, models.JSON{"low_stock_threshold": 2}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := svc.GetLowStockThreshold(); got != 2 {
		t.Fatalf("threshold want 2, got %d", got)
	}
}
