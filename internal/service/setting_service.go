package service

import (
	"strconv"

	"github.com/compoundrx/storefront/internal/constants"
	"github.com/compoundrx/storefront/internal/models"
	"github.com/compoundrx/storefront/internal/repository"
)

// SettingService reads and writes admin-editable site configuration.
type SettingService struct {
	settingRepo repository.SettingRepository
}

// NewSettingService builds a setting service.
func NewSettingService(settingRepo repository.SettingRepository) *SettingService {
	return &SettingService{settingRepo: settingRepo}
}

// Get returns the value document for a key, or an empty document.
func (s *SettingService) Get(key string) (models.JSON, error) {
	setting, err := s.settingRepo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil || setting.ValueJSON == nil {
		return models.JSON{}, nil
	}
	return setting.ValueJSON, nil
}

// Update merges the given fields into the stored document. Existing keys not
// present in the update survive.
func (s *SettingService) Update(key string, value models.JSON) (models.JSON, error) {
	current, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	for k, v := range value {
		current[k] = v
	}
	setting, err := s.settingRepo.Upsert(key, current)
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// parseSettingInt reads an integer out of a JSON document field, tolerating
// the number/string ambiguity of decoded JSON.
func parseSettingInt(doc models.JSON, field string) (int, bool) {
	raw, ok := doc[field]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// GetOrderPaymentExpireMinutes returns the admin-configured payment window,
// or 0 when unset so the caller falls back to configuration.
func (s *SettingService) GetOrderPaymentExpireMinutes() int {
	doc, err := s.Get(constants.SettingKeyOrderConfig)
	if err != nil {
		return 0
	}
	minutes, ok := parseSettingInt(doc, "payment_expire_minutes")
	if !ok || minutes <= 0 {
		return 0
	}
	return minutes
}

// GetLowStockThreshold returns the stock level below which a tracked product
// counts as low, defaulting to 5.
func (s *SettingService) GetLowStockThreshold() int {
	doc, err := s.Get(constants.SettingKeySiteConfig)
	if err != nil {
		return 5
	}
	threshold, ok := parseSettingInt(doc, "low_stock_threshold")
	if !ok || threshold <= 0 {
		return 5
	}
	return threshold
}
