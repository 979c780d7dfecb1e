package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"
)

// SettingService reads and writes site-wide settings.
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService creates a setting service.
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetConfig returns the site config merged over defaults.
func (s *SettingService) GetConfig(defaults map[string]interface{}) (map[string]interface{}, error) {
	data := make(map[string]interface{})
	for k, v := range defaults {
		data[k] = v
	}

	setting, err := s.repo.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return data, nil
	}

	for k, v := range setting.ValueJSON {
		data[k] = v
	}
	return data, nil
}

// GetByKey returns a setting value.
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update stores a setting value.
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	normalized := normalizeSettingValueByKey(key, value)

	setting, err := s.repo.Upsert(key, normalized)
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// SiteCurrency returns the configured currency code, empty when unset.
func (s *SettingService) SiteCurrency() string {
	if s == nil {
		return ""
	}
	value, err := s.GetByKey(constants.SettingKeySiteConfig)
	if err != nil || value == nil {
		return ""
	}
	raw, ok := value[constants.SettingFieldSiteCurrency]
	if !ok {
		return ""
	}
	currency, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ConfirmExpireMinutes returns the order confirmation window override.
func (s *SettingService) ConfirmExpireMinutes(defaultValue int) (int, error) {
	if s == nil {
		return defaultValue, nil
	}
	value, err := s.GetByKey(constants.SettingKeyOrderConfig)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}
	raw, ok := value[constants.SettingFieldConfirmExpireMins]
	if !ok {
		return defaultValue, nil
	}
	minutes, err := parseSettingInt(raw)
	if err != nil {
		return defaultValue, err
	}
	if minutes <= 0 {
		return defaultValue, nil
	}
	return minutes, nil
}

// LowStockThreshold returns the admin low-stock alert threshold.
func (s *SettingService) LowStockThreshold(defaultValue int) (int, error) {
	if s == nil {
		return defaultValue, nil
	}
	value, err := s.GetByKey(constants.SettingKeyOrderConfig)
	if err != nil {
		return defaultValue, err
	}
	if value == nil {
		return defaultValue, nil
	}
	raw, ok := value[constants.SettingFieldLowStockThreshold]
	if !ok {
		return defaultValue, nil
	}
	threshold, err := parseSettingInt(raw)
	if err != nil {
		return defaultValue, err
	}
	if threshold < 0 {
		return defaultValue, nil
	}
	return threshold, nil
}

func normalizeSettingValueByKey(key string, value map[string]interface{}) map[string]interface{} {
	if value == nil {
		return map[string]interface{}{}
	}
	normalized := make(map[string]interface{}, len(value))
	for k, v := range value {
		normalized[k] = v
	}

	switch key {
	case constants.SettingKeySiteConfig:
		if raw, ok := normalized[constants.SettingFieldSiteCurrency]; ok {
			if currency, ok := raw.(string); ok {
				normalized[constants.SettingFieldSiteCurrency] = strings.ToUpper(strings.TrimSpace(currency))
			}
		}
	case constants.SettingKeyOrderConfig:
		for _, field := range []string{constants.SettingFieldConfirmExpireMins, constants.SettingFieldLowStockThreshold} {
			raw, ok := normalized[field]
			if !ok {
				continue
			}
			parsed, err := parseSettingInt(raw)
			if err != nil || parsed < 0 {
				delete(normalized, field)
				continue
			}
			normalized[field] = parsed
		}
	}
	return normalized
}

func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := v.Float64(); err == nil {
			return int(f), nil
		}
		return 0, fmt.Errorf("invalid json number")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("unsupported value type")
	}
}
