package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
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
	models.DB = db
	return NewSettingService(repository.NewSettingRepository(db))
}

func TestSettingServiceSiteCurrencyNormalizes(t *testing.T) {
	svc := setupSettingServiceTest(t)

	if got := svc.SiteCurrency(); got != "" {
		t.Fatalf("unset currency want empty got %s", got)
	}

	if _, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		constants.SettingFieldSiteCurrency: " ars ",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got := svc.SiteCurrency(); got != "ARS" {
		t.Fatalf("currency want ARS got %s", got)
	}
}

func TestSettingServiceConfirmExpireMinutes(t *testing.T) {
	svc := setupSettingServiceTest(t)

	minutes, err := svc.ConfirmExpireMinutes(30)
	if err != nil || minutes != 30 {
		t.Fatalf("default want 30 got %d err=%v", minutes, err)
	}

	// String values coming from the admin UI parse too.
	if _, err := svc.Update(constants.SettingKeyOrderConfig, map[string]interface{}{
		constants.SettingFieldConfirmExpireMins: "45",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	minutes, err = svc.ConfirmExpireMinutes(30)
	if err != nil || minutes != 45 {
		t.Fatalf("override want 45 got %d err=%v", minutes, err)
	}

	// Garbage overrides are dropped at write time, falling back to default.
	if _, err := svc.Update(constants.SettingKeyOrderConfig, map[string]interface{}{
		constants.SettingFieldConfirmExpireMins: "soon",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	minutes, err = svc.ConfirmExpireMinutes(30)
	if err != nil || minutes != 30 {
		t.Fatalf("invalid override should fall back to 30, got %d err=%v", minutes, err)
	}
}

func TestSettingServiceLowStockThreshold(t *testing.T) {
	svc := setupSettingServiceTest(t)

	threshold, err := svc.LowStockThreshold(5)
	if err != nil || threshold != 5 {
		t.Fatalf("default want 5 got %d err=%v", threshold, err)
	}

	if _, err := svc.Update(constants.SettingKeyOrderConfig, map[string]interface{}{
		constants.SettingFieldLowStockThreshold: float64(8),
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	threshold, err = svc.LowStockThreshold(5)
	if err != nil || threshold != 8 {
		t.Fatalf("override want 8 got %d err=%v", threshold, err)
	}

	// Zero is a valid threshold: alert only on full depletion.
	if _, err := svc.Update(constants.SettingKeyOrderConfig, map[string]interface{}{
		constants.SettingFieldLowStockThreshold: 0,
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	threshold, err = svc.LowStockThreshold(5)
	if err != nil || threshold != 0 {
		t.Fatalf("zero override want 0 got %d err=%v", threshold, err)
	}
}

func TestSettingServiceGetConfigMergesDefaults(t *testing.T) {
	svc := setupSettingServiceTest(t)

	if _, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"site_name": "Hornada",
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	merged, err := svc.GetConfig(map[string]interface{}{
		"site_name":                        "fallback",
		constants.SettingFieldSiteCurrency: constants.SiteCurrencyDefault,
	})
	if err != nil {
		t.Fatalf("get config failed: %v", err)
	}
	if merged["site_name"] != "Hornada" {
		t.Fatalf("stored value should win, got %v", merged["site_name"])
	}
	if merged[constants.SettingFieldSiteCurrency] != constants.SiteCurrencyDefault {
		t.Fatalf("default should fill the gap, got %v", merged[constants.SettingFieldSiteCurrency])
	}
}
