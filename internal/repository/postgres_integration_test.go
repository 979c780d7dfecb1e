//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.OfferItem{},
		&models.Offer{},
		&models.Product{},
		&models.Branch{},
		&models.CartRecord{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Branch{},
		&models.Product{},
		&models.Offer{},
		&models.OfferItem{},
		&models.CartRecord{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresProductSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	branch := &models.Branch{Slug: "pg-centro", Name: "Centro", IsActive: true}
	if err := db.Create(branch).Error; err != nil {
		t.Fatalf("create branch failed: %v", err)
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		BranchID:    branch.ID,
		Slug:        "pg-medialunas",
		Name:        "Medialunas de Manteca",
		Description: "docena horneada cada manana",
		Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(5200)),
		Stock:       12,
		IsActive:    true,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	// Case-insensitive search must work through ILIKE on postgres.
	rows, total, err := productRepo.List(ProductListFilter{Page: 1, Search: "MANTECA"})
	if err != nil {
		t.Fatalf("product search by name failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("product search by name want 1 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = productRepo.List(ProductListFilter{Page: 1, Search: "horneada"})
	if err != nil {
		t.Fatalf("product search by description failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("product search by description want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresOrderAdminFilters(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	branch := &models.Branch{Slug: "pg-norte", Name: "Norte", IsActive: true}
	if err := db.Create(branch).Error; err != nil {
		t.Fatalf("create branch failed: %v", err)
	}

	orderRepo := NewOrderRepository(db)
	pending := &models.Order{
		OrderNo:     "HN-PG-001",
		GuestToken:  "pg-token",
		BranchID:    branch.ID,
		Status:      constants.OrderStatusPending,
		Currency:    constants.SiteCurrencyDefault,
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(5200)),
		CreatedAt:   now,
	}
	if err := orderRepo.Create(pending, []models.OrderItem{
		{ProductID: 1, Name: "Medialunas", Quantity: 1,
			UnitPrice:  models.NewMoneyFromDecimal(decimal.NewFromInt(5200)),
			TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(5200))},
	}); err != nil {
		t.Fatalf("create pending order failed: %v", err)
	}
	delivered := &models.Order{
		OrderNo:     "HN-PG-002",
		UserID:      9,
		BranchID:    branch.ID,
		Status:      constants.OrderStatusDelivered,
		Currency:    constants.SiteCurrencyDefault,
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(3800)),
		CreatedAt:   now.Add(-48 * time.Hour),
	}
	if err := orderRepo.Create(delivered, nil); err != nil {
		t.Fatalf("create delivered order failed: %v", err)
	}

	rows, total, err := orderRepo.ListAdmin(OrderListFilter{
		Page:     1,
		BranchID: branch.ID,
		Status:   constants.OrderStatusPending,
	})
	if err != nil {
		t.Fatalf("admin list by status failed: %v", err)
	}
	if total != 1 || rows[0].OrderNo != "HN-PG-001" {
		t.Fatalf("status filter want HN-PG-001 got: %+v", rows)
	}

	from := now.Add(-time.Hour)
	rows, total, err = orderRepo.ListAdmin(OrderListFilter{
		Page:        1,
		BranchID:    branch.ID,
		CreatedFrom: &from,
	})
	if err != nil {
		t.Fatalf("admin list by date failed: %v", err)
	}
	if total != 1 || rows[0].OrderNo != "HN-PG-001" {
		t.Fatalf("date filter want HN-PG-001 got: %+v", rows)
	}

	guestRows, guestTotal, err := orderRepo.ListByGuest("pg-token", 1, 10)
	if err != nil {
		t.Fatalf("guest list failed: %v", err)
	}
	if guestTotal != 1 || len(guestRows) != 1 {
		t.Fatalf("guest list want 1 got total=%d len=%d", guestTotal, len(guestRows))
	}
}
