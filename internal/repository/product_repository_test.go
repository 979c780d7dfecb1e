package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/hornada/hornada/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepoTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:product_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Branch{}, &models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewProductRepository(db), db
}

func seedRepoProduct(t *testing.T, repo *GormProductRepository, branchID uint, slug string, stock int, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		BranchID: branchID,
		Slug:     slug,
		Name:     slug,
		Price:    models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
		Stock:    stock,
		IsActive: active,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestProductRepositoryReserveStockGuard(t *testing.T) {
	repo, _ := setupProductRepoTest(t)
	product := seedRepoProduct(t, repo, 1, "medialunas", 5, true)

	affected, err := repo.ReserveStock(product.ID, 3)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("reserve should hit one row, got %d", affected)
	}

	// Only 2 left; asking for 3 must not go negative.
	affected, err = repo.ReserveStock(product.ID, 3)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("guard should reject over-reserve, got %d rows", affected)
	}

	reloaded, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Stock != 2 {
		t.Fatalf("stock want 2 got %d", reloaded.Stock)
	}

	if _, err := repo.ReserveStock(product.ID, 0); err == nil {
		t.Fatalf("zero quantity reserve should error")
	}
}

func TestProductRepositoryRestoreStock(t *testing.T) {
	repo, _ := setupProductRepoTest(t)
	product := seedRepoProduct(t, repo, 1, "pan", 2, true)

	if _, err := repo.RestoreStock(product.ID, 4); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	reloaded, err := repo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Stock != 6 {
		t.Fatalf("stock want 6 got %d", reloaded.Stock)
	}
}

func TestProductRepositoryListLowStock(t *testing.T) {
	repo, _ := setupProductRepoTest(t)
	seedRepoProduct(t, repo, 1, "agotado", 0, true)
	seedRepoProduct(t, repo, 1, "justo", 5, true)
	seedRepoProduct(t, repo, 1, "sobrado", 6, true)
	seedRepoProduct(t, repo, 1, "inactivo", 0, false)
	seedRepoProduct(t, repo, 2, "otra-sucursal", 1, true)

	rows, err := repo.ListLowStock(1, 5)
	if err != nil {
		t.Fatalf("list low stock failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 low stock rows, got %d: %+v", len(rows), rows)
	}
	// Ordered by stock ascending.
	if rows[0].Slug != "agotado" || rows[1].Slug != "justo" {
		t.Fatalf("unexpected order: %s, %s", rows[0].Slug, rows[1].Slug)
	}

	// Branch 0 means all branches.
	rows, err = repo.ListLowStock(0, 5)
	if err != nil {
		t.Fatalf("list low stock failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows across branches, got %d", len(rows))
	}
}

func TestProductRepositoryListFilters(t *testing.T) {
	repo, _ := setupProductRepoTest(t)
	seedRepoProduct(t, repo, 1, "medialunas-docena", 10, true)
	seedRepoProduct(t, repo, 1, "pan-de-campo", 0, true)
	seedRepoProduct(t, repo, 2, "medialunas-norte", 3, false)

	rows, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 10, BranchID: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("branch filter want 2 got total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ProductListFilter{Page: 1, PageSize: 10, BranchID: 1, InStock: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || rows[0].Slug != "medialunas-docena" {
		t.Fatalf("in-stock filter want medialunas-docena got: %+v", rows)
	}

	rows, total, err = repo.List(ProductListFilter{Page: 1, PageSize: 10, OnlyActive: true, Search: "medialunas"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || rows[0].Slug != "medialunas-docena" {
		t.Fatalf("search filter want medialunas-docena got: %+v", rows)
	}
}

func TestProductRepositoryCountBySlug(t *testing.T) {
	repo, _ := setupProductRepoTest(t)
	product := seedRepoProduct(t, repo, 1, "torta", 5, true)

	count, err := repo.CountBySlug("torta", nil)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("count want 1 got %d", count)
	}

	count, err = repo.CountBySlug("torta", &product.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("self-excluded count want 0 got %d", count)
	}
}
