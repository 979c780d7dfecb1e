package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOfferServiceTest(t *testing.T) (*OfferService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:offer_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Branch{},
		&models.Product{},
		&models.Offer{},
		&models.OfferItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	svc := NewOfferService(
		repository.NewOfferRepository(db),
		repository.NewProductRepository(db),
		repository.NewBranchRepository(db),
	)
	return svc, db
}

func TestAvailableBundles(t *testing.T) {
	offer := &models.Offer{
		Items: []models.OfferItem{
			{PerBundle: 1, Product: &models.Product{Stock: 5, IsActive: true}},
			{PerBundle: 2, Product: &models.Product{Stock: 7, IsActive: true}},
		},
	}
	if got := AvailableBundles(offer); got != 3 {
		t.Fatalf("bundles want 3 got %d", got)
	}

	// An inactive constituent kills the whole bundle.
	offer.Items[0].Product.IsActive = false
	if got := AvailableBundles(offer); got != 0 {
		t.Fatalf("inactive constituent should yield 0, got %d", got)
	}

	// PerBundle 0 behaves as one per bundle.
	legacy := &models.Offer{
		Items: []models.OfferItem{
			{PerBundle: 0, Product: &models.Product{Stock: 4, IsActive: true}},
		},
	}
	if got := AvailableBundles(legacy); got != 4 {
		t.Fatalf("legacy shape bundles want 4 got %d", got)
	}

	if got := AvailableBundles(nil); got != 0 {
		t.Fatalf("nil offer bundles want 0 got %d", got)
	}
	if got := AvailableBundles(&models.Offer{}); got != 0 {
		t.Fatalf("empty offer bundles want 0 got %d", got)
	}
}

func TestOfferServiceCreateValidation(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	other := seedCartBranch(t, db, "norte", true)
	product := seedCartProduct(t, db, branch.ID, "torta", 16500, 5)
	foreign := seedCartProduct(t, db, other.ID, "budin", 6200, 5)

	if _, err := svc.Create(OfferInput{
		BranchID: branch.ID,
		Slug:     "vacio",
		Name:     "Vacio",
		Price:    decimal.NewFromInt(100),
	}); err != ErrOfferEmpty {
		t.Fatalf("expected ErrOfferEmpty, got: %v", err)
	}

	// Constituents must belong to the offer's branch.
	if _, err := svc.Create(OfferInput{
		BranchID: branch.ID,
		Slug:     "cruzado",
		Name:     "Cruzado",
		Price:    decimal.NewFromInt(100),
		Items:    []OfferItemInput{{ProductID: foreign.ID, PerBundle: 1}},
	}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for cross-branch constituent, got: %v", err)
	}

	created, err := svc.Create(OfferInput{
		BranchID: branch.ID,
		Slug:     "merienda",
		Name:     "Merienda",
		Price:    decimal.NewFromInt(23900),
		Items:    []OfferItemInput{{ProductID: product.ID, PerBundle: 0}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(created.Items) != 1 || created.Items[0].PerBundle != 1 {
		t.Fatalf("per_bundle should normalize to 1, got: %+v", created.Items)
	}

	if _, err := svc.Create(OfferInput{
		BranchID: branch.ID,
		Slug:     "merienda",
		Name:     "Duplicada",
		Price:    decimal.NewFromInt(100),
		Items:    []OfferItemInput{{ProductID: product.ID, PerBundle: 1}},
	}); err != ErrSlugTaken {
		t.Fatalf("expected ErrSlugTaken, got: %v", err)
	}
}

func TestOfferServiceUpdateReplacesItems(t *testing.T) {
	svc, db := setupOfferServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	torta := seedCartProduct(t, db, branch.ID, "torta", 16500, 5)
	chipa := seedCartProduct(t, db, branch.ID, "chipa", 4500, 20)

	offer, err := svc.Create(OfferInput{
		BranchID: branch.ID,
		Slug:     "merienda",
		Name:     "Merienda",
		Price:    decimal.NewFromInt(23900),
		Items:    []OfferItemInput{{ProductID: torta.ID, PerBundle: 1}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(offer.ID, OfferInput{
		BranchID: branch.ID,
		Slug:     "merienda",
		Name:     "Merienda Familiar",
		Price:    decimal.NewFromInt(25900),
		Items: []OfferItemInput{
			{ProductID: torta.ID, PerBundle: 1, SortOrder: 2},
			{ProductID: chipa.ID, PerBundle: 2, SortOrder: 1},
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Items) != 2 {
		t.Fatalf("expected replaced constituents, got: %+v", updated.Items)
	}
	if updated.Name != "Merienda Familiar" {
		t.Fatalf("name not updated: %s", updated.Name)
	}

	if err := svc.Delete(offer.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetAdminByID(offer.ID); err != ErrOfferNotFound {
		t.Fatalf("expected ErrOfferNotFound after delete, got: %v", err)
	}
}
