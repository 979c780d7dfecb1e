package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupBranchServiceTest(t *testing.T) (*BranchService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:branch_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Branch{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewBranchService(repository.NewBranchRepository(db)), db
}

func TestBranchServiceCreateDefaultsActive(t *testing.T) {
	svc, db := setupBranchServiceTest(t)

	branch, err := svc.Create(BranchInput{Slug: "centro", Name: "Centro"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var stored models.Branch
	if err := db.First(&stored, branch.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !stored.IsActive {
		t.Fatalf("omitted is_active should default to true")
	}
}

func TestBranchServiceCreateInactivePersists(t *testing.T) {
	svc, db := setupBranchServiceTest(t)

	inactive := false
	branch, err := svc.Create(BranchInput{Slug: "oeste", Name: "Oeste", IsActive: &inactive})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// The false must survive the insert, not be swallowed by a column default.
	var stored models.Branch
	if err := db.First(&stored, branch.ID).Error; err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("explicit is_active=false was stored as active")
	}

	listed, total, err := svc.ListPublic(1, 10)
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if total != 0 || len(listed) != 0 {
		t.Fatalf("inactive branch must not appear in the storefront, got %d", total)
	}
}

func TestBranchServiceCreateSlugTaken(t *testing.T) {
	svc, _ := setupBranchServiceTest(t)

	if _, err := svc.Create(BranchInput{Slug: "centro", Name: "Centro"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(BranchInput{Slug: "centro", Name: "Centro Bis"}); err != ErrSlugTaken {
		t.Fatalf("expected ErrSlugTaken, got: %v", err)
	}
}
