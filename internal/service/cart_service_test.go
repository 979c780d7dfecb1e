package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Branch{},
		&models.Product{},
		&models.Offer{},
		&models.OfferItem{},
		&models.CartRecord{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	svc := NewCartService(
		repository.NewCartStoreRepository(db),
		repository.NewProductRepository(db),
		repository.NewOfferRepository(db),
		repository.NewBranchRepository(db),
	)
	return svc, db
}

func seedCartBranch(t *testing.T, db *gorm.DB, slug string, active bool) *models.Branch {
	t.Helper()
	branch := models.Branch{Slug: slug, Name: slug, IsActive: active}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("create branch failed: %v", err)
	}
	return &branch
}

func seedCartProduct(t *testing.T, db *gorm.DB, branchID uint, slug string, price float64, stock int) *models.Product {
	t.Helper()
	product := models.Product{
		BranchID: branchID,
		Slug:     slug,
		Name:     slug,
		Price:    models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		Stock:    stock,
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return &product
}

func seedCartOffer(t *testing.T, db *gorm.DB, branchID uint, slug string, price float64, items []models.OfferItem) *models.Offer {
	t.Helper()
	offer := models.Offer{
		BranchID: branchID,
		Slug:     slug,
		Name:     slug,
		Price:    models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		IsActive: true,
		Items:    items,
	}
	if err := db.Create(&offer).Error; err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	return &offer
}

func TestCartServiceAddProductMergesQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	product := seedCartProduct(t, db, branch.ID, "medialunas", 5200, 10)

	if _, err := svc.AddProduct("guest:abc", product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	cart, err := svc.AddProduct("guest:abc", product.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected single merged entry, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("merged quantity want 5 got %d", cart.Items[0].Quantity)
	}
	if cart.Items[0].Key != ProductKey(product.ID) {
		t.Fatalf("unexpected item key %s", cart.Items[0].Key)
	}
}

func TestCartServiceAddProductRejectsOverMergedStock(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	product := seedCartProduct(t, db, branch.ID, "pan-de-campo", 3800, 4)

	if _, err := svc.AddProduct("guest:abc", product.ID, 3); err != nil {
		t.Fatalf("add within stock failed: %v", err)
	}

	_, err := svc.AddProduct("guest:abc", product.ID, 2)
	stockErr, ok := AsStockExceeded(err)
	if !ok {
		t.Fatalf("expected StockExceededError, got: %v", err)
	}
	if stockErr.Requested != 5 || stockErr.MaxAllowed != 4 {
		t.Fatalf("unexpected violation: %+v", stockErr)
	}

	// Rejected mutation must not touch the stored cart.
	cart, err := svc.Load("guest:abc")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("cart should keep quantity 3, got: %+v", cart.Items)
	}
}

func TestCartServiceAddProductInactiveUnavailable(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	product := seedCartProduct(t, db, branch.ID, "budin", 6200, 10)
	if err := db.Model(product).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	if _, err := svc.AddProduct("guest:abc", product.ID, 1); err != ErrProductNotAvailable {
		t.Fatalf("expected ErrProductNotAvailable, got: %v", err)
	}
}

func TestCartServiceAddOfferBundleMath(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	torta := seedCartProduct(t, db, branch.ID, "torta", 16500, 4)
	chipa := seedCartProduct(t, db, branch.ID, "chipa", 4500, 7)
	// PerBundle 0 is the legacy bare-reference shape and means one per bundle.
	offer := seedCartOffer(t, db, branch.ID, "merienda", 23900, []models.OfferItem{
		{ProductID: torta.ID, PerBundle: 0},
		{ProductID: chipa.ID, PerBundle: 2},
	})

	// min(4/1, 7/2) = 3 bundles available.
	cart, err := svc.AddOffer("guest:abc", offer.ID, 3)
	if err != nil {
		t.Fatalf("add offer failed: %v", err)
	}
	item := cart.Items[0]
	if !item.IsOffer() || item.Quantity != 3 {
		t.Fatalf("unexpected offer entry: %+v", item)
	}
	if got := item.AvailableBundles(); got != 3 {
		t.Fatalf("available bundles want 3 got %d", got)
	}

	// A fourth bundle covers torta (4 of 4) but needs 8 chipa against stock 7.
	_, err = svc.AddOffer("guest:abc", offer.ID, 1)
	stockErr, ok := AsStockExceeded(err)
	if !ok {
		t.Fatalf("expected StockExceededError, got: %v", err)
	}
	if len(stockErr.Shortages) != 1 {
		t.Fatalf("expected one failing constituent, got: %+v", stockErr.Shortages)
	}
	shortage := stockErr.Shortages[0]
	if shortage.ProductID != chipa.ID || shortage.Required != 8 || shortage.Available != 7 {
		t.Fatalf("unexpected shortage: %+v", shortage)
	}
	if stockErr.MaxAllowed != 3 {
		t.Fatalf("max allowed want 3 got %d", stockErr.MaxAllowed)
	}
}

func TestCartServiceAddOfferReportsEveryShortage(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	first := seedCartProduct(t, db, branch.ID, "facturas", 2000, 1)
	second := seedCartProduct(t, db, branch.ID, "tostadas", 1500, 0)
	offer := seedCartOffer(t, db, branch.ID, "combo", 5000, []models.OfferItem{
		{ProductID: first.ID, PerBundle: 2},
		{ProductID: second.ID, PerBundle: 1},
	})

	_, err := svc.AddOffer("guest:abc", offer.ID, 1)
	stockErr, ok := AsStockExceeded(err)
	if !ok {
		t.Fatalf("expected StockExceededError, got: %v", err)
	}
	if len(stockErr.Shortages) != 2 {
		t.Fatalf("expected both constituents reported, got: %+v", stockErr.Shortages)
	}
}

func TestCartServiceSetQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	product := seedCartProduct(t, db, branch.ID, "medialunas", 5200, 10)

	if _, err := svc.AddProduct("guest:abc", product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	key := ProductKey(product.ID)

	cart, err := svc.SetQuantity("guest:abc", key, 7)
	if err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("quantity want 7 got %d", cart.Items[0].Quantity)
	}

	if _, err := svc.SetQuantity("guest:abc", key, 11); err == nil {
		t.Fatalf("expected stock violation for quantity 11")
	}
	cart, _ = svc.Load("guest:abc")
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("stored quantity should stay 7, got %d", cart.Items[0].Quantity)
	}

	// Below one removes the entry.
	cart, err = svc.SetQuantity("guest:abc", key, 0)
	if err != nil {
		t.Fatalf("set quantity 0 failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("cart should be empty, got: %+v", cart.Items)
	}

	if _, err := svc.SetQuantity("guest:abc", "product:999", 1); err != ErrCartItemNotFound {
		t.Fatalf("expected ErrCartItemNotFound, got: %v", err)
	}
}

func TestCartServiceSetQuantityOfferCappedByBundles(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	torta := seedCartProduct(t, db, branch.ID, "torta", 16500, 2)
	chipa := seedCartProduct(t, db, branch.ID, "chipa", 4500, 5)
	// min(2/1, 5/2) = 2 bundles available.
	offer := seedCartOffer(t, db, branch.ID, "merienda", 23900, []models.OfferItem{
		{ProductID: torta.ID, PerBundle: 1},
		{ProductID: chipa.ID, PerBundle: 2},
	})

	if _, err := svc.AddOffer("guest:abc", offer.ID, 1); err != nil {
		t.Fatalf("add offer failed: %v", err)
	}
	key := OfferKey(offer.ID)

	_, err := svc.SetQuantity("guest:abc", key, 3)
	stockErr, ok := AsStockExceeded(err)
	if !ok {
		t.Fatalf("expected StockExceededError, got: %v", err)
	}
	if stockErr.MaxAllowed != 2 {
		t.Fatalf("max allowed want 2 got %d", stockErr.MaxAllowed)
	}
	cart, err := svc.Load("guest:abc")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cart.Items[0].Quantity != 1 {
		t.Fatalf("rejected set must keep quantity 1, got %d", cart.Items[0].Quantity)
	}

	// Raising to the cap itself is fine.
	cart, err = svc.SetQuantity("guest:abc", key, 2)
	if err != nil {
		t.Fatalf("set quantity 2 failed: %v", err)
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("quantity want 2 got %d", cart.Items[0].Quantity)
	}
}

func TestCartServiceRemoveAbsentKeyIsNoop(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	product := seedCartProduct(t, db, branch.ID, "medialunas", 5200, 10)
	if _, err := svc.AddProduct("guest:abc", product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	cart, err := svc.Remove("guest:abc", "offer:42")
	if err != nil {
		t.Fatalf("remove absent key failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("cart should be unchanged, got: %+v", cart.Items)
	}
}

func TestCartServiceCorruptPayloadDegradesToEmpty(t *testing.T) {
	svc, db := setupCartServiceTest(t)

	record := models.CartRecord{
		OwnerKey: "guest:abc",
		Kind:     constants.CartRecordKindCart,
		Payload:  []byte("{not json"),
	}
	if err := db.Create(&record).Error; err != nil {
		t.Fatalf("create record failed: %v", err)
	}

	cart, err := svc.Load("guest:abc")
	if err != nil {
		t.Fatalf("load should tolerate corruption: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("corrupt cart should read empty, got: %+v", cart.Items)
	}
}

func TestCartServiceSelectedBranchIndependentOfCart(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	product := seedCartProduct(t, db, branch.ID, "medialunas", 5200, 10)

	if err := svc.SelectBranch("guest:abc", branch.ID); err != nil {
		t.Fatalf("select branch failed: %v", err)
	}
	if _, err := svc.AddProduct("guest:abc", product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Corrupt only the cart body; the branch record must survive unharmed.
	if err := db.Model(&models.CartRecord{}).
		Where("owner_key = ? AND kind = ?", "guest:abc", constants.CartRecordKindCart).
		Update("payload", []byte("garbage")).Error; err != nil {
		t.Fatalf("corrupt cart failed: %v", err)
	}

	view, err := svc.View("guest:abc")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("corrupt cart should view empty, got: %+v", view.Items)
	}
	if view.BranchID != branch.ID {
		t.Fatalf("selected branch want %d got %d", branch.ID, view.BranchID)
	}

	if err := svc.Clear("guest:abc"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	branchID, err := svc.SelectedBranchID("guest:abc")
	if err != nil {
		t.Fatalf("selected branch read failed: %v", err)
	}
	if branchID != branch.ID {
		t.Fatalf("clear must not drop the branch choice, got %d", branchID)
	}
}

func TestCartServiceSelectBranchInactive(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "oeste", false)

	if err := svc.SelectBranch("guest:abc", branch.ID); err != ErrBranchNotAvailable {
		t.Fatalf("expected ErrBranchNotAvailable, got: %v", err)
	}
	if err := svc.SelectBranch("guest:abc", 999); err != ErrBranchNotAvailable {
		t.Fatalf("expected ErrBranchNotAvailable for missing branch, got: %v", err)
	}
}

func TestCartServiceViewTotalAndIssues(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	branch := seedCartBranch(t, db, "centro", true)
	medialunas := seedCartProduct(t, db, branch.ID, "medialunas", 5200, 10)
	pan := seedCartProduct(t, db, branch.ID, "pan", 3800, 5)

	if _, err := svc.AddProduct("guest:abc", medialunas.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.AddProduct("guest:abc", pan.ID, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Stock drops after the items were added; the view must surface the gap.
	if err := db.Model(pan).Update("stock", 1).Error; err != nil {
		t.Fatalf("update stock failed: %v", err)
	}

	view, err := svc.View("guest:abc")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	want := decimal.NewFromInt(5200*2 + 3800*3)
	if !view.Total.Decimal.Equal(want) {
		t.Fatalf("total want %s got %s", want, view.Total.Decimal)
	}
	if len(view.Issues) != 1 {
		t.Fatalf("expected one stock issue, got: %+v", view.Issues)
	}
	issue := view.Issues[0]
	if issue.ItemKey != ProductKey(pan.ID) || issue.Requested != 3 || issue.Available != 1 {
		t.Fatalf("unexpected issue: %+v", issue)
	}
}
