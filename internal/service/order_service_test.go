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

func setupOrderServiceTest(t *testing.T) (*OrderService, *CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.Order{},
		&models.OrderItem{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	productRepo := repository.NewProductRepository(db)
	cartSvc := NewCartService(
		repository.NewCartStoreRepository(db),
		productRepo,
		repository.NewOfferRepository(db),
		repository.NewBranchRepository(db),
	)
	settingSvc := NewSettingService(repository.NewSettingRepository(db))
	orderSvc := NewOrderService(
		repository.NewOrderRepository(db),
		productRepo,
		cartSvc,
		settingSvc,
		nil,
		30,
	)
	return orderSvc, cartSvc, db
}

func seedOrderFixtures(t *testing.T, db *gorm.DB) (*models.Branch, *models.Product, *models.Product, *models.Offer) {
	t.Helper()
	branch := seedCartBranch(t, db, "centro", true)
	torta := seedCartProduct(t, db, branch.ID, "torta", 16500, 5)
	chipa := seedCartProduct(t, db, branch.ID, "chipa", 4500, 20)
	offer := seedCartOffer(t, db, branch.ID, "merienda", 23900, []models.OfferItem{
		{ProductID: torta.ID, PerBundle: 1, SortOrder: 2},
		{ProductID: chipa.ID, PerBundle: 2, SortOrder: 1},
	})
	return branch, torta, chipa, offer
}

func TestOrderServiceCreateFromCartFlattensOffer(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	branch, torta, chipa, offer := seedOrderFixtures(t, db)

	owner := "guest:token-1"
	if err := cartSvc.SelectBranch(owner, branch.ID); err != nil {
		t.Fatalf("select branch failed: %v", err)
	}
	if _, err := cartSvc.AddOffer(owner, offer.ID, 2); err != nil {
		t.Fatalf("add offer failed: %v", err)
	}
	if _, err := cartSvc.AddProduct(owner, torta.ID, 1); err != nil {
		t.Fatalf("add product failed: %v", err)
	}

	order, err := orderSvc.CreateFromCart(CreateOrderInput{
		OwnerKey:    owner,
		GuestToken:  "token-1",
		ContactName: "Ana",
		Phone:       "+54 11 5555 0001",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if order.BranchID != branch.ID {
		t.Fatalf("branch want %d got %d", branch.ID, order.BranchID)
	}
	if order.Currency != constants.SiteCurrencyDefault {
		t.Fatalf("currency want %s got %s", constants.SiteCurrencyDefault, order.Currency)
	}

	// Two offer constituents plus one standalone product line.
	if len(order.Items) != 3 {
		t.Fatalf("expected 3 lines, got %d: %+v", len(order.Items), order.Items)
	}

	var offerLines []models.OrderItem
	var productLine *models.OrderItem
	for i := range order.Items {
		line := order.Items[i]
		if line.OfferID != nil {
			offerLines = append(offerLines, line)
		} else {
			productLine = &order.Items[i]
		}
	}
	if len(offerLines) != 2 || productLine == nil {
		t.Fatalf("unexpected line split: %+v", order.Items)
	}
	if productLine.ProductID != torta.ID || productLine.Quantity != 1 {
		t.Fatalf("unexpected product line: %+v", productLine)
	}

	// 2 bundles: torta line 2 units, chipa line 4 units, shares reconcile to
	// the full bundle price.
	bundleTotal := decimal.NewFromInt(23900 * 2)
	shareSum := decimal.Zero
	for _, line := range offerLines {
		if *line.OfferID != offer.ID || line.OfferName != offer.Name {
			t.Fatalf("offer line missing provenance: %+v", line)
		}
		switch line.ProductID {
		case torta.ID:
			if line.Quantity != 2 {
				t.Fatalf("torta quantity want 2 got %d", line.Quantity)
			}
		case chipa.ID:
			if line.Quantity != 4 {
				t.Fatalf("chipa quantity want 4 got %d", line.Quantity)
			}
		default:
			t.Fatalf("unexpected constituent: %+v", line)
		}
		shareSum = shareSum.Add(line.TotalPrice.Decimal)
	}
	if !shareSum.Equal(bundleTotal) {
		t.Fatalf("offer shares want %s got %s", bundleTotal, shareSum)
	}

	// Stock reserved: torta 5-2-1=2, chipa 20-4=16.
	var tortaRow, chipaRow models.Product
	if err := db.First(&tortaRow, torta.ID).Error; err != nil {
		t.Fatalf("reload torta failed: %v", err)
	}
	if err := db.First(&chipaRow, chipa.ID).Error; err != nil {
		t.Fatalf("reload chipa failed: %v", err)
	}
	if tortaRow.Stock != 2 || chipaRow.Stock != 16 {
		t.Fatalf("stock after reserve want 2/16 got %d/%d", tortaRow.Stock, chipaRow.Stock)
	}

	// Success clears the cart body but keeps the branch choice.
	cart, err := cartSvc.Load(owner)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("cart should be cleared, got: %+v", cart.Items)
	}
	branchID, _ := cartSvc.SelectedBranchID(owner)
	if branchID != branch.ID {
		t.Fatalf("branch choice should survive submission, got %d", branchID)
	}
}

func TestOrderServiceCreateFromCartGuards(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	branch, torta, _, _ := seedOrderFixtures(t, db)

	owner := "guest:token-2"
	if _, err := orderSvc.CreateFromCart(CreateOrderInput{OwnerKey: owner}); err != ErrCartEmpty {
		t.Fatalf("expected ErrCartEmpty, got: %v", err)
	}

	if _, err := cartSvc.AddProduct(owner, torta.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := orderSvc.CreateFromCart(CreateOrderInput{OwnerKey: owner}); err != ErrBranchNotSelected {
		t.Fatalf("expected ErrBranchNotSelected, got: %v", err)
	}

	if err := cartSvc.SelectBranch(owner, branch.ID); err != nil {
		t.Fatalf("select branch failed: %v", err)
	}
	// Stock collapses under the cart before submission.
	if err := db.Model(&models.Product{}).Where("id = ?", torta.ID).Update("stock", 1).Error; err != nil {
		t.Fatalf("update stock failed: %v", err)
	}
	if _, err := orderSvc.CreateFromCart(CreateOrderInput{OwnerKey: owner}); err != ErrCartHasStockIssues {
		t.Fatalf("expected ErrCartHasStockIssues, got: %v", err)
	}

	// The blocked submission leaves the cart intact for the shopper to fix.
	cart, err := cartSvc.Load(owner)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("cart should be untouched, got: %+v", cart.Items)
	}
}

func TestOrderServiceStatusMachine(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	branch, torta, _, _ := seedOrderFixtures(t, db)

	owner := "guest:token-3"
	if err := cartSvc.SelectBranch(owner, branch.ID); err != nil {
		t.Fatalf("select branch failed: %v", err)
	}
	if _, err := cartSvc.AddProduct(owner, torta.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	order, err := orderSvc.CreateFromCart(CreateOrderInput{OwnerKey: owner, GuestToken: "token-3"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := orderSvc.UpdateStatus(order.ID, constants.OrderStatusDelivered); err != ErrOrderStateInvalid {
		t.Fatalf("pending->delivered should fail, got: %v", err)
	}

	order, err = orderSvc.UpdateStatus(order.ID, constants.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if order.ConfirmedAt == nil || order.ExpiresAt != nil {
		t.Fatalf("confirm should stamp confirmed_at and drop expires_at: %+v", order)
	}

	if _, err := orderSvc.UpdateStatus(order.ID, constants.OrderStatusReady); err != nil {
		t.Fatalf("ready failed: %v", err)
	}
	order, err = orderSvc.UpdateStatus(order.ID, constants.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if _, err := orderSvc.UpdateStatus(order.ID, constants.OrderStatusCanceled); err != ErrOrderStateInvalid {
		t.Fatalf("delivered->canceled should fail, got: %v", err)
	}
}

func TestOrderServiceCancelRestoresStock(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	branch, torta, chipa, offer := seedOrderFixtures(t, db)

	owner := "guest:token-4"
	if err := cartSvc.SelectBranch(owner, branch.ID); err != nil {
		t.Fatalf("select branch failed: %v", err)
	}
	if _, err := cartSvc.AddOffer(owner, offer.ID, 1); err != nil {
		t.Fatalf("add offer failed: %v", err)
	}
	order, err := orderSvc.CreateFromCart(CreateOrderInput{OwnerKey: owner, GuestToken: "token-4"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	canceled, err := orderSvc.CancelForOwner(order)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled || canceled.CanceledAt == nil {
		t.Fatalf("unexpected canceled order: %+v", canceled)
	}

	var tortaRow, chipaRow models.Product
	if err := db.First(&tortaRow, torta.ID).Error; err != nil {
		t.Fatalf("reload torta failed: %v", err)
	}
	if err := db.First(&chipaRow, chipa.ID).Error; err != nil {
		t.Fatalf("reload chipa failed: %v", err)
	}
	if tortaRow.Stock != 5 || chipaRow.Stock != 20 {
		t.Fatalf("stock after cancel want 5/20 got %d/%d", tortaRow.Stock, chipaRow.Stock)
	}

	if _, err := orderSvc.CancelForOwner(canceled); err != ErrOrderStateInvalid {
		t.Fatalf("double cancel should fail, got: %v", err)
	}
}

func TestOrderServiceCancelExpiredOrder(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	branch, torta, _, _ := seedOrderFixtures(t, db)

	owner := "guest:token-5"
	if err := cartSvc.SelectBranch(owner, branch.ID); err != nil {
		t.Fatalf("select branch failed: %v", err)
	}
	if _, err := cartSvc.AddProduct(owner, torta.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	order, err := orderSvc.CreateFromCart(CreateOrderInput{OwnerKey: owner, GuestToken: "token-5"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// Not yet expired: a no-op.
	same, err := orderSvc.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if same.Status != constants.OrderStatusPending {
		t.Fatalf("unexpired order should stay pending, got %s", same.Status)
	}

	past := time.Now().Add(-time.Minute)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("backdate expiry failed: %v", err)
	}

	canceled, err := orderSvc.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if canceled.Status != constants.OrderStatusCanceled {
		t.Fatalf("expired order should cancel, got %s", canceled.Status)
	}

	var tortaRow models.Product
	if err := db.First(&tortaRow, torta.ID).Error; err != nil {
		t.Fatalf("reload torta failed: %v", err)
	}
	if tortaRow.Stock != 5 {
		t.Fatalf("stock after expiry cancel want 5 got %d", tortaRow.Stock)
	}
}

func TestFlattenCartItemsSplitsBundleTotal(t *testing.T) {
	offerID := uint(7)
	items := []CartItem{
		{
			Key:       OfferKey(offerID),
			Kind:      constants.CartItemKindOffer,
			RefID:     offerID,
			Name:      "tercetos",
			UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			Quantity:  1,
			Constituents: []CartConstituent{
				{ProductID: 1, Name: "a", PerBundle: 1},
				{ProductID: 2, Name: "b", PerBundle: 1},
				{ProductID: 3, Name: "c", PerBundle: 1},
			},
		},
	}

	lines := flattenCartItems(items)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	// 100 / 3 rounds down to 33.33 per line; the last line absorbs the
	// remainder so the shares reconcile exactly.
	want := []string{"33.33", "33.33", "33.34"}
	sum := decimal.Zero
	for i, line := range lines {
		if line.TotalPrice.Decimal.StringFixed(2) != want[i] {
			t.Fatalf("line %d share want %s got %s", i, want[i], line.TotalPrice.Decimal.StringFixed(2))
		}
		sum = sum.Add(line.TotalPrice.Decimal)
	}
	if !sum.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("shares must sum to 100, got %s", sum)
	}
}

func TestOrderServiceGuestLookupScoped(t *testing.T) {
	orderSvc, cartSvc, db := setupOrderServiceTest(t)
	branch, torta, _, _ := seedOrderFixtures(t, db)

	owner := "guest:token-6"
	if err := cartSvc.SelectBranch(owner, branch.ID); err != nil {
		t.Fatalf("select branch failed: %v", err)
	}
	if _, err := cartSvc.AddProduct(owner, torta.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	order, err := orderSvc.CreateFromCart(CreateOrderInput{OwnerKey: owner, GuestToken: "token-6"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := orderSvc.GetForGuest(order.ID, "token-6"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := orderSvc.GetForGuest(order.ID, "someone-else"); err != ErrOrderNotFound {
		t.Fatalf("foreign token should see nothing, got: %v", err)
	}
	if _, err := orderSvc.GetForUser(order.ID, 42); err != ErrOrderNotFound {
		t.Fatalf("user lookup of guest order should fail, got: %v", err)
	}
}
