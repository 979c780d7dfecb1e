package service

import (
	"encoding/json"

	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"
)

// CartView is the assembled cart response: items, total, current stock
// issues and the owner's selected branch.
type CartView struct {
	Items    []CartItem   `json:"items"`
	Total    models.Money `json:"total"`
	Issues   []StockIssue `json:"stock_issues"`
	BranchID uint         `json:"branch_id"`
}

type selectedBranchRecord struct {
	BranchID uint `json:"branch_id"`
}

// CartService owns the cart store. Every mutation validates against current
// stock, commits in memory, then persists; a rejected mutation never touches
// the persisted cart.
type CartService struct {
	store       repository.CartStoreRepository
	productRepo repository.ProductRepository
	offerRepo   repository.OfferRepository
	branchRepo  repository.BranchRepository
}

// NewCartService creates a cart service.
func NewCartService(
	store repository.CartStoreRepository,
	productRepo repository.ProductRepository,
	offerRepo repository.OfferRepository,
	branchRepo repository.BranchRepository,
) *CartService {
	return &CartService{
		store:       store,
		productRepo: productRepo,
		offerRepo:   offerRepo,
		branchRepo:  branchRepo,
	}
}

// Load reads the owner's cart. A missing or unreadable record degrades to an
// empty cart so a corrupt blob can never break the storefront.
func (s *CartService) Load(ownerKey string) (*Cart, error) {
	cart := &Cart{OwnerKey: ownerKey, Items: []CartItem{}}
	record, err := s.store.Get(ownerKey, constants.CartRecordKindCart)
	if err != nil {
		logger.Warnw("cart_load_failed", "owner", ownerKey, "error", err)
		return cart, nil
	}
	if record == nil || len(record.Payload) == 0 {
		return cart, nil
	}
	var items []CartItem
	if err := json.Unmarshal(record.Payload, &items); err != nil {
		logger.Debugw("cart_payload_corrupt", "owner", ownerKey, "error", err)
		return cart, nil
	}
	cart.Items = items
	return cart, nil
}

func (s *CartService) save(cart *Cart) error {
	payload, err := json.Marshal(cart.Items)
	if err != nil {
		return err
	}
	return s.store.Save(cart.OwnerKey, constants.CartRecordKindCart, payload)
}

// Refresh re-reads the stock snapshots of every cart item so issue checks
// reflect current data. A product that disappeared counts as zero stock.
func (s *CartService) Refresh(cart *Cart) error {
	ids := make([]uint, 0, len(cart.Items))
	seen := make(map[uint]bool)
	collect := func(id uint) {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, item := range cart.Items {
		if item.IsOffer() {
			for _, c := range item.Constituents {
				collect(c.ProductID)
			}
			continue
		}
		collect(item.RefID)
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return err
	}
	stocks := make(map[uint]int, len(products))
	for _, p := range products {
		stock := p.Stock
		if !p.IsActive {
			stock = 0
		}
		stocks[p.ID] = stock
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		if item.IsOffer() {
			for j := range item.Constituents {
				item.Constituents[j].Stock = stocks[item.Constituents[j].ProductID]
			}
			continue
		}
		item.Stock = stocks[item.RefID]
	}
	return nil
}

// View loads and refreshes the cart and assembles the full response.
func (s *CartService) View(ownerKey string) (*CartView, error) {
	cart, err := s.Load(ownerKey)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(cart); err != nil {
		return nil, err
	}
	branchID, err := s.SelectedBranchID(ownerKey)
	if err != nil {
		return nil, err
	}
	return &CartView{
		Items:    cart.Items,
		Total:    cart.Total(),
		Issues:   cart.StockIssues(),
		BranchID: branchID,
	}, nil
}

// AddProduct adds quantity units of a product, merging with an existing
// entry. The merged quantity may not exceed current stock; a violation
// returns a StockExceededError and leaves the cart untouched.
func (s *CartService) AddProduct(ownerKey string, productID uint, quantity int) (*Cart, error) {
	if productID == 0 || quantity <= 0 {
		return nil, ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotAvailable
	}

	cart, err := s.Load(ownerKey)
	if err != nil {
		return nil, err
	}

	key := ProductKey(productID)
	idx := cart.Find(key)
	merged := quantity
	if idx >= 0 {
		merged += cart.Items[idx].Quantity
	}
	if product.Stock <= 0 || merged > product.Stock {
		return nil, &StockExceededError{
			ItemKey:    key,
			ItemName:   product.Name,
			Requested:  merged,
			MaxAllowed: product.Stock,
		}
	}

	item := CartItem{
		Key:       key,
		Kind:      constants.CartItemKindProduct,
		RefID:     product.ID,
		Name:      product.Name,
		Image:     product.Image,
		UnitPrice: product.Price,
		Quantity:  merged,
		Stock:     product.Stock,
	}
	if idx >= 0 {
		cart.Items[idx] = item
	} else {
		cart.Items = append(cart.Items, item)
	}

	if err := s.save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddOffer adds bundles of an offer. Constituent shapes are normalized at
// this boundary, every constituent must cover the merged demand, and a
// violation reports each failing constituent.
func (s *CartService) AddOffer(ownerKey string, offerID uint, quantity int) (*Cart, error) {
	if offerID == 0 || quantity <= 0 {
		return nil, ErrInvalidInput
	}
	offer, err := s.offerRepo.GetByID(offerID)
	if err != nil {
		return nil, err
	}
	if offer == nil || !offer.IsActive {
		return nil, ErrOfferNotAvailable
	}

	offerItems := normalizeOfferConstituents(offer.Items)
	if len(offerItems) == 0 {
		return nil, ErrOfferEmpty
	}

	constituents := make([]CartConstituent, 0, len(offerItems))
	for _, oi := range offerItems {
		if oi.Product == nil {
			return nil, ErrOfferNotAvailable
		}
		stock := oi.Product.Stock
		if !oi.Product.IsActive {
			stock = 0
		}
		constituents = append(constituents, CartConstituent{
			ProductID: oi.ProductID,
			Name:      oi.Product.Name,
			Image:     oi.Product.Image,
			UnitPrice: oi.Product.Price,
			Stock:     stock,
			PerBundle: oi.PerBundle,
		})
	}

	cart, err := s.Load(ownerKey)
	if err != nil {
		return nil, err
	}

	key := OfferKey(offerID)
	idx := cart.Find(key)
	merged := quantity
	if idx >= 0 {
		merged += cart.Items[idx].Quantity
	}

	item := CartItem{
		Key:          key,
		Kind:         constants.CartItemKindOffer,
		RefID:        offer.ID,
		Name:         offer.Name,
		Image:        offer.Image,
		UnitPrice:    offer.Price,
		Quantity:     merged,
		Constituents: constituents,
	}

	shortages := offerShortages(item, merged)
	if len(shortages) > 0 {
		return nil, &StockExceededError{
			ItemKey:    key,
			ItemName:   offer.Name,
			Requested:  merged,
			MaxAllowed: item.AvailableBundles(),
			Shortages:  shortages,
		}
	}

	if idx >= 0 {
		cart.Items[idx] = item
	} else {
		cart.Items = append(cart.Items, item)
	}

	if err := s.save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// offerShortages lists every constituent that cannot cover bundles, in
// constituent order.
func offerShortages(item CartItem, bundles int) []ConstituentShortage {
	shortages := make([]ConstituentShortage, 0)
	for _, c := range item.Constituents {
		per := c.PerBundle
		if per <= 0 {
			per = 1
		}
		required := bundles * per
		if c.Stock <= 0 || required > c.Stock {
			shortages = append(shortages, ConstituentShortage{
				ProductID:   c.ProductID,
				ProductName: c.Name,
				Required:    required,
				Available:   c.Stock,
			})
		}
	}
	return shortages
}

// SetQuantity sets the quantity of an existing entry. A quantity below one
// removes the entry; anything else is validated against current stock and a
// violation leaves the stored quantity unchanged.
func (s *CartService) SetQuantity(ownerKey, key string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return s.Remove(ownerKey, key)
	}

	cart, err := s.Load(ownerKey)
	if err != nil {
		return nil, err
	}
	idx := cart.Find(key)
	if idx < 0 {
		return nil, ErrCartItemNotFound
	}
	if err := s.Refresh(cart); err != nil {
		return nil, err
	}

	item := cart.Items[idx]
	if item.IsOffer() {
		shortages := offerShortages(item, quantity)
		if len(shortages) > 0 {
			return nil, &StockExceededError{
				ItemKey:    key,
				ItemName:   item.Name,
				Requested:  quantity,
				MaxAllowed: item.AvailableBundles(),
				Shortages:  shortages,
			}
		}
	} else if quantity > item.Stock {
		return nil, &StockExceededError{
			ItemKey:    key,
			ItemName:   item.Name,
			Requested:  quantity,
			MaxAllowed: item.Stock,
		}
	}

	cart.Items[idx].Quantity = quantity
	if err := s.save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove deletes an entry. Removing an absent key is a no-op.
func (s *CartService) Remove(ownerKey, key string) (*Cart, error) {
	cart, err := s.Load(ownerKey)
	if err != nil {
		return nil, err
	}
	idx := cart.Find(key)
	if idx < 0 {
		return cart, nil
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	if err := s.save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart unconditionally. The selected branch record is
// independent and stays put.
func (s *CartService) Clear(ownerKey string) error {
	return s.store.Delete(ownerKey, constants.CartRecordKindCart)
}

// StockIssues loads, refreshes and reports the cart's current problems.
func (s *CartService) StockIssues(ownerKey string) ([]StockIssue, error) {
	cart, err := s.Load(ownerKey)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(cart); err != nil {
		return nil, err
	}
	return cart.StockIssues(), nil
}

// SelectBranch stores the owner's branch choice in its own record.
func (s *CartService) SelectBranch(ownerKey string, branchID uint) error {
	if branchID == 0 {
		return ErrInvalidInput
	}
	branch, err := s.branchRepo.GetByID(branchID)
	if err != nil {
		return err
	}
	if branch == nil || !branch.IsActive {
		return ErrBranchNotAvailable
	}
	payload, err := json.Marshal(selectedBranchRecord{BranchID: branchID})
	if err != nil {
		return err
	}
	return s.store.Save(ownerKey, constants.CartRecordKindSelectedBranch, payload)
}

// SelectedBranchID reads the stored branch choice. Missing or unreadable
// records degrade to zero, independent of the cart body.
func (s *CartService) SelectedBranchID(ownerKey string) (uint, error) {
	record, err := s.store.Get(ownerKey, constants.CartRecordKindSelectedBranch)
	if err != nil {
		logger.Warnw("selected_branch_load_failed", "owner", ownerKey, "error", err)
		return 0, nil
	}
	if record == nil || len(record.Payload) == 0 {
		return 0, nil
	}
	var stored selectedBranchRecord
	if err := json.Unmarshal(record.Payload, &stored); err != nil {
		logger.Debugw("selected_branch_payload_corrupt", "owner", ownerKey, "error", err)
		return 0, nil
	}
	return stored.BranchID, nil
}
