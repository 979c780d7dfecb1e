package service

import (
	"strings"

	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"

	"github.com/shopspring/decimal"
)

// OfferService handles promotional bundles.
type OfferService struct {
	repo        repository.OfferRepository
	productRepo repository.ProductRepository
	branchRepo  repository.BranchRepository
}

// NewOfferService creates an offer service.
func NewOfferService(repo repository.OfferRepository, productRepo repository.ProductRepository, branchRepo repository.BranchRepository) *OfferService {
	return &OfferService{repo: repo, productRepo: productRepo, branchRepo: branchRepo}
}

// OfferItemInput is one constituent in the create/update payload.
type OfferItemInput struct {
	ProductID uint
	PerBundle int
	SortOrder int
}

// OfferInput is the create/update payload.
type OfferInput struct {
	BranchID    uint
	Slug        string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	IsActive    *bool
	SortOrder   int
	Items       []OfferItemInput
}

// ListPublic returns active offers for the storefront.
func (s *OfferService) ListPublic(branchID uint, page, pageSize int) ([]models.Offer, int64, error) {
	filter := repository.OfferListFilter{
		Page:       page,
		PageSize:   pageSize,
		BranchID:   branchID,
		OnlyActive: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug returns an active offer for the storefront.
func (s *OfferService) GetPublicBySlug(slug string) (*models.Offer, error) {
	offer, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	return offer, nil
}

// ListAdmin returns offers for the back office.
func (s *OfferService) ListAdmin(branchID uint, search string, page, pageSize int) ([]models.Offer, int64, error) {
	filter := repository.OfferListFilter{
		Page:     page,
		PageSize: pageSize,
		BranchID: branchID,
		Search:   search,
	}
	return s.repo.List(filter)
}

// GetAdminByID returns an offer for the back office.
func (s *OfferService) GetAdminByID(id uint) (*models.Offer, error) {
	offer, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	return offer, nil
}

// AvailableBundles returns how many whole bundles current stock supports,
// the minimum across constituents. An inactive constituent counts as zero.
func AvailableBundles(offer *models.Offer) int {
	if offer == nil || len(offer.Items) == 0 {
		return 0
	}
	available := -1
	for _, item := range offer.Items {
		per := item.PerBundle
		if per <= 0 {
			per = 1
		}
		stock := 0
		if item.Product != nil && item.Product.IsActive {
			stock = item.Product.Stock
		}
		bundles := stock / per
		if available < 0 || bundles < available {
			available = bundles
		}
	}
	if available < 0 {
		return 0
	}
	return available
}

// Create adds an offer with its constituents.
func (s *OfferService) Create(input OfferInput) (*models.Offer, error) {
	items, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountBySlug(input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugTaken
	}

	branch, err := s.branchRepo.GetByID(input.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	offer := models.Offer{
		BranchID:    input.BranchID,
		Slug:        strings.TrimSpace(input.Slug),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       models.NewMoneyFromDecimal(input.Price.Round(2)),
		Image:       strings.TrimSpace(input.Image),
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
		Items:       items,
	}

	if err := s.repo.Create(&offer); err != nil {
		return nil, err
	}
	return s.GetAdminByID(offer.ID)
}

// Update saves an offer and replaces its constituents.
func (s *OfferService) Update(id uint, input OfferInput) (*models.Offer, error) {
	items, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	offer, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}

	count, err := s.repo.CountBySlug(input.Slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugTaken
	}

	if input.BranchID != offer.BranchID {
		branch, err := s.branchRepo.GetByID(input.BranchID)
		if err != nil {
			return nil, err
		}
		if branch == nil {
			return nil, ErrBranchNotFound
		}
		offer.BranchID = input.BranchID
	}

	offer.Slug = strings.TrimSpace(input.Slug)
	offer.Name = strings.TrimSpace(input.Name)
	offer.Description = strings.TrimSpace(input.Description)
	offer.Price = models.NewMoneyFromDecimal(input.Price.Round(2))
	offer.Image = strings.TrimSpace(input.Image)
	offer.SortOrder = input.SortOrder
	if input.IsActive != nil {
		offer.IsActive = *input.IsActive
	}

	if err := s.repo.Update(offer); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceItems(id, items); err != nil {
		return nil, err
	}
	return s.GetAdminByID(id)
}

// Delete removes an offer.
func (s *OfferService) Delete(id uint) error {
	offer, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if offer == nil {
		return ErrOfferNotFound
	}
	return s.repo.Delete(id)
}

func (s *OfferService) validateInput(input OfferInput) ([]models.OfferItem, error) {
	if input.BranchID == 0 || strings.TrimSpace(input.Slug) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}
	if input.Price.Round(2).LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidInput
	}
	if len(input.Items) == 0 {
		return nil, ErrOfferEmpty
	}

	ids := make([]uint, 0, len(input.Items))
	seen := make(map[uint]bool, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == 0 || seen[item.ProductID] {
			return nil, ErrInvalidInput
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OfferItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if product.BranchID != input.BranchID {
			return nil, ErrInvalidInput
		}
		per := item.PerBundle
		if per <= 0 {
			per = 1
		}
		items = append(items, models.OfferItem{
			ProductID: item.ProductID,
			PerBundle: per,
			SortOrder: item.SortOrder,
		})
	}
	return items, nil
}
