package service

import (
	"strings"

	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService handles the product catalog.
type ProductService struct {
	repo       repository.ProductRepository
	branchRepo repository.BranchRepository
}

// NewProductService creates a product service.
func NewProductService(repo repository.ProductRepository, branchRepo repository.BranchRepository) *ProductService {
	return &ProductService{repo: repo, branchRepo: branchRepo}
}

// ProductInput is the create/update payload.
type ProductInput struct {
	BranchID    uint
	Slug        string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Stock       *int
	Tags        []string
	IsActive    *bool
	SortOrder   int
}

// ListPublic returns active products for the storefront.
func (s *ProductService) ListPublic(branchID uint, search string, inStock bool, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		BranchID:   branchID,
		Search:     search,
		InStock:    inStock,
		OnlyActive: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug returns an active product for the storefront.
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin returns products for the back office.
func (s *ProductService) ListAdmin(branchID uint, search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		BranchID:   branchID,
		Search:     search,
		OnlyActive: false,
		WithBranch: true,
	}
	return s.repo.List(filter)
}

// GetAdminByID returns a product for the back office.
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListLowStock returns active products at or below the threshold.
func (s *ProductService) ListLowStock(branchID uint, threshold int) ([]models.Product, error) {
	return s.repo.ListLowStock(branchID, threshold)
}

// Create adds a product.
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	if err := s.validateInput(input); err != nil {
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
	stock := 0
	if input.Stock != nil {
		stock = *input.Stock
	}
	if stock < 0 {
		return nil, ErrInvalidInput
	}

	product := models.Product{
		BranchID:    input.BranchID,
		Slug:        strings.TrimSpace(input.Slug),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Price:       models.NewMoneyFromDecimal(input.Price.Round(2)),
		Image:       strings.TrimSpace(input.Image),
		Stock:       stock,
		Tags:        models.StringArray(input.Tags),
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}

	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update saves a product.
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	count, err := s.repo.CountBySlug(input.Slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugTaken
	}

	if input.BranchID != product.BranchID {
		branch, err := s.branchRepo.GetByID(input.BranchID)
		if err != nil {
			return nil, err
		}
		if branch == nil {
			return nil, ErrBranchNotFound
		}
		product.BranchID = input.BranchID
	}

	product.Slug = strings.TrimSpace(input.Slug)
	product.Name = strings.TrimSpace(input.Name)
	product.Description = strings.TrimSpace(input.Description)
	product.Price = models.NewMoneyFromDecimal(input.Price.Round(2))
	product.Image = strings.TrimSpace(input.Image)
	product.Tags = models.StringArray(input.Tags)
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, ErrInvalidInput
		}
		product.Stock = *input.Stock
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetStock replaces the on-hand stock count.
func (s *ProductService) SetStock(id uint, stock int) (*models.Product, error) {
	if stock < 0 {
		return nil, ErrInvalidInput
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	product.Stock = stock
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product.
func (s *ProductService) Delete(id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}

func (s *ProductService) validateInput(input ProductInput) error {
	if input.BranchID == 0 || strings.TrimSpace(input.Slug) == "" || strings.TrimSpace(input.Name) == "" {
		return ErrInvalidInput
	}
	if input.Price.Round(2).LessThanOrEqual(decimal.Zero) {
		return ErrInvalidInput
	}
	return nil
}
