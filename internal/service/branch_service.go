package service

import (
	"strings"

	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/repository"
)

// BranchService handles bakery branches.
type BranchService struct {
	repo repository.BranchRepository
}

// NewBranchService creates a branch service.
func NewBranchService(repo repository.BranchRepository) *BranchService {
	return &BranchService{repo: repo}
}

// BranchInput is the create/update payload.
type BranchInput struct {
	Slug      string
	Name      string
	Address   string
	Phone     string
	Schedule  string
	IsActive  *bool
	SortOrder int
}

// ListPublic returns active branches for the storefront.
func (s *BranchService) ListPublic(page, pageSize int) ([]models.Branch, int64, error) {
	filter := repository.BranchListFilter{
		Page:       page,
		PageSize:   pageSize,
		OnlyActive: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug returns an active branch for the storefront.
func (s *BranchService) GetPublicBySlug(slug string) (*models.Branch, error) {
	branch, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}
	return branch, nil
}

// ListAdmin returns branches for the back office.
func (s *BranchService) ListAdmin(search string, page, pageSize int) ([]models.Branch, int64, error) {
	filter := repository.BranchListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
	}
	return s.repo.List(filter)
}

// GetAdminByID returns a branch for the back office.
func (s *BranchService) GetAdminByID(id uint) (*models.Branch, error) {
	branch, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}
	return branch, nil
}

// Create adds a branch.
func (s *BranchService) Create(input BranchInput) (*models.Branch, error) {
	if strings.TrimSpace(input.Slug) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}

	count, err := s.repo.CountBySlug(input.Slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugTaken
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	branch := models.Branch{
		Slug:      strings.TrimSpace(input.Slug),
		Name:      strings.TrimSpace(input.Name),
		Address:   strings.TrimSpace(input.Address),
		Phone:     strings.TrimSpace(input.Phone),
		Schedule:  strings.TrimSpace(input.Schedule),
		IsActive:  isActive,
		SortOrder: input.SortOrder,
	}

	if err := s.repo.Create(&branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

// Update saves a branch.
func (s *BranchService) Update(id uint, input BranchInput) (*models.Branch, error) {
	if strings.TrimSpace(input.Slug) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}

	branch, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, ErrBranchNotFound
	}

	count, err := s.repo.CountBySlug(input.Slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSlugTaken
	}

	branch.Slug = strings.TrimSpace(input.Slug)
	branch.Name = strings.TrimSpace(input.Name)
	branch.Address = strings.TrimSpace(input.Address)
	branch.Phone = strings.TrimSpace(input.Phone)
	branch.Schedule = strings.TrimSpace(input.Schedule)
	branch.SortOrder = input.SortOrder
	if input.IsActive != nil {
		branch.IsActive = *input.IsActive
	}

	if err := s.repo.Update(branch); err != nil {
		return nil, err
	}
	return branch, nil
}

// Delete removes a branch.
func (s *BranchService) Delete(id uint) error {
	branch, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if branch == nil {
		return ErrBranchNotFound
	}
	return s.repo.Delete(id)
}
