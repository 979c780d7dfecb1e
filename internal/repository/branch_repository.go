package repository

import (
	"errors"
	"strings"

	"github.com/hornada/hornada/internal/models"

	"gorm.io/gorm"
)

// BranchRepository is the branch data access interface.
type BranchRepository interface {
	List(filter BranchListFilter) ([]models.Branch, int64, error)
	GetByID(id uint) (*models.Branch, error)
	GetBySlug(slug string, onlyActive bool) (*models.Branch, error)
	Create(branch *models.Branch) error
	Update(branch *models.Branch) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
}

// GormBranchRepository is the GORM implementation.
type GormBranchRepository struct {
	db *gorm.DB
}

// NewBranchRepository creates a branch repository.
func NewBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// List returns branches matching the filter.
func (r *GormBranchRepository) List(filter BranchListFilter) ([]models.Branch, int64, error) {
	var branches []models.Branch

	query := r.db.Model(&models.Branch{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"slug", "name", "address"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("sort_order DESC, id ASC").Find(&branches).Error; err != nil {
		return nil, 0, err
	}

	return branches, total, nil
}

// GetByID fetches a branch by id.
func (r *GormBranchRepository) GetByID(id uint) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.First(&branch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

// GetBySlug fetches a branch by slug.
func (r *GormBranchRepository) GetBySlug(slug string, onlyActive bool) (*models.Branch, error) {
	query := r.db.Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var branch models.Branch
	if err := query.First(&branch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

// Create inserts a branch.
func (r *GormBranchRepository) Create(branch *models.Branch) error {
	return r.db.Create(branch).Error
}

// Update saves a branch.
func (r *GormBranchRepository) Update(branch *models.Branch) error {
	return r.db.Save(branch).Error
}

// Delete soft-deletes a branch.
func (r *GormBranchRepository) Delete(id uint) error {
	return r.db.Delete(&models.Branch{}, id).Error
}

// CountBySlug counts branches sharing a slug.
func (r *GormBranchRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Branch{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
