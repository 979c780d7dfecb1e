package repository

import (
	"errors"
	"strings"

	"github.com/hornada/hornada/internal/models"

	"gorm.io/gorm"
)

// OfferRepository is the offer data access interface.
type OfferRepository interface {
	List(filter OfferListFilter) ([]models.Offer, int64, error)
	GetByID(id uint) (*models.Offer, error)
	GetBySlug(slug string, onlyActive bool) (*models.Offer, error)
	Create(offer *models.Offer) error
	Update(offer *models.Offer) error
	ReplaceItems(offerID uint, items []models.OfferItem) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
}

// GormOfferRepository is the GORM implementation.
type GormOfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository creates an offer repository.
func NewOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

func preloadOfferItems(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

// List returns offers matching the filter, constituents preloaded in their
// declared order.
func (r *GormOfferRepository) List(filter OfferListFilter) ([]models.Offer, int64, error) {
	var offers []models.Offer

	query := r.db.Model(&models.Offer{}).
		Preload("Items", preloadOfferItems).
		Preload("Items.Product")
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"slug", "name", "description"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("sort_order DESC, created_at DESC").Find(&offers).Error; err != nil {
		return nil, 0, err
	}

	return offers, total, nil
}

// GetByID fetches an offer with its constituents.
func (r *GormOfferRepository) GetByID(id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.
		Preload("Items", preloadOfferItems).
		Preload("Items.Product").
		First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// GetBySlug fetches an offer by slug with its constituents.
func (r *GormOfferRepository) GetBySlug(slug string, onlyActive bool) (*models.Offer, error) {
	query := r.db.
		Preload("Items", preloadOfferItems).
		Preload("Items.Product").
		Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var offer models.Offer
	if err := query.First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// Create inserts an offer with its constituents.
func (r *GormOfferRepository) Create(offer *models.Offer) error {
	return r.db.Create(offer).Error
}

// Update saves offer fields without touching constituents.
func (r *GormOfferRepository) Update(offer *models.Offer) error {
	return r.db.Omit("Items").Save(offer).Error
}

// ReplaceItems swaps the constituent list of an offer.
func (r *GormOfferRepository) ReplaceItems(offerID uint, items []models.OfferItem) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", offerID).Delete(&models.OfferItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].OfferID = offerID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// Delete soft-deletes an offer.
func (r *GormOfferRepository) Delete(id uint) error {
	return r.db.Delete(&models.Offer{}, id).Error
}

// CountBySlug counts offers sharing a slug.
func (r *GormOfferRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Offer{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
