package repository

import (
	"errors"
	"time"

	"github.com/hornada/hornada/internal/models"

	"gorm.io/gorm"
)

// CartStoreRepository is the cart record blob store. Each owner holds
// independent records per kind (cart body, selected branch).
type CartStoreRepository interface {
	Get(ownerKey, kind string) (*models.CartRecord, error)
	Save(ownerKey, kind string, payload []byte) error
	Delete(ownerKey, kind string) error
	DeleteOwner(ownerKey string) error
	DeleteStale(ownerPrefix string, before time.Time) (int64, error)
}

// GormCartStoreRepository is the GORM implementation.
type GormCartStoreRepository struct {
	db *gorm.DB
}

// NewCartStoreRepository creates a cart store repository.
func NewCartStoreRepository(db *gorm.DB) *GormCartStoreRepository {
	return &GormCartStoreRepository{db: db}
}

// Get fetches one record, nil when absent.
func (r *GormCartStoreRepository) Get(ownerKey, kind string) (*models.CartRecord, error) {
	var record models.CartRecord
	if err := r.db.Where("owner_key = ? AND kind = ?", ownerKey, kind).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Save upserts one record payload.
func (r *GormCartStoreRepository) Save(ownerKey, kind string, payload []byte) error {
	var existing models.CartRecord
	err := r.db.Where("owner_key = ? AND kind = ?", ownerKey, kind).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := models.CartRecord{
			OwnerKey: ownerKey,
			Kind:     kind,
			Payload:  payload,
		}
		return r.db.Create(&record).Error
	}
	if err != nil {
		return err
	}
	return r.db.Model(&existing).Updates(map[string]interface{}{
		"payload":    payload,
		"updated_at": time.Now(),
	}).Error
}

// Delete removes one record.
func (r *GormCartStoreRepository) Delete(ownerKey, kind string) error {
	return r.db.Where("owner_key = ? AND kind = ?", ownerKey, kind).Delete(&models.CartRecord{}).Error
}

// DeleteOwner removes every record of an owner.
func (r *GormCartStoreRepository) DeleteOwner(ownerKey string) error {
	return r.db.Where("owner_key = ?", ownerKey).Delete(&models.CartRecord{}).Error
}

// DeleteStale removes records of matching owners untouched since before.
func (r *GormCartStoreRepository) DeleteStale(ownerPrefix string, before time.Time) (int64, error) {
	operator := likeOperator(r.db)
	result := r.db.
		Where("owner_key "+operator+" ?", ownerPrefix+"%").
		Where("updated_at < ?", before).
		Delete(&models.CartRecord{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
