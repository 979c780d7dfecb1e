package models

import (
	"time"

	"gorm.io/gorm"
)

// Offer is a promotional bundle sold at a single price. Its constituents
// reference branch products with a per-bundle quantity.
type Offer struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	BranchID    uint           `gorm:"not null;index" json:"branch_id"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:varchar(2000)" json:"description"`
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	Image       string         `gorm:"type:varchar(500)" json:"image"`
	IsActive    bool           `gorm:"index" json:"is_active"`
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Branch *Branch     `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
	Items  []OfferItem `gorm:"foreignKey:OfferID" json:"items,omitempty"`
}

// TableName sets the table name.
func (Offer) TableName() string {
	return "offers"
}

// OfferItem is one constituent of an offer. PerBundle is the product units
// included in a single bundle; legacy rows carry 0 meaning 1.
type OfferItem struct {
	ID        uint `gorm:"primarykey" json:"id"`
	OfferID   uint `gorm:"index;not null;uniqueIndex:idx_offer_product" json:"offer_id"`
	ProductID uint `gorm:"index;not null;uniqueIndex:idx_offer_product" json:"product_id"`
	PerBundle int  `gorm:"not null" json:"per_bundle"`
	SortOrder int  `gorm:"default:0" json:"sort_order"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName sets the table name.
func (OfferItem) TableName() string {
	return "offer_items"
}
