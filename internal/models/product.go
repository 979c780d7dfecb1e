package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a sellable bakery item at a branch. Stock counts whole units
// on hand; 0 means sold out.
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	BranchID    uint           `gorm:"not null;index" json:"branch_id"`
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:varchar(2000)" json:"description"`
	Price       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	Image       string         `gorm:"type:varchar(500)" json:"image"`
	Stock       int            `gorm:"not null;default:0" json:"stock"`
	Tags        StringArray    `gorm:"type:json" json:"tags"`
	IsActive    bool           `gorm:"index" json:"is_active"`
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}
