package models

import (
	"time"

	"gorm.io/gorm"
)

// Branch is a physical bakery location (sucursal). Products, offers and
// orders are scoped to a branch.
type Branch struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	Name      string         `gorm:"not null" json:"name"`
	Address   string         `gorm:"type:varchar(500)" json:"address"`
	Phone     string         `gorm:"type:varchar(50)" json:"phone"`
	Schedule  string         `gorm:"type:varchar(200)" json:"schedule"` // opening hours, display only
	IsActive  bool           `gorm:"index" json:"is_active"`
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Branch) TableName() string {
	return "branches"
}
