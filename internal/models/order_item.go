package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderItem is one flattened order line. Offer bundles are expanded into one
// line per constituent product at submission time; OfferName keeps the
// bundle the line came from.
type OrderItem struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	OrderID    uint           `gorm:"index;not null" json:"order_id"`
	ProductID  uint           `gorm:"index;not null" json:"product_id"`
	Name       string         `gorm:"not null" json:"name"` // product name snapshot
	OfferID    *uint          `gorm:"index" json:"offer_id,omitempty"`
	OfferName  string         `gorm:"type:varchar(200)" json:"offer_name,omitempty"`
	UnitPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	Quantity   int            `gorm:"not null" json:"quantity"`
	TotalPrice Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
