package models

import "time"

// CartRecord is one persisted cart-store blob for an owner. The cart body
// and the selected branch live in separate records so a corrupt or missing
// one never touches the other.
type CartRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OwnerKey  string    `gorm:"not null;uniqueIndex:idx_cart_owner_kind" json:"owner_key"`
	Kind      string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_cart_owner_kind" json:"kind"`
	Payload   []byte    `gorm:"type:blob" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

// TableName sets the table name.
func (CartRecord) TableName() string {
	return "cart_records"
}
