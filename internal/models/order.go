package models

import (
	"time"

	"gorm.io/gorm"
)

// Order is a submitted purchase at a branch.
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OrderNo     string         `gorm:"uniqueIndex;not null" json:"order_no"`
	UserID      uint           `gorm:"index;not null" json:"user_id,omitempty"` // 0 for guest orders
	GuestToken  string         `gorm:"index;type:varchar(64)" json:"-"`
	BranchID    uint           `gorm:"index;not null" json:"branch_id"`
	Status      string         `gorm:"index;not null" json:"status"`
	Currency    string         `gorm:"not null" json:"currency"`
	TotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	ContactName string         `gorm:"type:varchar(200)" json:"contact_name"`
	Phone       string         `gorm:"type:varchar(50)" json:"phone"`
	Notes       string         `gorm:"type:varchar(1000)" json:"notes,omitempty"`
	ClientIP    string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`
	ExpiresAt   *time.Time     `gorm:"index" json:"expires_at"`
	ConfirmedAt *time.Time     `gorm:"index" json:"confirmed_at"`
	CanceledAt  *time.Time     `gorm:"index" json:"canceled_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items  []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Branch *Branch     `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}
