package repository

import "time"

// BranchListFilter filters branch listings.
type BranchListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// ProductListFilter filters product listings.
type ProductListFilter struct {
	Page       int
	PageSize   int
	BranchID   uint
	Search     string
	OnlyActive bool
	InStock    bool
	WithBranch bool
}

// OfferListFilter filters offer listings.
type OfferListFilter struct {
	Page       int
	PageSize   int
	BranchID   uint
	Search     string
	OnlyActive bool
}

// OrderListFilter filters order listings.
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	GuestToken  string
	BranchID    uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter filters user listings.
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
