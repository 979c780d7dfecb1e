package service

import (
	"errors"
	"fmt"
	"strings"
)

// Service-level sentinel errors. Handlers map these onto response codes.
var (
	ErrBranchNotFound       = errors.New("branch not found")
	ErrBranchNotAvailable   = errors.New("branch not available")
	ErrBranchNotSelected    = errors.New("branch not selected")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductNotAvailable  = errors.New("product not available")
	ErrOfferNotFound        = errors.New("offer not found")
	ErrOfferNotAvailable    = errors.New("offer not available")
	ErrOfferEmpty           = errors.New("offer has no constituents")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrCartHasStockIssues   = errors.New("cart has stock issues")
	ErrStockDepleted        = errors.New("stock depleted during submission")
	ErrSubmissionInFlight   = errors.New("order submission already in flight")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderStateInvalid    = errors.New("order state does not allow this transition")
	ErrInvalidInput         = errors.New("invalid input")
	ErrSlugTaken            = errors.New("slug already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidPassword      = errors.New("current password is wrong")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserDisabled         = errors.New("user disabled")
	ErrEmailTaken           = errors.New("email already registered")
	ErrPasswordPolicy       = errors.New("password does not meet policy")
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrAdminBranchForbidden = errors.New("admin not allowed for this branch")
)

// ConstituentShortage is one failing constituent inside a stock violation.
type ConstituentShortage struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Required    int    `json:"required"`
	Available   int    `json:"available"`
}

// StockExceededError reports a rejected cart mutation: the item by name, the
// maximum quantity the caller could still request, and for offers the full
// list of failing constituents.
type StockExceededError struct {
	ItemKey    string                `json:"item_key"`
	ItemName   string                `json:"item_name"`
	Requested  int                   `json:"requested"`
	MaxAllowed int                   `json:"max_allowed"`
	Shortages  []ConstituentShortage `json:"shortages,omitempty"`
}

// Error implements the error interface.
func (e *StockExceededError) Error() string {
	if len(e.Shortages) == 0 {
		return fmt.Sprintf("stock exceeded for %q: requested %d, max %d", e.ItemName, e.Requested, e.MaxAllowed)
	}
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s needs %d, has %d", s.ProductName, s.Required, s.Available))
	}
	return fmt.Sprintf("stock exceeded for %q: %s", e.ItemName, strings.Join(parts, "; "))
}

// AsStockExceeded unwraps a StockExceededError when present.
func AsStockExceeded(err error) (*StockExceededError, bool) {
	var stockErr *StockExceededError
	if errors.As(err, &stockErr) {
		return stockErr, true
	}
	return nil, false
}
