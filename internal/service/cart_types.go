package service

import (
	"fmt"
	"strconv"

	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/models"

	"github.com/shopspring/decimal"
)

// CartConstituent is a product inside an offer bundle, with the stock
// snapshot taken when the cart was last refreshed.
type CartConstituent struct {
	ProductID uint         `json:"product_id"`
	Name      string       `json:"name"`
	Image     string       `json:"image,omitempty"`
	UnitPrice models.Money `json:"unit_price"`
	Stock     int          `json:"stock"`
	PerBundle int          `json:"per_bundle"`
}

// CartItem is one cart entry. Kind selects between a plain product and an
// offer bundle; offers carry their constituents, products leave them empty.
// Identity is the namespaced Key, so a product and an offer never collide.
type CartItem struct {
	Key          string            `json:"key"`
	Kind         string            `json:"kind"`
	RefID        uint              `json:"ref_id"`
	Name         string            `json:"name"`
	Image        string            `json:"image,omitempty"`
	UnitPrice    models.Money      `json:"unit_price"`
	Quantity     int               `json:"quantity"`
	Stock        int               `json:"stock,omitempty"`
	Constituents []CartConstituent `json:"constituents,omitempty"`
}

// ProductKey builds the namespaced cart key for a product.
func ProductKey(productID uint) string {
	return constants.CartKeyPrefixProduct + strconv.FormatUint(uint64(productID), 10)
}

// OfferKey builds the namespaced cart key for an offer.
func OfferKey(offerID uint) string {
	return constants.CartKeyPrefixOffer + strconv.FormatUint(uint64(offerID), 10)
}

// IsOffer reports whether the item is an offer bundle.
func (i CartItem) IsOffer() bool {
	return i.Kind == constants.CartItemKindOffer
}

// MaxQuantity returns the largest quantity the item currently supports:
// plain stock for products, AvailableBundles for offers.
func (i CartItem) MaxQuantity() int {
	if i.IsOffer() {
		return i.AvailableBundles()
	}
	return i.Stock
}

// AvailableBundles is the number of complete bundles the constituent stocks
// allow: the minimum over constituents of floor(stock / per_bundle).
func (i CartItem) AvailableBundles() int {
	if !i.IsOffer() || len(i.Constituents) == 0 {
		return 0
	}
	min := -1
	for _, c := range i.Constituents {
		per := c.PerBundle
		if per <= 0 {
			per = 1
		}
		bundles := c.Stock / per
		if min < 0 || bundles < min {
			min = bundles
		}
	}
	if min < 0 {
		return 0
	}
	return min
}

// Subtotal is unit price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the in-memory cart value for one owner. Mutations validate first
// and commit only on success, so a failed call leaves it untouched.
type Cart struct {
	OwnerKey string     `json:"-"`
	Items    []CartItem `json:"items"`
}

// Find returns the index of the item with the given key, or -1.
func (c *Cart) Find(key string) int {
	for idx, item := range c.Items {
		if item.Key == key {
			return idx
		}
	}
	return -1
}

// Total sums unit price times quantity over all items.
func (c *Cart) Total() models.Money {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return models.NewMoneyFromDecimal(total)
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// StockIssue is one human-readable stock problem in the cart. Issues keep
// cart order, and inside an offer the constituent order.
type StockIssue struct {
	ItemKey     string `json:"item_key"`
	ItemName    string `json:"item_name"`
	ProductName string `json:"product_name,omitempty"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	Message     string `json:"message"`
}

// StockIssues walks the cart against the current stock snapshots.
func (c *Cart) StockIssues() []StockIssue {
	issues := make([]StockIssue, 0)
	for _, item := range c.Items {
		if !item.IsOffer() {
			if item.Quantity > item.Stock {
				issues = append(issues, StockIssue{
					ItemKey:   item.Key,
					ItemName:  item.Name,
					Requested: item.Quantity,
					Available: item.Stock,
					Message:   fmt.Sprintf("%s: only %d left, %d in cart", item.Name, item.Stock, item.Quantity),
				})
			}
			continue
		}
		for _, constituent := range item.Constituents {
			per := constituent.PerBundle
			if per <= 0 {
				per = 1
			}
			required := item.Quantity * per
			if required > constituent.Stock {
				issues = append(issues, StockIssue{
					ItemKey:     item.Key,
					ItemName:    item.Name,
					ProductName: constituent.Name,
					Requested:   required,
					Available:   constituent.Stock,
					Message: fmt.Sprintf("%s (%s): needs %d, only %d left",
						item.Name, constituent.Name, required, constituent.Stock),
				})
			}
		}
	}
	return issues
}

// HasStockIssues reports whether any item exceeds current stock.
func (c *Cart) HasStockIssues() bool {
	return len(c.StockIssues()) > 0
}

// normalizeOfferConstituents resolves the two historical constituent shapes
// at a single boundary: explicit per-bundle quantities, and bare product
// references that imply one unit per bundle (stored as 0).
func normalizeOfferConstituents(items []models.OfferItem) []models.OfferItem {
	normalized := make([]models.OfferItem, 0, len(items))
	for _, item := range items {
		if item.ProductID == 0 {
			continue
		}
		if item.PerBundle <= 0 {
			item.PerBundle = 1
		}
		normalized = append(normalized, item)
	}
	return normalized
}
