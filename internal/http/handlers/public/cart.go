package public

import (
	"strings"

	"github.com/hornada/hornada/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartProductRequest adds product units to the cart.
type AddCartProductRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// AddCartOfferRequest adds offer bundles to the cart.
type AddCartOfferRequest struct {
	OfferID  uint `json:"offer_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

// SetCartQuantityRequest replaces an entry's quantity.
type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SelectBranchRequest records the owner's branch choice.
type SelectBranchRequest struct {
	BranchID uint `json:"branch_id" binding:"required"`
}

// GetCart returns the owner's cart with fresh stock data.
func (h *Handler) GetCart(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	view, err := h.CartService.View(owner)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, view)
}

// AddCartProduct adds a product to the cart, merging quantities.
func (h *Handler) AddCartProduct(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	var req AddCartProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if _, err := h.CartService.AddProduct(owner, req.ProductID, req.Quantity); err != nil {
		respondCartMutationError(c, err)
		return
	}
	h.respondCartView(c, owner)
}

// AddCartOffer adds offer bundles to the cart, merging quantities.
func (h *Handler) AddCartOffer(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	var req AddCartOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if _, err := h.CartService.AddOffer(owner, req.OfferID, req.Quantity); err != nil {
		respondCartMutationError(c, err)
		return
	}
	h.respondCartView(c, owner)
}

// SetCartQuantity replaces the quantity of a cart entry. A quantity below
// one removes it.
func (h *Handler) SetCartQuantity(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		respondError(c, response.CodeBadRequest, "cart item key required", nil)
		return
	}
	var req SetCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if _, err := h.CartService.SetQuantity(owner, key, req.Quantity); err != nil {
		respondCartMutationError(c, err)
		return
	}
	h.respondCartView(c, owner)
}

// RemoveCartItem deletes a cart entry; removing an absent entry succeeds.
func (h *Handler) RemoveCartItem(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		respondError(c, response.CodeBadRequest, "cart item key required", nil)
		return
	}
	if _, err := h.CartService.Remove(owner, key); err != nil {
		respondCartMutationError(c, err)
		return
	}
	h.respondCartView(c, owner)
}

// GetCartIssues reports the cart's current stock problems against fresh
// stock data.
func (h *Handler) GetCartIssues(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	issues, err := h.CartService.StockIssues(owner)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, gin.H{"stock_issues": issues, "has_issues": len(issues) > 0})
}

// ClearCart empties the cart. The selected branch stays put.
func (h *Handler) ClearCart(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(owner); err != nil {
		respondError(c, response.CodeInternal, "cart clear failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

// SelectBranch records the owner's pickup branch.
func (h *Handler) SelectBranch(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	var req SelectBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.CartService.SelectBranch(owner, req.BranchID); err != nil {
		respondCartMutationError(c, err)
		return
	}
	response.Success(c, gin.H{"branch_id": req.BranchID})
}

func (h *Handler) respondCartView(c *gin.Context, owner string) {
	view, err := h.CartService.View(owner)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, view)
}
