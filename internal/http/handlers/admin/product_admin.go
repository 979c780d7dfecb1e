package admin

import (
	"errors"
	"strconv"

	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const defaultLowStockThreshold = 5

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	BranchID    uint     `json:"branch_id" binding:"required"`
	Slug        string   `json:"slug" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required"`
	Image       string   `json:"image"`
	Stock       *int     `json:"stock"`
	Tags        []string `json:"tags"`
	IsActive    *bool    `json:"is_active"`
	SortOrder   int      `json:"sort_order"`
}

// SetStockRequest replaces a product's stock count.
type SetStockRequest struct {
	Stock *int `json:"stock" binding:"required"`
}

func (r ProductRequest) toInput() service.ProductInput {
	return service.ProductInput{
		BranchID:    r.BranchID,
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Price:       decimal.NewFromFloat(r.Price),
		Image:       r.Image,
		Stock:       r.Stock,
		Tags:        r.Tags,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}
}

func respondProductMutationError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrBranchNotFound):
		respondError(c, response.CodeBadRequest, "branch not found", nil)
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, response.CodeConflict, "slug already taken", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "invalid product data", nil)
	default:
		respondError(c, response.CodeInternal, "product "+action+" failed", err)
	}
}

// resolveBranchFilter narrows a requested branch to the admin's scope.
// Branch-scoped admins always see their own branch only.
func resolveBranchFilter(c *gin.Context, requested uint) (uint, bool) {
	scope := adminBranchScope(c)
	if scope == 0 {
		return requested, true
	}
	if requested != 0 && requested != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return 0, false
	}
	return scope, true
}

// guardProductBranch rejects branch-scoped admins touching another
// branch's product.
func (h *Handler) guardProductBranch(c *gin.Context, productID uint) bool {
	scope := adminBranchScope(c)
	if scope == 0 {
		return true
	}
	product, err := h.ProductService.GetAdminByID(productID)
	if err != nil {
		respondProductMutationError(c, err, "fetch")
		return false
	}
	if product.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return false
	}
	return true
}

// GetAdminProducts lists products including inactive ones.
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	branchID, ok := resolveBranchFilter(c, parseUintQuery(c, "branch_id"))
	if !ok {
		return
	}

	products, total, err := h.ProductService.ListAdmin(branchID, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.SuccessWithPage(c, products, buildPagination(page, pageSize, total))
}

// GetAdminProduct returns one product.
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	product, err := h.ProductService.GetAdminByID(id)
	if err != nil {
		respondProductMutationError(c, err, "fetch")
		return
	}
	if scope := adminBranchScope(c); scope != 0 && product.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return
	}
	response.Success(c, product)
}

// GetLowStockProducts lists products at or below the configured
// threshold.
func (h *Handler) GetLowStockProducts(c *gin.Context) {
	branchID, ok := resolveBranchFilter(c, parseUintQuery(c, "branch_id"))
	if !ok {
		return
	}

	threshold, err := h.SettingService.LowStockThreshold(defaultLowStockThreshold)
	if err != nil {
		threshold = defaultLowStockThreshold
	}
	if raw := c.Query("threshold"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil && parsed >= 0 {
			threshold = parsed
		}
	}

	products, err := h.ProductService.ListLowStock(branchID, threshold)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"threshold": threshold,
		"products":  products,
	})
}

// CreateProduct creates a product.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if scope := adminBranchScope(c); scope != 0 && req.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return
	}
	product, err := h.ProductService.Create(req.toInput())
	if err != nil {
		respondProductMutationError(c, err, "create")
		return
	}
	response.Success(c, product)
}

// UpdateProduct replaces a product.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if !h.guardProductBranch(c, id) {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if scope := adminBranchScope(c); scope != 0 && req.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return
	}
	product, err := h.ProductService.Update(id, req.toInput())
	if err != nil {
		respondProductMutationError(c, err, "update")
		return
	}
	response.Success(c, product)
}

// SetProductStock replaces a product's stock count.
func (h *Handler) SetProductStock(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if !h.guardProductBranch(c, id) {
		return
	}
	var req SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Stock == nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product, err := h.ProductService.SetStock(id, *req.Stock)
	if err != nil {
		respondProductMutationError(c, err, "stock update")
		return
	}
	response.Success(c, product)
}

// DeleteProduct soft-deletes a product.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if !h.guardProductBranch(c, id) {
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondProductMutationError(c, err, "delete")
		return
	}
	response.Success(c, nil)
}
