package admin

import (
	"errors"
	"strconv"

	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OfferItemRequest describes one constituent product of an offer.
type OfferItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	PerBundle int  `json:"per_bundle"`
	SortOrder int  `json:"sort_order"`
}

// OfferRequest creates or replaces an offer.
type OfferRequest struct {
	BranchID    uint               `json:"branch_id" binding:"required"`
	Slug        string             `json:"slug" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Price       float64            `json:"price" binding:"required"`
	Image       string             `json:"image"`
	IsActive    *bool              `json:"is_active"`
	SortOrder   int                `json:"sort_order"`
	Items       []OfferItemRequest `json:"items" binding:"required"`
}

func (r OfferRequest) toInput() service.OfferInput {
	items := make([]service.OfferItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, service.OfferItemInput{
			ProductID: item.ProductID,
			PerBundle: item.PerBundle,
			SortOrder: item.SortOrder,
		})
	}
	return service.OfferInput{
		BranchID:    r.BranchID,
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Price:       decimal.NewFromFloat(r.Price),
		Image:       r.Image,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
		Items:       items,
	}
}

func respondOfferMutationError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrOfferNotFound):
		respondError(c, response.CodeNotFound, "offer not found", nil)
	case errors.Is(err, service.ErrOfferEmpty):
		respondError(c, response.CodeBadRequest, "offer needs at least one item", nil)
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeBadRequest, "offer references a missing product", nil)
	case errors.Is(err, service.ErrBranchNotFound):
		respondError(c, response.CodeBadRequest, "branch not found", nil)
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, response.CodeConflict, "slug already taken", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "invalid offer data", nil)
	default:
		respondError(c, response.CodeInternal, "offer "+action+" failed", err)
	}
}

// guardOfferBranch rejects branch-scoped admins touching another branch's
// offer.
func (h *Handler) guardOfferBranch(c *gin.Context, offerID uint) bool {
	scope := adminBranchScope(c)
	if scope == 0 {
		return true
	}
	offer, err := h.OfferService.GetAdminByID(offerID)
	if err != nil {
		respondOfferMutationError(c, err, "fetch")
		return false
	}
	if offer.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return false
	}
	return true
}

// GetAdminOffers lists offers including inactive ones, with availability.
func (h *Handler) GetAdminOffers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	branchID, ok := resolveBranchFilter(c, parseUintQuery(c, "branch_id"))
	if !ok {
		return
	}

	offers, total, err := h.OfferService.ListAdmin(branchID, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "offer fetch failed", err)
		return
	}

	list := make([]gin.H, 0, len(offers))
	for i := range offers {
		list = append(list, gin.H{
			"offer":             offers[i],
			"available_bundles": service.AvailableBundles(&offers[i]),
		})
	}
	response.SuccessWithPage(c, list, buildPagination(page, pageSize, total))
}

// GetAdminOffer returns one offer with availability.
func (h *Handler) GetAdminOffer(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	offer, err := h.OfferService.GetAdminByID(id)
	if err != nil {
		respondOfferMutationError(c, err, "fetch")
		return
	}
	if scope := adminBranchScope(c); scope != 0 && offer.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return
	}
	response.Success(c, gin.H{
		"offer":             offer,
		"available_bundles": service.AvailableBundles(offer),
	})
}

// CreateOffer creates an offer with its constituent items.
func (h *Handler) CreateOffer(c *gin.Context) {
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if scope := adminBranchScope(c); scope != 0 && req.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return
	}
	offer, err := h.OfferService.Create(req.toInput())
	if err != nil {
		respondOfferMutationError(c, err, "create")
		return
	}
	response.Success(c, offer)
}

// UpdateOffer replaces an offer and its constituent items.
func (h *Handler) UpdateOffer(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if !h.guardOfferBranch(c, id) {
		return
	}
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if scope := adminBranchScope(c); scope != 0 && req.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return
	}
	offer, err := h.OfferService.Update(id, req.toInput())
	if err != nil {
		respondOfferMutationError(c, err, "update")
		return
	}
	response.Success(c, offer)
}

// DeleteOffer soft-deletes an offer.
func (h *Handler) DeleteOffer(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if !h.guardOfferBranch(c, id) {
		return
	}
	if err := h.OfferService.Delete(id); err != nil {
		respondOfferMutationError(c, err, "delete")
		return
	}
	response.Success(c, nil)
}
