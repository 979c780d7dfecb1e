package admin

import (
	"errors"
	"strconv"

	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
)

// BranchRequest creates or replaces a branch.
type BranchRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address"`
	Phone     string `json:"phone"`
	Schedule  string `json:"schedule"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

func (r BranchRequest) toInput() service.BranchInput {
	return service.BranchInput{
		Slug:      r.Slug,
		Name:      r.Name,
		Address:   r.Address,
		Phone:     r.Phone,
		Schedule:  r.Schedule,
		IsActive:  r.IsActive,
		SortOrder: r.SortOrder,
	}
}

func respondBranchMutationError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrBranchNotFound):
		respondError(c, response.CodeNotFound, "branch not found", nil)
	case errors.Is(err, service.ErrSlugTaken):
		respondError(c, response.CodeConflict, "slug already taken", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "invalid branch data", nil)
	default:
		respondError(c, response.CodeInternal, "branch "+action+" failed", err)
	}
}

// GetAdminBranches lists branches including inactive ones.
func (h *Handler) GetAdminBranches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	branches, total, err := h.BranchService.ListAdmin(c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "branch fetch failed", err)
		return
	}
	response.SuccessWithPage(c, branches, buildPagination(page, pageSize, total))
}

// GetAdminBranch returns one branch.
func (h *Handler) GetAdminBranch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	branch, err := h.BranchService.GetAdminByID(id)
	if err != nil {
		respondBranchMutationError(c, err, "fetch")
		return
	}
	response.Success(c, branch)
}

// CreateBranch creates a branch.
func (h *Handler) CreateBranch(c *gin.Context) {
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	branch, err := h.BranchService.Create(req.toInput())
	if err != nil {
		respondBranchMutationError(c, err, "create")
		return
	}
	response.Success(c, branch)
}

// UpdateBranch replaces a branch.
func (h *Handler) UpdateBranch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	branch, err := h.BranchService.Update(id, req.toInput())
	if err != nil {
		respondBranchMutationError(c, err, "update")
		return
	}
	response.Success(c, branch)
}

// DeleteBranch soft-deletes a branch.
func (h *Handler) DeleteBranch(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.BranchService.Delete(id); err != nil {
		respondBranchMutationError(c, err, "delete")
		return
	}
	response.Success(c, nil)
}
