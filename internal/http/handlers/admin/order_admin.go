package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/repository"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest moves an order through the status machine.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminOrders lists orders with filters.
func (h *Handler) GetAdminOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	branchID, ok := resolveBranchFilter(c, parseUintQuery(c, "branch_id"))
	if !ok {
		return
	}

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		BranchID: branchID,
		Status:   c.Query("status"),
		OrderNo:  c.Query("order_no"),
		UserID:   parseUintQuery(c, "user_id"),
	}
	if from := parseTimeQuery(c, "created_from"); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTimeQuery(c, "created_to"); to != nil {
		filter.CreatedTo = to
	}

	orders, total, err := h.OrderService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.SuccessWithPage(c, orders, buildPagination(page, pageSize, total))
}

// GetAdminOrder returns one order with its lines.
func (h *Handler) GetAdminOrder(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(id)
	if err != nil {
		respondOrderAdminError(c, err, "fetch")
		return
	}
	if scope := adminBranchScope(c); scope != 0 && order.BranchID != scope {
		respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus moves an order to the requested status. Canceling
// restores stock.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if scope := adminBranchScope(c); scope != 0 {
		order, err := h.OrderService.GetByID(id)
		if err != nil {
			respondOrderAdminError(c, err, "fetch")
			return
		}
		if order.BranchID != scope {
			respondError(c, response.CodeForbidden, "branch out of scope", service.ErrAdminBranchForbidden)
			return
		}
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.UpdateStatus(id, req.Status)
	if err != nil {
		respondOrderAdminError(c, err, "status update")
		return
	}
	response.Success(c, order)
}

func respondOrderAdminError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrOrderStateInvalid):
		respondError(c, response.CodeConflict, "status transition not allowed", nil)
	case errors.Is(err, service.ErrInvalidInput):
		respondError(c, response.CodeBadRequest, "invalid status", nil)
	default:
		respondError(c, response.CodeInternal, "order "+action+" failed", err)
	}
}

func parseTimeQuery(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &parsed
}
