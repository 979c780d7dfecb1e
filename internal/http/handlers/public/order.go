package public

import (
	"errors"
	"strconv"

	"github.com/hornada/hornada/internal/http/response"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitOrderRequest carries the pickup contact details.
type SubmitOrderRequest struct {
	ContactName string `json:"contact_name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Notes       string `json:"notes"`
}

// SubmitOrder turns the owner's cart into a pending order.
func (h *Handler) SubmitOrder(c *gin.Context) {
	owner, ok := getOwnerKey(c)
	if !ok {
		return
	}
	var req SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CreateFromCart(service.CreateOrderInput{
		OwnerKey:    owner,
		UserID:      optionalUserID(c),
		GuestToken:  getGuestToken(c),
		ContactName: req.ContactName,
		Phone:       req.Phone,
		Notes:       req.Notes,
		ClientIP:    c.ClientIP(),
	})
	if err != nil {
		respondOrderSubmitError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrders lists the requester's orders, newest first.
func (h *Handler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var (
		list  []models.Order
		total int64
		err   error
	)
	if userID := optionalUserID(c); userID > 0 {
		list, total, err = h.OrderService.ListForUser(userID, c.Query("status"), page, pageSize)
	} else if token := getGuestToken(c); token != "" {
		list, total, err = h.OrderService.ListForGuest(token, page, pageSize)
	} else {
		list = []models.Order{}
	}
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	respondOrderPage(c, list, total, page, pageSize)
}

// GetOrder returns one order owned by the requester.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.fetchOwnedOrder(c, orderID)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder cancels a pending or confirmed order and restores stock.
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.fetchOwnedOrder(c, orderID)
	if err != nil {
		respondOrderLookupError(c, err)
		return
	}
	canceled, err := h.OrderService.CancelForOwner(order)
	if err != nil {
		if errors.Is(err, service.ErrOrderStateInvalid) {
			respondError(c, response.CodeConflict, "order can no longer be canceled", nil)
			return
		}
		respondError(c, response.CodeInternal, "order cancel failed", err)
		return
	}
	response.Success(c, canceled)
}

func (h *Handler) fetchOwnedOrder(c *gin.Context, orderID uint) (*models.Order, error) {
	if userID := optionalUserID(c); userID > 0 {
		return h.OrderService.GetForUser(orderID, userID)
	}
	token := getGuestToken(c)
	if token == "" {
		return nil, service.ErrOrderNotFound
	}
	return h.OrderService.GetForGuest(orderID, token)
}

func respondOrderLookupError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrOrderNotFound) {
		respondError(c, response.CodeNotFound, "order not found", nil)
		return
	}
	respondError(c, response.CodeInternal, "order fetch failed", err)
}

func respondOrderPage(c *gin.Context, list []models.Order, total int64, page, pageSize int) {
	response.SuccessWithPage(c, list, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func parseOrderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", err)
		return 0, false
	}
	return uint(id), true
}
