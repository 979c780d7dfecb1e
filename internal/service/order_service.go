package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/hornada/hornada/internal/constants"
	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/models"
	"github.com/hornada/hornada/internal/queue"
	"github.com/hornada/hornada/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// allowedTransitions is the order status machine.
var allowedTransitions = map[string][]string{
	constants.OrderStatusPending:   {constants.OrderStatusConfirmed, constants.OrderStatusCanceled},
	constants.OrderStatusConfirmed: {constants.OrderStatusReady, constants.OrderStatusCanceled},
	constants.OrderStatusReady:     {constants.OrderStatusDelivered},
}

// CreateOrderInput is the order submission request.
type CreateOrderInput struct {
	OwnerKey    string
	UserID      uint
	GuestToken  string
	ContactName string
	Phone       string
	Notes       string
	ClientIP    string
}

// OrderService turns carts into orders and drives the status machine.
type OrderService struct {
	orderRepo   *repository.GormOrderRepository
	productRepo repository.ProductRepository
	cartService *CartService
	settingSvc  *SettingService
	queueClient *queue.Client

	confirmExpireMinutes int

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewOrderService creates an order service.
func NewOrderService(
	orderRepo *repository.GormOrderRepository,
	productRepo repository.ProductRepository,
	cartService *CartService,
	settingSvc *SettingService,
	queueClient *queue.Client,
	confirmExpireMinutes int,
) *OrderService {
	if confirmExpireMinutes <= 0 {
		confirmExpireMinutes = 30
	}
	return &OrderService{
		orderRepo:            orderRepo,
		productRepo:          productRepo,
		cartService:          cartService,
		settingSvc:           settingSvc,
		queueClient:          queueClient,
		confirmExpireMinutes: confirmExpireMinutes,
		inFlight:             make(map[string]bool),
	}
}

func (s *OrderService) acquireSubmission(ownerKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[ownerKey] {
		return false
	}
	s.inFlight[ownerKey] = true
	return true
}

func (s *OrderService) releaseSubmission(ownerKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, ownerKey)
}

// CreateFromCart submits the owner's cart as an order. The cart must be
// non-empty, free of stock issues and bound to a branch. Stock is reserved
// with guarded decrements inside one transaction; losing a race leaves the
// cart untouched so the caller can retry. Success clears the cart. Only one
// submission per owner runs at a time.
func (s *OrderService) CreateFromCart(input CreateOrderInput) (*models.Order, error) {
	ownerKey := strings.TrimSpace(input.OwnerKey)
	if ownerKey == "" {
		return nil, ErrInvalidInput
	}
	if !s.acquireSubmission(ownerKey) {
		return nil, ErrSubmissionInFlight
	}
	defer s.releaseSubmission(ownerKey)

	cart, err := s.cartService.Load(ownerKey)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrCartEmpty
	}
	if err := s.cartService.Refresh(cart); err != nil {
		return nil, err
	}
	if cart.HasStockIssues() {
		return nil, ErrCartHasStockIssues
	}

	branchID, err := s.cartService.SelectedBranchID(ownerKey)
	if err != nil {
		return nil, err
	}
	if branchID == 0 {
		return nil, ErrBranchNotSelected
	}

	lines := flattenCartItems(cart.Items)
	now := time.Now()
	expireMinutes, err := s.settingSvc.ConfirmExpireMinutes(s.confirmExpireMinutes)
	if err != nil {
		logger.Warnw("order_confirm_expire_setting_failed", "error", err)
		expireMinutes = s.confirmExpireMinutes
	}
	expiresAt := now.Add(time.Duration(expireMinutes) * time.Minute)

	order := &models.Order{
		OrderNo:     generateOrderNo(),
		UserID:      input.UserID,
		GuestToken:  input.GuestToken,
		BranchID:    branchID,
		Status:      constants.OrderStatusPending,
		Currency:    s.siteCurrency(),
		TotalAmount: cart.Total(),
		ContactName: strings.TrimSpace(input.ContactName),
		Phone:       strings.TrimSpace(input.Phone),
		Notes:       strings.TrimSpace(input.Notes),
		ClientIP:    strings.TrimSpace(input.ClientIP),
		ExpiresAt:   &expiresAt,
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		for _, line := range lines {
			affected, err := productRepo.ReserveStock(line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockDepleted
			}
		}
		return s.orderRepo.WithTx(tx).Create(order, lines)
	})
	if err != nil {
		return nil, err
	}

	if err := s.cartService.Clear(ownerKey); err != nil {
		logger.Warnw("order_cart_clear_failed", "owner", ownerKey, "order_no", order.OrderNo, "error", err)
	}

	if s.queueClient.Enabled() {
		delay := time.Until(expiresAt)
		if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{OrderID: order.ID}, delay); err != nil {
			logger.Warnw("order_timeout_task_enqueue_failed", "order_id", order.ID, "error", err)
		}
	}

	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"branch_id", branchID,
		"user_id", input.UserID,
		"lines", len(lines),
		"total", order.TotalAmount.String(),
	)
	return s.orderRepo.GetByID(order.ID)
}

// flattenCartItems expands cart entries into order lines. A product entry
// maps to one line. An offer entry maps to one line per constituent with
// quantity bundles*per_bundle and the bundle total split evenly across the
// constituent count; the last line absorbs the rounding remainder so the
// line totals reconcile exactly.
func flattenCartItems(items []CartItem) []models.OrderItem {
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if !item.IsOffer() {
			lines = append(lines, models.OrderItem{
				ProductID:  item.RefID,
				Name:       item.Name,
				UnitPrice:  item.UnitPrice,
				Quantity:   item.Quantity,
				TotalPrice: models.NewMoneyFromDecimal(item.Subtotal()),
			})
			continue
		}

		count := len(item.Constituents)
		if count == 0 {
			continue
		}
		offerID := item.RefID
		bundleTotal := item.Subtotal()
		baseShare := bundleTotal.Div(decimal.NewFromInt(int64(count))).RoundDown(2)
		spent := decimal.Zero
		for idx, constituent := range item.Constituents {
			per := constituent.PerBundle
			if per <= 0 {
				per = 1
			}
			quantity := item.Quantity * per
			share := baseShare
			if idx == count-1 {
				share = bundleTotal.Sub(spent)
			}
			spent = spent.Add(share)

			unit := share
			if quantity > 0 {
				unit = share.Div(decimal.NewFromInt(int64(quantity))).Round(2)
			}
			id := offerID
			lines = append(lines, models.OrderItem{
				ProductID:  constituent.ProductID,
				Name:       constituent.Name,
				OfferID:    &id,
				OfferName:  item.Name,
				UnitPrice:  models.NewMoneyFromDecimal(unit),
				Quantity:   quantity,
				TotalPrice: models.NewMoneyFromDecimal(share),
			})
		}
	}
	return lines
}

func (s *OrderService) siteCurrency() string {
	if s.settingSvc != nil {
		if currency := s.settingSvc.SiteCurrency(); currency != "" {
			return currency
		}
	}
	return constants.SiteCurrencyDefault
}

// generateOrderNo builds an order number from a timestamp plus random digits.
func generateOrderNo() string {
	return fmt.Sprintf("HN%s%s", time.Now().Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	const digits = "0123456789"
	var builder strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			builder.WriteByte('0')
			continue
		}
		builder.WriteByte(digits[n.Int64()])
	}
	return builder.String()
}

// GetForUser fetches an order owned by a user.
func (s *OrderService) GetForUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetForGuest fetches a guest order by its cart token.
func (s *OrderService) GetForGuest(orderID uint, guestToken string) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndGuest(orderID, guestToken)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListForUser lists a user's orders.
func (s *OrderService) ListForUser(userID uint, status string, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   status,
	})
}

// ListForGuest lists guest orders by cart token.
func (s *OrderService) ListForGuest(guestToken string, page, pageSize int) ([]models.Order, int64, error) {
	return s.orderRepo.ListByGuest(guestToken, page, pageSize)
}

// ListAdmin lists orders for the back office.
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetByID fetches any order.
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus moves an order along the status machine. Cancellation
// returns the reserved units to stock.
func (s *OrderService) UpdateStatus(orderID uint, target string) (*models.Order, error) {
	target = strings.ToLower(strings.TrimSpace(target))
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if !transitionAllowed(order.Status, target) {
		return nil, ErrOrderStateInvalid
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	switch target {
	case constants.OrderStatusConfirmed:
		updates["confirmed_at"] = now
		updates["expires_at"] = nil
	case constants.OrderStatusCanceled:
		updates["canceled_at"] = now
	}

	if target == constants.OrderStatusCanceled {
		if err := s.cancelWithRestore(order, updates); err != nil {
			return nil, err
		}
	} else if err := s.orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
		return nil, err
	}

	return s.GetByID(orderID)
}

// CancelForOwner cancels a pending order on behalf of its owner.
func (s *OrderService) CancelForOwner(order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderStateInvalid
	}
	now := time.Now()
	updates := map[string]interface{}{"updated_at": now, "canceled_at": now}
	if err := s.cancelWithRestore(order, updates); err != nil {
		return nil, err
	}
	return s.GetByID(order.ID)
}

// CancelExpiredOrder cancels a pending order past its expiry, restoring
// stock. Fired by the timeout task; a no-longer-pending order is a no-op.
func (s *OrderService) CancelExpiredOrder(orderID uint) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.OrderStatusPending {
		return order, nil
	}
	if order.ExpiresAt == nil || order.ExpiresAt.After(time.Now()) {
		return order, nil
	}
	now := time.Now()
	updates := map[string]interface{}{"updated_at": now, "canceled_at": now}
	if err := s.cancelWithRestore(order, updates); err != nil {
		return nil, err
	}
	logger.Infow("order_expired_canceled", "order_id", order.ID, "order_no", order.OrderNo)
	return s.GetByID(order.ID)
}

// CancelExpired sweeps every pending order past expiry. The worker loop
// calls this behind the per-order timeout tasks.
func (s *OrderService) CancelExpired(now time.Time) (int, error) {
	orders, err := s.orderRepo.ListExpiredPending(now, 200)
	if err != nil {
		return 0, err
	}
	canceled := 0
	for _, order := range orders {
		if _, err := s.CancelExpiredOrder(order.ID); err != nil {
			logger.Warnw("order_expiry_sweep_cancel_failed", "order_id", order.ID, "error", err)
			continue
		}
		canceled++
	}
	return canceled, nil
}

func (s *OrderService) cancelWithRestore(order *models.Order, updates map[string]interface{}) error {
	return s.productRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			if _, err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusCanceled, updates)
	})
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
