package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/provider"
	"github.com/hornada/hornada/internal/queue"
	"github.com/hornada/hornada/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles async tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register wires the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskCartStaleSweep, c.handleCartStaleSweep)
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if _, err := c.OrderService.CancelExpiredOrder(payload.OrderID); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleCartStaleSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_stale_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartStaleSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_stale_sweep_unmarshal_failed", "error", err)
		return err
	}
	ttl := payload.TTLHours
	if ttl <= 0 && c.Config != nil {
		ttl = c.Config.Cart.GuestTTLHours
	}
	if ttl <= 0 {
		ttl = 168
	}
	before := time.Now().Add(-time.Duration(ttl) * time.Hour)
	removed, err := c.CartStoreRepo.DeleteStale("guest:", before)
	if err != nil {
		logger.Warnw("worker_cart_stale_sweep_failed", "error", err)
		return err
	}
	if removed > 0 {
		logger.Infow("worker_cart_stale_sweep_done", "removed", removed, "ttl_hours", ttl)
	}
	return nil
}
