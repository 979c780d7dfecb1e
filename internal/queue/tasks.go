package queue

import (
	"encoding/json"

	"github.com/hornada/hornada/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderTimeoutCancel cancels an unconfirmed order after expiry.
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	// TaskCartStaleSweep removes abandoned guest cart records.
	TaskCartStaleSweep = constants.TaskCartStaleSweep
)

// OrderTimeoutCancelPayload is the timeout cancel task payload.
type OrderTimeoutCancelPayload struct {
	OrderID uint `json:"order_id"`
}

// CartStaleSweepPayload is the stale cart sweep task payload.
type CartStaleSweepPayload struct {
	TTLHours int `json:"ttl_hours"`
}

// NewOrderTimeoutCancelTask creates a timeout cancel task.
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// NewCartStaleSweepTask creates a stale cart sweep task.
func NewCartStaleSweepTask(payload CartStaleSweepPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartStaleSweep, body), nil
}
