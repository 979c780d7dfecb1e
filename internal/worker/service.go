package worker

import (
	"context"
	"errors"
	"time"

	"github.com/hornada/hornada/internal/config"
	"github.com/hornada/hornada/internal/logger"
	"github.com/hornada/hornada/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultSweepInterval = 6 * time.Hour

// Service runs the async queue server plus periodic maintenance loops.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer

	sweepInterval time.Duration
}

// NewService creates the worker service.
func NewService(cfg *config.QueueConfig, cartCfg *config.CartConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	sweepInterval := defaultSweepInterval
	if cartCfg != nil && cartCfg.SweepIntervalHours > 0 {
		sweepInterval = time.Duration(cartCfg.SweepIntervalHours) * time.Hour
	}

	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: sweepInterval,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the queue server and the maintenance loops.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	go s.runExpirySweepLoop(ctx)
	go s.runCartSweepLoop(ctx)
	return s.server.Run(s.mux)
}

// Stop shuts the queue server down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runExpirySweepLoop cancels expired pending orders missed by their
// per-order timeout tasks.
func (s *Service) runExpirySweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrderService == nil {
		return
	}
	runOnce := func() {
		canceled, err := s.consumer.OrderService.CancelExpired(time.Now())
		if err != nil {
			logger.Warnw("worker_order_expiry_sweep_failed", "error", err)
			return
		}
		if canceled > 0 {
			logger.Infow("worker_order_expiry_sweep_done", "canceled", canceled)
		}
	}
	runOnce()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runCartSweepLoop enqueues the stale guest cart sweep on an interval.
func (s *Service) runCartSweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.QueueClient == nil {
		return
	}
	runOnce := func() {
		if err := s.consumer.QueueClient.EnqueueCartStaleSweep(queue.CartStaleSweepPayload{}); err != nil {
			logger.Warnw("worker_cart_sweep_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
