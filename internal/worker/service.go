package worker

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/compoundrx/storefront/internal/config"
	"github.com/compoundrx/storefront/internal/logger"
	"github.com/compoundrx/storefront/internal/queue"
)

// The sweep is the backstop for delayed cancel tasks that were never
// enqueued or never delivered.
const expirySweepInterval = time.Minute
const expirySweepBatch = 100

// Service runs the asynq server plus the periodic expiry sweep.
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService builds the worker service.
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name returns the service name.
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start runs the asynq server until the context ends.
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.OrderService != nil {
		go s.runExpirySweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop shuts the asynq server down.
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runExpirySweepLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.OrderService == nil {
		return
	}
	runOnce := func() {
		orders, err := s.consumer.OrderRepo.ListExpiredPending(time.Now(), expirySweepBatch)
		if err != nil {
			logger.Warnw("worker_expiry_sweep_list_failed", "error", err)
			return
		}
		for _, order := range orders {
			if err := s.consumer.OrderService.CancelExpiredOrder(order.ID); err != nil {
				logger.Warnw("worker_expiry_sweep_cancel_failed", "order_no", order.OrderNo, "error", err)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(expirySweepInterval)
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
