package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ReleaseScheduler drives the periodic held-funds sweep. It holds no state
// of its own: overlap with a manual trigger or a second instance is safe
// because Release re-checks every precondition under the order's row lock.
type ReleaseScheduler struct {
	settlement SettlementService
	interval   time.Duration
	log        *zap.Logger
}

func NewReleaseScheduler(settlement SettlementService, interval time.Duration, log *zap.Logger) *ReleaseScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &ReleaseScheduler{
		settlement: settlement,
		interval:   interval,
		log:        log,
	}
}

// Run sweeps once per interval until the context is canceled.
func (s *ReleaseScheduler) Run(ctx context.Context) {
	s.log.Info("release scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("release scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one release pass. Errors are logged, never fatal.
func (s *ReleaseScheduler) Sweep(ctx context.Context) {
	summary, err := s.settlement.ReleaseAllDue(ctx)
	if err != nil {
		s.log.Error("release sweep failed", zap.Error(err))
		return
	}

	if summary.TotalOrders > 0 {
		s.log.Info("release sweep finished",
			zap.Int("orders_released", summary.OrdersReleased),
			zap.Int("orders_failed", summary.OrdersFailed),
			zap.Int("orders_due", summary.TotalOrders),
		)
	}
}
