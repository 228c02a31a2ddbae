// Package jobs runs the background maintenance schedule: sweeping expired
// payment links and closing out lapsed subscriptions.
package jobs

import (
	"context"
	"time"

	"matchpay/internal/logger"
	"matchpay/internal/metrics"

	"github.com/robfig/cron/v3"
)

type LinkSweeper interface {
	CancelStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type SubscriptionExpirer interface {
	ExpireSubscriptions(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron       *cron.Cron
	sweeper    LinkSweeper
	expirer    SubscriptionExpirer
	pendingTTL time.Duration
}

func NewScheduler(sweeper LinkSweeper, expirer SubscriptionExpirer, pendingTTL time.Duration) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		sweeper:    sweeper,
		expirer:    expirer,
		pendingTTL: pendingTTL,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.cron.AddFunc("*/5 * * * *", func() { s.SweepStaleLinks(ctx) })
	s.cron.AddFunc("0 0 * * *", func() { s.ExpireSubscriptions(ctx) })

	s.cron.Start()
	logger.Info("job scheduler started")
}

// SweepStaleLinks cancels PENDING ledger entries whose payment link has
// expired at the gateway, so they can no longer be settled.
func (s *Scheduler) SweepStaleLinks(ctx context.Context) {
	cutoff := time.Now().Add(-s.pendingTTL)
	n, err := s.sweeper.CancelStale(ctx, cutoff)
	if err != nil {
		logger.Errorf("stale link sweep failed: %v", err)
		return
	}
	if n > 0 {
		logger.Infof("cancelled %d stale payment links", n)
		metrics.RecordStaleLinksCancelled(n)
	}
}

func (s *Scheduler) ExpireSubscriptions(ctx context.Context) {
	n, err := s.expirer.ExpireSubscriptions(ctx)
	if err != nil {
		logger.Errorf("subscription expiry failed: %v", err)
		return
	}
	if n > 0 {
		logger.Infof("expired %d subscriptions", n)
	}
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("job scheduler stopped")
}
