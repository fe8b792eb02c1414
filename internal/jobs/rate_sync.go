package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/longbinlai/maybe/internal/core/domain"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
)

// RateSyncScheduler runs the daily provider sync and keeps the latest-rate
// cache warm. It owns a cron runner; Start and Stop bracket the process
// lifetime.
type RateSyncScheduler struct {
	cron        *cron.Cron
	rateService portssvc.ExchangeRateWriterSvc
	rateCache   portssvc.RateCache
	currencies  []string
	logger      *slog.Logger
}

// NewRateSyncScheduler creates a scheduler for the given currency set.
func NewRateSyncScheduler(rateService portssvc.ExchangeRateWriterSvc, rateCache portssvc.RateCache, currencies []string, logger *slog.Logger) *RateSyncScheduler {
	return &RateSyncScheduler{
		cron:        cron.New(),
		rateService: rateService,
		rateCache:   rateCache,
		currencies:  currencies,
		logger:      logger.With(slog.String("component", "rate_sync")),
	}
}

// Start registers the sync job on the given cron schedule and starts the
// runner. It also warms the latest-rate cache from storage before the first
// tick so reads served right after boot do not each pay a database round trip.
func (s *RateSyncScheduler) Start(ctx context.Context, schedule string) error {
	loaded, err := s.rateCache.Preload(ctx)
	if err != nil {
		// A cold cache is slower, not wrong. Entries fill lazily on read.
		s.logger.Warn("Failed to preload rate cache", slog.String("error", err.Error()))
	} else {
		s.logger.Info("Rate cache preloaded", slog.Int("pairs", loaded))
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.runSync(context.Background()) }); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Rate sync scheduler started", slog.String("schedule", schedule))
	return nil
}

// Stop halts the cron runner and waits for a running sync to finish.
func (s *RateSyncScheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Rate sync scheduler stopped")
}

// RunNow triggers a sync outside the schedule.
func (s *RateSyncScheduler) RunNow(ctx context.Context) {
	s.runSync(ctx)
}

func (s *RateSyncScheduler) runSync(ctx context.Context) {
	date := domain.NormalizeDate(time.Now().UTC())
	result, err := s.rateService.SyncRates(ctx, s.currencies, date)
	if err != nil {
		s.logger.Error("Rate sync failed", slog.String("error", err.Error()))
		return
	}

	if result.FailedCount > 0 {
		s.logger.Warn("Rate sync finished with failures",
			slog.Int("synced", result.SyncedCount),
			slog.Int("failed", result.FailedCount),
			slog.Any("failedPairs", result.FailedPairs))
		return
	}
	s.logger.Info("Rate sync finished", slog.Int("synced", result.SyncedCount))
}
