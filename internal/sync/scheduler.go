package sync

import (
	"context"
	"log/slog"
	"time"

	"github.com/mateus-bonette00/qota-store/internal/config"
	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
)

// RateRefresher re-resolves the exchange rate table on demand.
type RateRefresher interface {
	Refresh(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance)
}

// Scheduler drives the engine on its interval and keeps the rate cache warm
// on a faster tick.
type Scheduler struct {
	logger       *slog.Logger
	engine       *Engine
	rates        RateRefresher
	syncInterval time.Duration
	ratesRefresh time.Duration
}

// NewScheduler wires the periodic driver.
func NewScheduler(logger *slog.Logger, cfg *config.SyncConfig, engine *Engine, rates RateRefresher) *Scheduler {
	return &Scheduler{
		logger:       logger,
		engine:       engine,
		rates:        rates,
		syncInterval: cfg.Interval,
		ratesRefresh: cfg.RatesRefresh,
	}
}

// Start runs until the context is canceled. The first sync fires
// immediately so a fresh deployment does not wait a full interval.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting sync scheduler",
		"sync_interval", s.syncInterval.String(),
		"rates_refresh", s.ratesRefresh.String(),
	)

	syncTicker := time.NewTicker(s.syncInterval)
	defer syncTicker.Stop()
	ratesTicker := time.NewTicker(s.ratesRefresh)
	defer ratesTicker.Stop()

	s.runScheduled(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sync scheduler stopping due to context cancellation.")
			return
		case <-syncTicker.C:
			s.runScheduled(ctx)
		case <-ratesTicker.C:
			_, prov := s.rates.Refresh(ctx)
			s.logger.Debug("Refreshed exchange rates", "provenance", string(prov))
		}
	}
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	if err := s.engine.Run(ctx, TriggerScheduled); err != nil {
		s.logger.Error("Scheduled sync failed", "error", err)
	}
}
