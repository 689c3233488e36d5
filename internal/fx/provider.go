// Package fx owns the exchange-rate lifecycle: fetching rate tables,
// caching them, falling back when the source is down, and converting
// amounts between the supported currencies.
package fx

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// Fetcher pulls a live rate table from the upstream source.
type Fetcher interface {
	FetchLatest(ctx context.Context, base money.Currency) (*fxrate.Snapshot, error)
}

// Provider hands out the current rate table. A fetched table is cached for
// the configured TTL; when a live fetch fails the provider degrades to the
// most recent persisted snapshot, and as a last resort to the hardcoded
// defaults. The provenance tells the caller which level served them.
type Provider struct {
	logger  *slog.Logger
	fetcher Fetcher
	history fxrate.Repository
	ttl     time.Duration

	mu         sync.RWMutex
	cached     *fxrate.Snapshot
	provenance fxrate.Provenance
	cachedAt   time.Time
}

// NewProvider creates a provider with an empty cache. The first Current call
// triggers a fetch.
func NewProvider(logger *slog.Logger, fetcher Fetcher, history fxrate.Repository, ttl time.Duration) *Provider {
	return &Provider{
		logger:  logger,
		fetcher: fetcher,
		history: history,
		ttl:     ttl,
	}
}

// Current returns the rate table to use right now, with its provenance.
// It never returns an error: the fallback chain bottoms out at the
// hardcoded defaults, so a rate table is always available.
func (p *Provider) Current(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance) {
	p.mu.RLock()
	if p.cached != nil && time.Since(p.cachedAt) < p.ttl {
		snap, prov := p.cached, p.provenance
		p.mu.RUnlock()
		return snap, prov
	}
	p.mu.RUnlock()

	return p.Refresh(ctx)
}

// Refresh bypasses the TTL and re-resolves the rate table immediately.
func (p *Provider) Refresh(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance) {
	snap, err := p.fetcher.FetchLatest(ctx, money.Base)
	if err == nil {
		if appendErr := p.history.Append(ctx, snap); appendErr != nil {
			// A full history is a nicety; a fetched table is still usable
			p.logger.Warn("Failed to persist exchange rate snapshot", "error", appendErr)
		}
		return p.store(snap, fxrate.ProvenanceFresh), fxrate.ProvenanceFresh
	}
	p.logger.Warn("Live rate fetch failed, falling back to persisted snapshot", "error", err)

	snap, histErr := p.history.Latest(ctx)
	if histErr == nil {
		return p.store(snap, fxrate.ProvenanceStaleCache), fxrate.ProvenanceStaleCache
	}
	p.logger.Warn("No persisted rate snapshot available, using default rates", "error", histErr)

	return p.store(fxrate.DefaultSnapshot(), fxrate.ProvenanceDefault), fxrate.ProvenanceDefault
}

func (p *Provider) store(snap *fxrate.Snapshot, prov fxrate.Provenance) *fxrate.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cached = snap
	p.provenance = prov
	p.cachedAt = time.Now()
	return snap
}
