package fx

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchLatest(ctx context.Context, base money.Currency) (*fxrate.Snapshot, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fxrate.Snapshot), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Append(ctx context.Context, snap *fxrate.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockHistory) Latest(ctx context.Context) (*fxrate.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fxrate.Snapshot), args.Error(1)
}

func newProviderLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func liveSnapshot() *fxrate.Snapshot {
	return &fxrate.Snapshot{
		Base: money.USD,
		Rates: map[money.Currency]decimal.Decimal{
			money.USD: decimal.NewFromInt(1),
			money.BRL: decimal.RequireFromString("5.43"),
			money.EUR: decimal.RequireFromString("0.91"),
		},
		FetchedAt: time.Now(),
	}
}

func TestProviderServesFreshFetch(t *testing.T) {
	ctx := context.Background()
	fetcher := new(MockFetcher)
	history := new(MockHistory)

	snap := liveSnapshot()
	fetcher.On("FetchLatest", ctx, money.Base).Return(snap, nil).Once()
	history.On("Append", ctx, snap).Return(nil).Once()

	provider := NewProvider(newProviderLogger(), fetcher, history, time.Hour)

	got, prov := provider.Current(ctx)
	assert.Equal(t, fxrate.ProvenanceFresh, prov)
	assert.True(t, got.Rate(money.BRL).Equal(decimal.RequireFromString("5.43")))

	// Second call inside the TTL hits the cache, no second fetch
	got2, prov2 := provider.Current(ctx)
	assert.Equal(t, fxrate.ProvenanceFresh, prov2)
	assert.Same(t, got, got2)

	fetcher.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestProviderFallsBackToPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	fetcher := new(MockFetcher)
	history := new(MockHistory)

	persisted := liveSnapshot()
	fetcher.On("FetchLatest", ctx, money.Base).Return(nil, errors.New("rate source down")).Once()
	history.On("Latest", ctx).Return(persisted, nil).Once()

	provider := NewProvider(newProviderLogger(), fetcher, history, time.Hour)

	got, prov := provider.Current(ctx)
	assert.Equal(t, fxrate.ProvenanceStaleCache, prov)
	assert.Same(t, persisted, got)

	fetcher.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestProviderBottomsOutAtDefaults(t *testing.T) {
	ctx := context.Background()
	fetcher := new(MockFetcher)
	history := new(MockHistory)

	fetcher.On("FetchLatest", ctx, money.Base).Return(nil, errors.New("rate source down")).Once()
	history.On("Latest", ctx).Return(nil, fxrate.ErrNoSnapshots).Once()

	provider := NewProvider(newProviderLogger(), fetcher, history, time.Hour)

	got, prov := provider.Current(ctx)
	require.NotNil(t, got)
	assert.Equal(t, fxrate.ProvenanceDefault, prov)
	assert.True(t, got.Rate(money.BRL).Equal(decimal.RequireFromString("5.20")))
	assert.True(t, got.Rate(money.EUR).Equal(decimal.RequireFromString("0.92")))

	fetcher.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestProviderSurvivesHistoryAppendFailure(t *testing.T) {
	ctx := context.Background()
	fetcher := new(MockFetcher)
	history := new(MockHistory)

	snap := liveSnapshot()
	fetcher.On("FetchLatest", ctx, money.Base).Return(snap, nil).Once()
	history.On("Append", ctx, snap).Return(errors.New("insert failed")).Once()

	provider := NewProvider(newProviderLogger(), fetcher, history, time.Hour)

	got, prov := provider.Current(ctx)
	assert.Equal(t, fxrate.ProvenanceFresh, prov)
	assert.Same(t, snap, got)

	fetcher.AssertExpectations(t)
	history.AssertExpectations(t)
}
