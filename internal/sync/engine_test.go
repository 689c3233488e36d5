package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mateus-bonette00/qota-store/internal/config"
	"github.com/mateus-bonette00/qota-store/internal/domain/balance"
	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
	"github.com/mateus-bonette00/qota-store/internal/domain/product"
	"github.com/mateus-bonette00/qota-store/internal/domain/revenue"
	"github.com/mateus-bonette00/qota-store/internal/domain/syncrun"
	"github.com/mateus-bonette00/qota-store/internal/platform/marketplace"
)

type MockAPI struct{ mock.Mock }

func (m *MockAPI) GetAccountBalance(ctx context.Context) (*marketplace.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.Balance), args.Error(1)
}

func (m *MockAPI) GetRecentOrders(ctx context.Context, days int) ([]marketplace.Order, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.Order), args.Error(1)
}

func (m *MockAPI) GetOrderItems(ctx context.Context, orderID string) ([]marketplace.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.OrderItem), args.Error(1)
}

func (m *MockAPI) GetInventorySummaries(ctx context.Context) ([]marketplace.InventorySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.InventorySummary), args.Error(1)
}

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) List(ctx context.Context, f product.Filter) ([]*product.Product, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) FindByASIN(ctx context.Context, asin string) (*product.Product, error) {
	args := m.Called(ctx, asin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) Create(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepo) Update(ctx context.Context, p *product.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepo) UpdateStatus(ctx context.Context, id int64, status product.Status) (*product.Product, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepo) DecrementStock(ctx context.Context, id int64, qty int) (*product.Product, error) {
	args := m.Called(ctx, id, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepo) SetStock(ctx context.Context, id int64, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func (m *MockProductRepo) BackfillASIN(ctx context.Context, id int64, asin string) error {
	return m.Called(ctx, id, asin).Error(0)
}

func (m *MockProductRepo) WithTx(tx pgx.Tx) product.Repository { return m }

type MockRevenueRepo struct{ mock.Mock }

func (m *MockRevenueRepo) List(ctx context.Context, f revenue.Filter) ([]*revenue.Event, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*revenue.Event), args.Error(1)
}

func (m *MockRevenueRepo) GetByID(ctx context.Context, id int64) (*revenue.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*revenue.Event), args.Error(1)
}

func (m *MockRevenueRepo) Create(ctx context.Context, e *revenue.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRevenueRepo) Update(ctx context.Context, e *revenue.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRevenueRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevenueRepo) ExistsByDedupKey(ctx context.Context, key revenue.DedupKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevenueRepo) Totals(ctx context.Context, month string) (revenue.Totals, error) {
	args := m.Called(ctx, month)
	return args.Get(0).(revenue.Totals), args.Error(1)
}

func (m *MockRevenueRepo) MonthlyTotals(ctx context.Context) ([]revenue.MonthTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]revenue.MonthTotal), args.Error(1)
}

func (m *MockRevenueRepo) SalesRanking(ctx context.Context, from, to time.Time, ascending bool, limit int) ([]revenue.RankRow, error) {
	args := m.Called(ctx, from, to, ascending, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]revenue.RankRow), args.Error(1)
}

func (m *MockRevenueRepo) WithTx(tx pgx.Tx) revenue.Repository { return m }

type MockBalanceRepo struct{ mock.Mock }

func (m *MockBalanceRepo) ExistsForDay(ctx context.Context, day time.Time) (bool, error) {
	args := m.Called(ctx, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockBalanceRepo) Create(ctx context.Context, s *balance.Snapshot) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockBalanceRepo) Latest(ctx context.Context) (*balance.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*balance.Snapshot), args.Error(1)
}

func (m *MockBalanceRepo) WithTx(tx pgx.Tx) balance.Repository { return m }

type MockRunsRepo struct{ mock.Mock }

func (m *MockRunsRepo) Append(ctx context.Context, run *syncrun.Run) error {
	return m.Called(ctx, run).Error(0)
}

func (m *MockRunsRepo) ListRecent(ctx context.Context, limit int) ([]*syncrun.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*syncrun.Run), args.Error(1)
}

type MockLease struct{ mock.Mock }

func (m *MockLease) Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, holder, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLease) Renew(ctx context.Context, holder string, ttl time.Duration) error {
	return m.Called(ctx, holder, ttl).Error(0)
}

func (m *MockLease) Release(ctx context.Context, holder string) error {
	return m.Called(ctx, holder).Error(0)
}

type MockRateSource struct{ mock.Mock }

func (m *MockRateSource) Current(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance) {
	args := m.Called(ctx)
	return args.Get(0).(*fxrate.Snapshot), args.Get(1).(fxrate.Provenance)
}

// fakeTxRunner hands the callback a nil transaction; the mocked WithTx
// implementations ignore it anyway.
type fakeTxRunner struct {
	calls int
	fail  error
}

func (f *fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	if f.fail != nil {
		return f.fail
	}
	return fn(nil)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return m.Called(ctx, key, value).Error(0)
}

type engineFixture struct {
	api       *MockAPI
	products  *MockProductRepo
	revenues  *MockRevenueRepo
	balances  *MockBalanceRepo
	runs      *MockRunsRepo
	lease     *MockLease
	rates     *MockRateSource
	tx        *fakeTxRunner
	publisher *MockPublisher
	engine    *Engine
}

func newFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		api:       new(MockAPI),
		products:  new(MockProductRepo),
		revenues:  new(MockRevenueRepo),
		balances:  new(MockBalanceRepo),
		runs:      new(MockRunsRepo),
		lease:     new(MockLease),
		rates:     new(MockRateSource),
		tx:        &fakeTxRunner{},
		publisher: new(MockPublisher),
	}
	cfg := &config.SyncConfig{
		Interval:     4 * time.Hour,
		OrderWindow:  7,
		LeaseTTL:     10 * time.Minute,
		RatesRefresh: time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f.engine = NewEngine(logger, cfg, f.api, f.products, f.revenues, f.balances, f.runs, f.lease, f.rates, f.tx, f.publisher)
	return f
}

func (f *engineFixture) grantLease() {
	f.lease.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.lease.On("Renew", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.lease.On("Release", mock.Anything, mock.Anything).Return(nil)
}

func testSnapshot() *fxrate.Snapshot {
	return &fxrate.Snapshot{
		Base: money.USD,
		Rates: map[money.Currency]decimal.Decimal{
			money.USD: decimal.NewFromInt(1),
			money.BRL: decimal.NewFromInt(5),
			money.EUR: decimal.RequireFromString("0.80"),
		},
		FetchedAt: time.Now(),
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestRunRefusedWhileLeaseHeldElsewhere(t *testing.T) {
	f := newFixture(t)
	f.lease.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	err := f.engine.Run(context.Background(), TriggerManual)
	assert.ErrorIs(t, err, ErrSyncAlreadyRunning)

	// The scheduled path skips silently
	err = f.engine.Run(context.Background(), TriggerScheduled)
	assert.NoError(t, err)
}

func TestOrderIngestionDecrementsStockInOneTransaction(t *testing.T) {
	f := newFixture(t)
	f.grantLease()
	ctx := context.Background()

	purchase := time.Date(2026, 8, 20, 15, 4, 0, 0, time.UTC)
	f.api.On("GetInventorySummaries", mock.Anything).Return([]marketplace.InventorySummary{}, nil)
	f.api.On("GetRecentOrders", mock.Anything, 7).Return([]marketplace.Order{
		{OrderID: "111-222", PurchaseDate: purchase, Status: "Shipped"},
	}, nil)
	f.api.On("GetOrderItems", mock.Anything, "111-222").Return([]marketplace.OrderItem{
		{SKU: "WM-100", ASIN: "B000MOUSE1", Title: "Wireless Mouse", Qty: 3,
			ItemPrice: d("74.97"), Currency: money.USD},
	}, nil)

	matched := &product.Product{
		ID: 7, Name: "Wireless Mouse", SKU: "WM-100", ASIN: "B000MOUSE1",
		Status: product.StatusInStock, StockQty: 5, OriginalQty: 10,
		BaseCost: d("8"), Freight: d("10"), Tax: d("10"), Prep: d("1"),
		MarketplaceFee: d("3"), SellPrice: d("24.99"),
		PurchaseCurrency: money.USD,
	}
	key := revenue.NewDedupKey("B000MOUSE1", "WM-100", purchase)
	f.revenues.On("ExistsByDedupKey", mock.Anything, key).Return(false, nil)
	f.products.On("FindBySKU", mock.Anything, "WM-100").Return(matched, nil)

	var captured *revenue.Event
	f.revenues.On("Create", mock.Anything, mock.AnythingOfType("*revenue.Event")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*revenue.Event) }).
		Return(nil)

	decremented := *matched
	decremented.StockQty = 2
	f.products.On("DecrementStock", mock.Anything, int64(7), 3).Return(&decremented, nil)

	f.rates.On("Current", mock.Anything).Return(testSnapshot(), fxrate.ProvenanceFresh)
	f.api.On("GetAccountBalance", mock.Anything).Return(&marketplace.Balance{Available: d("10"), Currency: money.USD}, nil)
	f.balances.On("ExistsForDay", mock.Anything, mock.Anything).Return(true, nil)
	f.runs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, "orders", mock.Anything).Return(nil)

	err := f.engine.Run(ctx, TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 1, f.tx.calls)
	require.NotNil(t, captured)
	// Cost basis from the matched product: landed unit cost (8 + 20/10 + 1) * 3
	assert.True(t, captured.CostOfGoods.Equal(d("33")), "cogs: %s", captured.CostOfGoods)
	assert.True(t, captured.MarketplaceFee.Equal(d("9")))
	assert.Equal(t, int64(7), *captured.ProductID)
	assert.True(t, captured.Shadow.BRL.Equal(d("374.85")))
	f.products.AssertCalled(t, "DecrementStock", mock.Anything, int64(7), 3)
	f.publisher.AssertExpectations(t)
}

func TestOrderIngestionSkipsDuplicateLines(t *testing.T) {
	f := newFixture(t)
	f.grantLease()

	purchase := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	f.api.On("GetInventorySummaries", mock.Anything).Return([]marketplace.InventorySummary{}, nil)
	f.api.On("GetRecentOrders", mock.Anything, 7).Return([]marketplace.Order{
		{OrderID: "111-222", PurchaseDate: purchase},
	}, nil)
	f.api.On("GetOrderItems", mock.Anything, "111-222").Return([]marketplace.OrderItem{
		{SKU: "WM-100", ASIN: "B000MOUSE1", Qty: 1, ItemPrice: d("24.99"), Currency: money.USD},
	}, nil)

	key := revenue.NewDedupKey("B000MOUSE1", "WM-100", purchase)
	f.revenues.On("ExistsByDedupKey", mock.Anything, key).Return(true, nil)

	f.rates.On("Current", mock.Anything).Return(testSnapshot(), fxrate.ProvenanceFresh)
	f.balances.On("ExistsForDay", mock.Anything, mock.Anything).Return(true, nil)
	f.runs.On("Append", mock.Anything, mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	assert.Equal(t, 0, f.tx.calls)
	f.revenues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderIngestionUnmatchedProductUsesDefaultFee(t *testing.T) {
	f := newFixture(t)
	f.grantLease()

	purchase := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	f.api.On("GetInventorySummaries", mock.Anything).Return([]marketplace.InventorySummary{}, nil)
	f.api.On("GetRecentOrders", mock.Anything, 7).Return([]marketplace.Order{
		{OrderID: "111-333", PurchaseDate: purchase},
	}, nil)
	f.api.On("GetOrderItems", mock.Anything, "111-333").Return([]marketplace.OrderItem{
		{SKU: "UNKNOWN-1", ASIN: "B000GONE01", Title: "Mystery Item", Qty: 2,
			ItemPrice: d("100"), Currency: money.USD},
	}, nil)

	key := revenue.NewDedupKey("B000GONE01", "UNKNOWN-1", purchase)
	f.revenues.On("ExistsByDedupKey", mock.Anything, key).Return(false, nil)
	f.products.On("FindBySKU", mock.Anything, "UNKNOWN-1").Return(nil, nil)
	f.products.On("FindByASIN", mock.Anything, "B000GONE01").Return(nil, nil)

	var captured *revenue.Event
	f.revenues.On("Create", mock.Anything, mock.AnythingOfType("*revenue.Event")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*revenue.Event) }).
		Return(nil)

	f.rates.On("Current", mock.Anything).Return(testSnapshot(), fxrate.ProvenanceFresh)
	f.balances.On("ExistsForDay", mock.Anything, mock.Anything).Return(true, nil)
	f.runs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, "orders", mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Nil(t, captured.ProductID)
	assert.True(t, captured.MarketplaceFee.Equal(d("15")), "fee: %s", captured.MarketplaceFee)
	assert.True(t, captured.CostOfGoods.IsZero())
	// Net profit reflects only what is known: 100 - 15
	assert.True(t, captured.NetProfit.Equal(d("85")))
	f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestInventoryCreatesAndReconciles(t *testing.T) {
	f := newFixture(t)
	f.grantLease()

	existing := &product.Product{
		ID: 3, Name: "Keyboard", SKU: "KB-200", ASIN: "",
		Status: product.StatusInStock, StockQty: 9, OriginalQty: 12,
		PurchaseCurrency: money.USD,
	}

	f.api.On("GetInventorySummaries", mock.Anything).Return([]marketplace.InventorySummary{
		{SKU: "KB-200", ASIN: "B000KEYB01", ProductName: "Keyboard", Quantity: 6},
		{SKU: "NEW-300", ASIN: "B000NEW001", ProductName: "Desk Mat", Quantity: 4},
	}, nil)

	f.products.On("FindBySKU", mock.Anything, "KB-200").Return(existing, nil)
	f.products.On("SetStock", mock.Anything, int64(3), 6).Return(nil)
	f.products.On("BackfillASIN", mock.Anything, int64(3), "B000KEYB01").Return(nil)

	f.products.On("FindBySKU", mock.Anything, "NEW-300").Return(nil, nil)
	f.products.On("FindByASIN", mock.Anything, "B000NEW001").Return(nil, nil)

	var createdProduct *product.Product
	f.products.On("Create", mock.Anything, mock.AnythingOfType("*product.Product")).
		Run(func(args mock.Arguments) { createdProduct = args.Get(1).(*product.Product) }).
		Return(nil)

	f.api.On("GetRecentOrders", mock.Anything, 7).Return([]marketplace.Order{}, nil)
	f.rates.On("Current", mock.Anything).Return(testSnapshot(), fxrate.ProvenanceFresh)
	f.balances.On("ExistsForDay", mock.Anything, mock.Anything).Return(true, nil)
	f.runs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, "inventory", mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	require.NotNil(t, createdProduct)
	assert.Equal(t, "Desk Mat", createdProduct.Name)
	assert.Equal(t, product.StatusInStock, createdProduct.Status)
	assert.Equal(t, 4, createdProduct.StockQty)
	assert.Equal(t, 4, createdProduct.OriginalQty)
	f.products.AssertCalled(t, "BackfillASIN", mock.Anything, int64(3), "B000KEYB01")
}

func TestBalancePhaseSkipsWhenSnapshotExists(t *testing.T) {
	f := newFixture(t)
	f.grantLease()

	f.api.On("GetInventorySummaries", mock.Anything).Return([]marketplace.InventorySummary{}, nil)
	f.api.On("GetRecentOrders", mock.Anything, 7).Return([]marketplace.Order{}, nil)
	f.rates.On("Current", mock.Anything).Return(testSnapshot(), fxrate.ProvenanceFresh)
	f.balances.On("ExistsForDay", mock.Anything, mock.Anything).Return(true, nil)
	f.runs.On("Append", mock.Anything, mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	f.api.AssertNotCalled(t, "GetAccountBalance", mock.Anything)
	f.balances.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBalancePhaseWritesFirstSnapshotOfTheDay(t *testing.T) {
	f := newFixture(t)
	f.grantLease()

	f.api.On("GetInventorySummaries", mock.Anything).Return([]marketplace.InventorySummary{}, nil)
	f.api.On("GetRecentOrders", mock.Anything, 7).Return([]marketplace.Order{}, nil)
	f.rates.On("Current", mock.Anything).Return(testSnapshot(), fxrate.ProvenanceFresh)
	f.balances.On("ExistsForDay", mock.Anything, mock.Anything).Return(false, nil)
	f.api.On("GetAccountBalance", mock.Anything).Return(&marketplace.Balance{
		Available: d("541.20"), Currency: money.USD,
	}, nil)

	var captured *balance.Snapshot
	f.balances.On("Create", mock.Anything, mock.AnythingOfType("*balance.Snapshot")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*balance.Snapshot) }).
		Return(nil)

	f.runs.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, "balance", mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), TriggerManual)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.True(t, captured.Available.Equal(d("541.20")))
	assert.Equal(t, 0, captured.Date.Hour())
}

func TestAllPhasesAttemptedDespiteFailures(t *testing.T) {
	f := newFixture(t)
	f.grantLease()

	upstream := errors.New("inventory feed down")
	f.api.On("GetInventorySummaries", mock.Anything).Return(nil, upstream)
	f.api.On("GetRecentOrders", mock.Anything, 7).Return([]marketplace.Order{}, nil)
	f.rates.On("Current", mock.Anything).Return(testSnapshot(), fxrate.ProvenanceFresh)
	f.balances.On("ExistsForDay", mock.Anything, mock.Anything).Return(true, nil)

	var statuses []syncrun.Status
	f.runs.On("Append", mock.Anything, mock.AnythingOfType("*syncrun.Run")).
		Run(func(args mock.Arguments) { statuses = append(statuses, args.Get(1).(*syncrun.Run).Status) }).
		Return(nil)

	// Manual path surfaces the failure; the other two phases still ran
	err := f.engine.Run(context.Background(), TriggerManual)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)
	require.Len(t, statuses, 3)
	assert.Equal(t, syncrun.StatusError, statuses[0])
	assert.Equal(t, syncrun.StatusSuccess, statuses[1])
	assert.Equal(t, syncrun.StatusSuccess, statuses[2])
}

func TestScheduledRunSwallowsPhaseErrors(t *testing.T) {
	f := newFixture(t)
	f.grantLease()

	f.api.On("GetInventorySummaries", mock.Anything).Return(nil, errors.New("feed down"))
	f.api.On("GetRecentOrders", mock.Anything, 7).Return(nil, errors.New("feed down"))
	f.rates.On("Current", mock.Anything).Return(testSnapshot(), fxrate.ProvenanceFresh)
	f.balances.On("ExistsForDay", mock.Anything, mock.Anything).Return(false, nil)
	f.api.On("GetAccountBalance", mock.Anything).Return(nil, errors.New("feed down"))
	f.runs.On("Append", mock.Anything, mock.Anything).Return(nil)

	err := f.engine.Run(context.Background(), TriggerScheduled)
	assert.NoError(t, err)
}

func TestCancellationAbortsRemainingPhases(t *testing.T) {
	f := newFixture(t)
	f.grantLease()

	ctx, cancel := context.WithCancel(context.Background())

	f.api.On("GetInventorySummaries", mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return([]marketplace.InventorySummary{}, nil)
	f.runs.On("Append", mock.Anything, mock.Anything).Return(nil)

	err := f.engine.Run(ctx, TriggerManual)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	f.api.AssertNotCalled(t, "GetRecentOrders", mock.Anything, mock.Anything)
	f.api.AssertNotCalled(t, "GetAccountBalance", mock.Anything)
}
