package metrics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/mateus-bonette00/qota-store/internal/domain/balance"
	"github.com/mateus-bonette00/qota-store/internal/domain/expense"
	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/investment"
	"github.com/mateus-bonette00/qota-store/internal/domain/product"
	"github.com/mateus-bonette00/qota-store/internal/domain/revenue"
)

type MockExpenseRepo struct{ mock.Mock }

func (m *MockExpenseRepo) List(ctx context.Context, f expense.Filter) ([]*expense.Expense, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepo) GetByID(ctx context.Context, id int64) (*expense.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockExpenseRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockExpenseRepo) Totals(ctx context.Context, month string) (expense.Totals, error) {
	args := m.Called(ctx, month)
	return args.Get(0).(expense.Totals), args.Error(1)
}

func (m *MockExpenseRepo) MonthlyTotals(ctx context.Context) ([]expense.MonthTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]expense.MonthTotal), args.Error(1)
}

func (m *MockExpenseRepo) WithTx(tx pgx.Tx) expense.Repository { return m }

type MockInvestmentRepo struct{ mock.Mock }

func (m *MockInvestmentRepo) List(ctx context.Context, f investment.Filter) ([]*investment.Investment, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*investment.Investment), args.Error(1)
}

func (m *MockInvestmentRepo) GetByID(ctx context.Context, id int64) (*investment.Investment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Investment), args.Error(1)
}

func (m *MockInvestmentRepo) Create(ctx context.Context, inv *investment.Investment) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvestmentRepo) Update(ctx context.Context, inv *investment.Investment) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvestmentRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvestmentRepo) Totals(ctx context.Context, month string) (investment.Totals, error) {
	args := m.Called(ctx, month)
	return args.Get(0).(investment.Totals), args.Error(1)
}

func (m *MockInvestmentRepo) MonthlyTotals(ctx context.Context) ([]investment.MonthTotal, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]investment.MonthTotal), args.Error(1)
}

func (m *MockInvestmentRepo) WithTx(tx pgx.Tx) investment.Repository { return m }

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

type MockRateSource struct{ mock.Mock }

func (m *MockRateSource) Current(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance) {
	args := m.Called(ctx)
	return args.Get(0).(*fxrate.Snapshot), args.Get(1).(fxrate.Provenance)
}

// Compile-time interface checks
var (
	_ expense.Repository    = (*MockExpenseRepo)(nil)
	_ investment.Repository = (*MockInvestmentRepo)(nil)
	_ product.Repository    = (*MockProductRepo)(nil)
	_ revenue.Repository    = (*MockRevenueRepo)(nil)
	_ balance.Repository    = (*MockBalanceRepo)(nil)
	_ RateSource            = (*MockRateSource)(nil)
)
