// Package metrics computes the derived financial views: monthly summaries,
// cumulative totals, profit, the monthly P&L series, product rankings and the
// combined dashboard. Nothing here is cached; every call recomputes from the
// ledger tables so a figure can never go stale against its sources.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/balance"
	"github.com/mateus-bonette00/qota-store/internal/domain/expense"
	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/investment"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
	"github.com/mateus-bonette00/qota-store/internal/domain/product"
	"github.com/mateus-bonette00/qota-store/internal/domain/revenue"
	"github.com/mateus-bonette00/qota-store/internal/fx"
)

// Common validation errors
var (
	ErrInvalidMonth = errors.New("month must be formatted as YYYY-MM")
	ErrInvalidScope = errors.New("scope must be 'month' or 'year'")
	ErrInvalidOrder = errors.New("order must be 'asc' or 'desc'")
)

// RateSource yields the rate table used to fold product purchase outflow
// into the reporting currencies.
type RateSource interface {
	Current(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance)
}

// Summary is one aggregation window: inflow and outflow in both reporting
// currencies. The outflow side folds in the derived product purchase cost,
// which exists only as a computation over product rows, never as a ledger
// entry.
type Summary struct {
	RevenueUSD decimal.Decimal `json:"revenue_usd"`
	RevenueBRL decimal.Decimal `json:"revenue_brl"`
	ExpenseUSD decimal.Decimal `json:"expense_usd"`
	ExpenseBRL decimal.Decimal `json:"expense_brl"`
	Warnings   []string        `json:"warnings,omitempty"`
}

// ProfitReport carries the two profit figures. Only sales traceable to a
// known product cost basis contribute; gross revenue still counts every sale.
type ProfitReport struct {
	PeriodProfit decimal.Decimal `json:"period_profit"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// MonthRow is one month of the P&L series.
type MonthRow struct {
	Month        string          `json:"month"`
	Revenue      decimal.Decimal `json:"revenue"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Result       decimal.Decimal `json:"result"`
}

// Dashboard bundles the four views the landing page renders.
type Dashboard struct {
	Summary  *Summary          `json:"summary"`
	Totals   *Summary          `json:"totals"`
	Profit   *ProfitReport     `json:"profit"`
	Balance  *balance.Snapshot `json:"balance,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Service computes the aggregated views over the ledger repositories.
type Service struct {
	logger      *slog.Logger
	expenses    expense.Repository
	investments investment.Repository
	products    product.Repository
	revenues    revenue.Repository
	balances    balance.Repository
	rates       RateSource
	pool        *ants.Pool
}

// NewService wires the aggregator. The pool bounds dashboard fan-out.
func NewService(
	logger *slog.Logger,
	expenses expense.Repository,
	investments investment.Repository,
	products product.Repository,
	revenues revenue.Repository,
	balances balance.Repository,
	rates RateSource,
	pool *ants.Pool,
) *Service {
	return &Service{
		logger:      logger,
		expenses:    expenses,
		investments: investments,
		products:    products,
		revenues:    revenues,
		balances:    balances,
		rates:       rates,
		pool:        pool,
	}
}

// ValidateMonth checks the YYYY-MM filter format; empty means no filter.
func ValidateMonth(month string) error {
	if month == "" {
		return nil
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return nil
}

// MonthlySummary aggregates inflow and outflow for one calendar month, or
// all time when month is empty.
func (s *Service) MonthlySummary(ctx context.Context, month string) (*Summary, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}

	summary := &Summary{}

	revTotals, err := s.revenues.Totals(ctx, month)
	if err != nil {
		return nil, err
	}
	summary.RevenueUSD = revTotals.USD
	summary.RevenueBRL = revTotals.BRL

	expTotals, err := s.expenses.Totals(ctx, month)
	if err != nil {
		return nil, err
	}
	invTotals, err := s.investments.Totals(ctx, month)
	if err != nil {
		return nil, err
	}
	summary.ExpenseUSD = expTotals.USD.Add(invTotals.USD)
	summary.ExpenseBRL = expTotals.BRL.Add(invTotals.BRL)

	purchaseUSD, purchaseBRL, warnings, err := s.purchaseOutflow(ctx, month)
	if err != nil {
		return nil, err
	}
	summary.ExpenseUSD = summary.ExpenseUSD.Add(purchaseUSD)
	summary.ExpenseBRL = summary.ExpenseBRL.Add(purchaseBRL)
	summary.Warnings = warnings

	return summary, nil
}

// CumulativeTotals is the all-time summary.
func (s *Service) CumulativeTotals(ctx context.Context) (*Summary, error) {
	return s.MonthlySummary(ctx, "")
}

// purchaseOutflow reconstructs the implied acquisition spend from product
// rows whose accounting month matches the filter. Costs in a non-reporting
// currency are folded through the current rate table.
func (s *Service) purchaseOutflow(ctx context.Context, month string) (usd, brl decimal.Decimal, warnings []string, err error) {
	products, err := s.products.List(ctx, product.Filter{})
	if err != nil {
		return decimal.Zero, decimal.Zero, nil, err
	}

	snap, prov := s.rates.Current(ctx)
	if prov != fxrate.ProvenanceFresh {
		warnings = append(warnings, fmt.Sprintf("purchase outflow converted with %s exchange rates", prov))
	}

	for _, p := range products {
		if month != "" && p.AccountingMonth() != month {
			continue
		}
		outflow := p.PurchaseOutflow()
		usd = usd.Add(fx.Convert(outflow, p.PurchaseCurrency, money.USD, snap))
		brl = brl.Add(fx.Convert(outflow, p.PurchaseCurrency, money.BRL, snap))
	}

	return usd, brl, warnings, nil
}

// Profit sums unit gross profit times quantity across revenue events,
// resolving each event's product for the cost basis. Events without a
// resolvable product are excluded from profit, never from revenue; the
// exclusion count surfaces in the warning list.
func (s *Service) Profit(ctx context.Context, month string) (*ProfitReport, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}

	events, err := s.revenues.List(ctx, revenue.Filter{})
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, product.Filter{})
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	report := &ProfitReport{}
	excluded := 0
	for _, e := range events {
		if e.ProductID == nil {
			excluded++
			continue
		}
		p, ok := byID[*e.ProductID]
		if !ok {
			excluded++
			continue
		}

		contribution := p.UnitGrossProfit().Mul(decimal.NewFromInt(int64(e.Qty)))
		report.TotalProfit = report.TotalProfit.Add(contribution)
		if month == "" || e.Date.Format("2006-01") == month {
			report.PeriodProfit = report.PeriodProfit.Add(contribution)
		}
	}

	if excluded > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d revenue events excluded from profit (no resolvable product)", excluded))
	}

	return report, nil
}

// MonthlySeries builds the P&L series: one row per month that appears in any
// source, ascending. Revenue comes from revenue events; total expense is
// expenses plus investments plus the derived purchase outflow.
func (s *Service) MonthlySeries(ctx context.Context) ([]MonthRow, error) {
	revMonths, err := s.revenues.MonthlyTotals(ctx)
	if err != nil {
		return nil, err
	}
	expMonths, err := s.expenses.MonthlyTotals(ctx)
	if err != nil {
		return nil, err
	}
	invMonths, err := s.investments.MonthlyTotals(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.List(ctx, product.Filter{})
	if err != nil {
		return nil, err
	}

	snap, _ := s.rates.Current(ctx)

	type bucket struct {
		revenue decimal.Decimal
		expense decimal.Decimal
	}
	buckets := make(map[string]*bucket)
	get := func(month string) *bucket {
		b, ok := buckets[month]
		if !ok {
			b = &bucket{}
			buckets[month] = b
		}
		return b
	}

	for _, mt := range revMonths {
		get(mt.Month).revenue = get(mt.Month).revenue.Add(mt.USD)
	}
	for _, mt := range expMonths {
		get(mt.Month).expense = get(mt.Month).expense.Add(mt.USD)
	}
	for _, mt := range invMonths {
		get(mt.Month).expense = get(mt.Month).expense.Add(mt.USD)
	}
	for _, p := range products {
		outflow := fx.Convert(p.PurchaseOutflow(), p.PurchaseCurrency, money.USD, snap)
		month := p.AccountingMonth()
		get(month).expense = get(month).expense.Add(outflow)
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)

	series := make([]MonthRow, 0, len(months))
	for _, m := range months {
		b := buckets[m]
		series = append(series, MonthRow{
			Month:        m,
			Revenue:      b.revenue,
			TotalExpense: b.expense,
			Result:       b.revenue.Sub(b.expense),
		})
	}

	return series, nil
}

// ProductRanking groups sold quantities by (sku, name) within the requested
// window and returns the top rows. Tie order between equal quantities is
// whatever the grouped scan yields.
func (s *Service) ProductRanking(ctx context.Context, scope, order string, limit, year int, month time.Month) ([]revenue.RankRow, error) {
	var ascending bool
	switch order {
	case "asc":
		ascending = true
	case "desc":
		ascending = false
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}

	var from, to time.Time
	switch scope {
	case "month":
		from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
	case "year":
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(1, 0, 0)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}

	if limit <= 0 {
		limit = 10
	}

	return s.revenues.SalesRanking(ctx, from, to, ascending, limit)
}

// Dashboard computes the landing-page bundle, fanning the four independent
// reads out on the worker pool. The bundle is always complete: a failed view
// is served as its zero value with a warning naming it, and only a malformed
// month filter is an error.
func (s *Service) Dashboard(ctx context.Context, month string) (*Dashboard, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}

	var (
		wg             sync.WaitGroup
		mu             sync.Mutex
		dash           Dashboard
		degraded       []string
		balanceFetched bool
	)

	// A failing view never sinks the bundle: the view degrades to its zero
	// value and the warning names it.
	run := func(view string, task func() error) {
		wg.Add(1)
		fail := func(err error) {
			s.logger.Error("Failed to compute dashboard view", "view", view, "error", err)
			mu.Lock()
			degraded = append(degraded, view+" unavailable, degraded to zero values")
			mu.Unlock()
		}
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if err := task(); err != nil {
				fail(err)
			}
		})
		if submitErr != nil {
			// Pool saturated or closed; run inline rather than dropping the view
			if err := task(); err != nil {
				fail(err)
			}
			wg.Done()
		}
	}

	run("summary", func() error {
		summary, err := s.MonthlySummary(ctx, month)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.Summary = summary
		mu.Unlock()
		return nil
	})
	run("totals", func() error {
		totals, err := s.CumulativeTotals(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.Totals = totals
		mu.Unlock()
		return nil
	})
	run("profit", func() error {
		profit, err := s.Profit(ctx, month)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.Profit = profit
		mu.Unlock()
		return nil
	})
	run("balance", func() error {
		latest, err := s.balances.Latest(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.Balance = latest
		balanceFetched = true
		mu.Unlock()
		return nil
	})

	wg.Wait()

	// Failed views come back as zero values, never as a missing bundle
	if dash.Summary == nil {
		dash.Summary = &Summary{}
	}
	if dash.Totals == nil {
		dash.Totals = &Summary{}
	}
	if dash.Profit == nil {
		dash.Profit = &ProfitReport{}
	}

	dash.Warnings = append(dash.Warnings, degraded...)
	dash.Warnings = append(dash.Warnings, dash.Summary.Warnings...)
	dash.Warnings = append(dash.Warnings, dash.Profit.Warnings...)
	if balanceFetched && dash.Balance == nil {
		dash.Warnings = append(dash.Warnings, "no balance snapshot recorded yet")
	}

	return &dash, nil
}
