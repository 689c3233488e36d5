// Package sync pulls inventory, orders and account balance from the
// marketplace and merges them into the ledger. Runs are mutually exclusive
// across process instances via a store-held lease, and idempotent: replaying
// the same feed creates no duplicate ledger rows and applies no double stock
// decrement.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/config"
	"github.com/mateus-bonette00/qota-store/internal/domain/balance"
	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
	"github.com/mateus-bonette00/qota-store/internal/domain/product"
	"github.com/mateus-bonette00/qota-store/internal/domain/revenue"
	"github.com/mateus-bonette00/qota-store/internal/domain/syncrun"
	"github.com/mateus-bonette00/qota-store/internal/fx"
	"github.com/mateus-bonette00/qota-store/internal/platform/marketplace"
)

// ErrSyncAlreadyRunning is returned to a manual trigger while a run is in
// flight, here or on another instance.
var ErrSyncAlreadyRunning = errors.New("marketplace sync already running")

// Trigger says who asked for the run; it decides the error policy.
type Trigger string

const (
	// TriggerScheduled runs swallow phase errors after recording them.
	TriggerScheduled Trigger = "scheduled"
	// TriggerManual runs surface the joined phase errors to the caller.
	TriggerManual Trigger = "manual"
)

// defaultFeePercent is applied when a sold item cannot be matched to a
// product carrying its own fee.
var defaultFeePercent = decimal.RequireFromString("0.15")

// MarketplaceAPI is the slice of the marketplace client the engine needs.
type MarketplaceAPI interface {
	GetAccountBalance(ctx context.Context) (*marketplace.Balance, error)
	GetRecentOrders(ctx context.Context, days int) ([]marketplace.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]marketplace.OrderItem, error)
	GetInventorySummaries(ctx context.Context) ([]marketplace.InventorySummary, error)
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// RateSource yields the rate table for shadow computation at write time.
type RateSource interface {
	Current(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance)
}

// Publisher announces committed ledger changes.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Engine orchestrates the three sync phases.
type Engine struct {
	logger    *slog.Logger
	cfg       *config.SyncConfig
	api       MarketplaceAPI
	products  product.Repository
	revenues  revenue.Repository
	balances  balance.Repository
	runs      syncrun.Repository
	lease     syncrun.Lease
	rates     RateSource
	tx        TxRunner
	publisher Publisher

	holder  string
	running atomic.Bool
}

// NewEngine wires a sync engine. The holder identity ties lease rows to this
// process instance.
func NewEngine(
	logger *slog.Logger,
	cfg *config.SyncConfig,
	api MarketplaceAPI,
	products product.Repository,
	revenues revenue.Repository,
	balances balance.Repository,
	runs syncrun.Repository,
	lease syncrun.Lease,
	rates RateSource,
	tx TxRunner,
	publisher Publisher,
) *Engine {
	hostname, _ := os.Hostname()
	return &Engine{
		logger:    logger,
		cfg:       cfg,
		api:       api,
		products:  products,
		revenues:  revenues,
		balances:  balances,
		runs:      runs,
		lease:     lease,
		rates:     rates,
		tx:        tx,
		publisher: publisher,
		holder:    fmt.Sprintf("%s-%s", hostname, uuid.NewString()),
	}
}

// Running reports whether a run is in flight in this process.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run executes all three phases in order: inventory, orders, balance.
// Every phase is attempted even when an earlier one failed; cancellation is
// the only thing that aborts the remainder. Each phase appends one audit row
// whatever its outcome.
func (e *Engine) Run(ctx context.Context, trigger Trigger) error {
	if !e.running.CompareAndSwap(false, true) {
		return e.refuse(trigger, "run already in flight in this process")
	}
	defer e.running.Store(false)

	acquired, err := e.lease.Acquire(ctx, e.holder, e.cfg.LeaseTTL)
	if err != nil {
		return fmt.Errorf("failed to arbitrate sync lease: %w", err)
	}
	if !acquired {
		return e.refuse(trigger, "lease held by another instance")
	}
	defer func() {
		if err := e.lease.Release(context.WithoutCancel(ctx), e.holder); err != nil {
			e.logger.Warn("Failed to release sync lease", "holder", e.holder, "error", err)
		}
	}()

	e.logger.Info("Marketplace sync starting", "trigger", string(trigger))

	type phase struct {
		kind syncrun.Kind
		fn   func(context.Context) (int, int, error)
	}
	phases := []phase{
		{syncrun.KindInventory, e.syncInventory},
		{syncrun.KindOrders, e.syncOrders},
		{syncrun.KindBalance, e.syncBalance},
	}

	var phaseErrs []error
	for _, p := range phases {
		if ctxErr := ctx.Err(); ctxErr != nil {
			e.logger.Warn("Marketplace sync canceled, skipping remaining phases", "phase", string(p.kind))
			phaseErrs = append(phaseErrs, ctxErr)
			break
		}

		created, updated, phaseErr := p.fn(ctx)
		e.record(ctx, p.kind, created, updated, phaseErr)

		if phaseErr != nil {
			e.logger.Error("Sync phase failed", "phase", string(p.kind), "error", phaseErr)
			phaseErrs = append(phaseErrs, fmt.Errorf("%s: %w", p.kind, phaseErr))
		} else {
			e.logger.Info("Sync phase done", "phase", string(p.kind), "created", created, "updated", updated)
		}

		if err := e.lease.Renew(ctx, e.holder, e.cfg.LeaseTTL); err != nil {
			e.logger.Warn("Failed to renew sync lease", "holder", e.holder, "error", err)
		}
	}

	if trigger == TriggerManual {
		return errors.Join(phaseErrs...)
	}
	return nil
}

func (e *Engine) refuse(trigger Trigger, reason string) error {
	if trigger == TriggerManual {
		return ErrSyncAlreadyRunning
	}
	e.logger.Info("Skipping scheduled sync", "reason", reason)
	return nil
}

// record appends the phase's audit row and announces the change when
// anything was written.
func (e *Engine) record(ctx context.Context, kind syncrun.Kind, created, updated int, phaseErr error) {
	status := syncrun.StatusSuccess
	detail := ""
	switch {
	case phaseErr != nil && created+updated > 0:
		status = syncrun.StatusPartial
		detail = phaseErr.Error()
	case phaseErr != nil:
		status = syncrun.StatusError
		detail = phaseErr.Error()
	}

	run := syncrun.NewRun(kind, created, updated, status, detail)
	if err := e.runs.Append(ctx, run); err != nil {
		e.logger.Error("Failed to append sync audit row", "kind", string(kind), "error", err)
	}

	if created+updated > 0 && e.publisher != nil {
		if err := e.publisher.Publish(ctx, string(kind), run); err != nil {
			e.logger.Warn("Failed to publish ledger change event", "kind", string(kind), "error", err)
		}
	}
}

// syncInventory reconciles the marketplace inventory feed against the
// product table: matched rows get their stock level and missing ASIN
// corrected, unmatched summaries become new in-stock products.
func (e *Engine) syncInventory(ctx context.Context) (created, updated int, err error) {
	summaries, err := e.api.GetInventorySummaries(ctx)
	if err != nil {
		return 0, 0, err
	}

	var itemErrs []error
	for _, s := range summaries {
		if s.SKU == "" && s.ASIN == "" {
			continue
		}

		p, findErr := e.matchProduct(ctx, s.SKU, s.ASIN)
		if findErr != nil {
			itemErrs = append(itemErrs, findErr)
			continue
		}

		if p != nil {
			if setErr := e.products.SetStock(ctx, p.ID, s.Quantity); setErr != nil {
				itemErrs = append(itemErrs, setErr)
				continue
			}
			if p.ASIN == "" && s.ASIN != "" {
				if bfErr := e.products.BackfillASIN(ctx, p.ID, s.ASIN); bfErr != nil {
					itemErrs = append(itemErrs, bfErr)
					continue
				}
			}
			updated++
			continue
		}

		name := s.ProductName
		if name == "" {
			name = s.SKU
		}
		now := time.Now().UTC()
		newProduct := &product.Product{
			Name:             name,
			SKU:              s.SKU,
			ASIN:             s.ASIN,
			Status:           product.StatusInStock,
			StockQty:         s.Quantity,
			OriginalQty:      s.Quantity,
			PurchaseCurrency: money.USD,
			AddedDate:        now,
			CreatedAt:        now,
		}
		if createErr := e.products.Create(ctx, newProduct); createErr != nil {
			itemErrs = append(itemErrs, createErr)
			continue
		}
		created++
	}

	return created, updated, errors.Join(itemErrs...)
}

// matchProduct resolves a feed line to a product row, SKU first, ASIN second.
func (e *Engine) matchProduct(ctx context.Context, sku, asin string) (*product.Product, error) {
	if sku != "" {
		p, err := e.products.FindBySKU(ctx, sku)
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	if asin != "" {
		return e.products.FindByASIN(ctx, asin)
	}
	return nil, nil
}

// syncOrders ingests order lines from the trailing window, strictly
// sequentially. Each new line becomes one revenue event, and its stock
// decrement commits in the same transaction. Lines whose dedup key already
// has an event are skipped outright.
func (e *Engine) syncOrders(ctx context.Context) (created, updated int, err error) {
	orders, err := e.api.GetRecentOrders(ctx, e.cfg.OrderWindow)
	if err != nil {
		return 0, 0, err
	}

	snap, prov := e.rates.Current(ctx)
	if prov != fxrate.ProvenanceFresh {
		e.logger.Warn("Order ingestion using degraded exchange rates", "provenance", string(prov))
	}

	var itemErrs []error
	for _, order := range orders {
		items, itemsErr := e.api.GetOrderItems(ctx, order.OrderID)
		if itemsErr != nil {
			itemErrs = append(itemErrs, fmt.Errorf("order %s: %w", order.OrderID, itemsErr))
			continue
		}

		for _, item := range items {
			if item.Qty <= 0 {
				continue
			}

			key := revenue.NewDedupKey(item.ASIN, item.SKU, order.PurchaseDate)
			exists, existsErr := e.revenues.ExistsByDedupKey(ctx, key)
			if existsErr != nil {
				itemErrs = append(itemErrs, existsErr)
				continue
			}
			if exists {
				e.logger.Debug("Skipping already ingested order line", "key", key.String())
				continue
			}

			p, matchErr := e.matchProduct(ctx, item.SKU, item.ASIN)
			if matchErr != nil {
				itemErrs = append(itemErrs, matchErr)
				continue
			}

			event := e.buildEvent(order, item, p, snap)
			if ingestErr := e.ingest(ctx, event, p); ingestErr != nil {
				itemErrs = append(itemErrs, fmt.Errorf("order line %s: %w", key.String(), ingestErr))
				continue
			}
			created++
		}
	}

	return created, 0, errors.Join(itemErrs...)
}

// buildEvent derives a revenue event from one order line. The cost basis
// comes from the matched product; without one, cost of goods is unknown and
// the marketplace fee falls back to the default percentage.
func (e *Engine) buildEvent(order marketplace.Order, item marketplace.OrderItem, p *product.Product, snap *fxrate.Snapshot) *revenue.Event {
	qty := decimal.NewFromInt(int64(item.Qty))

	event := &revenue.Event{
		Date:        order.PurchaseDate,
		Origin:      "FBA",
		Description: item.Title,
		Amount:      item.ItemPrice,
		Currency:    item.Currency,
		SKU:         item.SKU,
		ASIN:        item.ASIN,
		Qty:         item.Qty,
		Gross:       item.ItemPrice,
		CreatedAt:   time.Now().UTC(),
	}
	event.Shadow = fx.Shadows(event.Amount, event.Currency, snap)

	if p != nil {
		event.ProductID = &p.ID
		event.CostOfGoods = p.LandedUnitCost().Mul(qty)
		event.MarketplaceFee = p.MarketplaceFee.Mul(qty)
	} else {
		event.MarketplaceFee = event.Gross.Mul(defaultFeePercent)
	}
	event.RecomputeNetProfit()

	return event
}

// ingest commits one order line: the revenue insert and the stock decrement
// land in a single transaction or not at all.
func (e *Engine) ingest(ctx context.Context, event *revenue.Event, p *product.Product) error {
	return e.tx.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := e.revenues.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}
		if p != nil {
			if _, err := e.products.WithTx(tx).DecrementStock(ctx, p.ID, event.Qty); err != nil {
				return err
			}
		}
		return nil
	})
}

// syncBalance snapshots the marketplace account balance, at most once per
// calendar day.
func (e *Engine) syncBalance(ctx context.Context) (created, updated int, err error) {
	today := time.Now().UTC()
	exists, err := e.balances.ExistsForDay(ctx, today)
	if err != nil {
		return 0, 0, err
	}
	if exists {
		e.logger.Debug("Balance snapshot already taken today")
		return 0, 0, nil
	}

	reported, err := e.api.GetAccountBalance(ctx)
	if err != nil {
		return 0, 0, err
	}

	snapshot := &balance.Snapshot{
		Date:      time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC),
		Available: reported.Available,
		Pending:   reported.Pending,
		Currency:  reported.Currency,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.balances.Create(ctx, snapshot); err != nil {
		return 0, 0, err
	}

	return 1, 0, nil
}
