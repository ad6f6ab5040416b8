package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/accounting"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

// operationsSince is the lower bound used when fetching the full operation
// history of an instrument.
var operationsSince = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// reconcileParallelism bounds how many instruments reconcile concurrently in
// a full-portfolio pass.
const reconcileParallelism = 4

// PositionUpdateFunc receives the reconciled position after each pass.
// Display layers subscribe here instead of a global event bus.
type PositionUpdateFunc func(position model.Position)

// ReconcileResult summarizes one reconciliation pass over an instrument.
type ReconcileResult struct {
	// Created and Updated count fill records written from fresh operations;
	// Skipped counts malformed records excluded from the reduction.
	Created int
	Updated int
	Skipped int

	// Final accumulator state written to the position.
	Quantity    float64
	RealizedPnL float64
	Average     *float64

	// QuantityMismatch is set when the fills-derived quantity disagrees with
	// the broker-reported position quantity. Non-fatal: broker state stays
	// authoritative for display, fills-derived state for profit/loss.
	QuantityMismatch bool
}

// Reconciler merges freshly fetched broker operations into the stored fills
// of an instrument and recomputes the position accounting from scratch.
//
// Reconciliation is serialized per (portfolio, instrument): the reduction is
// strictly sequential, so two interleaved passes over the same instrument
// could persist a torn snapshot. Distinct instruments reconcile in parallel.
type Reconciler struct {
	client     broker.Client
	fills      FillStore
	operations OperationStore
	positions  PositionStore
	onUpdate   PositionUpdateFunc

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewReconciler creates a Reconciler. onUpdate may be nil when no observer
// is interested in position updates.
func NewReconciler(
	client broker.Client,
	fills FillStore,
	operations OperationStore,
	positions PositionStore,
	onUpdate PositionUpdateFunc,
) *Reconciler {
	return &Reconciler{
		client:     client,
		fills:      fills,
		operations: operations,
		positions:  positions,
		onUpdate:   onUpdate,
		locks:      make(map[string]*sync.Mutex),
	}
}

// ReconcileInstrument fetches the full operation history of one instrument,
// merges it into the stored fills and recomputes the position.
func (r *Reconciler) ReconcileInstrument(ctx context.Context, portfolio model.Portfolio, figi string) (ReconcileResult, error) {
	lock := r.lockFor(portfolio.ID + "/" + figi)
	lock.Lock()
	defer lock.Unlock()

	operations, err := r.client.Operations(ctx, portfolio.Account, figi, operationsSince, time.Now())
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("failed to fetch operations for %s: %w", figi, err)
	}

	if err := r.operations.PutMany(portfolio.Account, operations); err != nil {
		return ReconcileResult{}, err
	}

	return r.reconcile(ctx, portfolio, figi, operations)
}

// RecomputeInstrument re-runs the reduction over the stored fills without
// contacting the broker. Used after a manual fill edit.
func (r *Reconciler) RecomputeInstrument(ctx context.Context, portfolio model.Portfolio, figi string) (ReconcileResult, error) {
	lock := r.lockFor(portfolio.ID + "/" + figi)
	lock.Lock()
	defer lock.Unlock()

	return r.reconcile(ctx, portfolio, figi, nil)
}

// ReconcileAll reconciles every tracked instrument of a portfolio.
// Instruments run concurrently; currency positions carry no fills and are
// skipped.
func (r *Reconciler) ReconcileAll(ctx context.Context, portfolio model.Portfolio) error {
	positions, err := r.positions.GetAllByPortfolio(portfolio.ID)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileParallelism)

	for _, position := range positions {
		if position.InstrumentType == model.InstrumentCurrency {
			continue
		}
		figi := position.FIGI
		g.Go(func() error {
			_, err := r.ReconcileInstrument(ctx, portfolio, figi)
			return err
		})
	}

	return g.Wait()
}

// reconcile merges operations into stored fills, reduces the complete fill
// set from a zero accumulator and writes the result to the position. A full
// recompute, not an incremental patch: it stays correct under retroactive
// corrections (late trade reports, manual edits) and is idempotent against
// partial store failures on retry.
func (r *Reconciler) reconcile(ctx context.Context, portfolio model.Portfolio, figi string, operations []broker.Operation) (ReconcileResult, error) {
	fills, err := r.fills.GetAllByFIGI(portfolio.ID, figi)
	if err != nil {
		return ReconcileResult{}, err
	}

	var result ReconcileResult
	fills, result.Created, result.Updated = mergeFills(portfolio.ID, fills, operations)

	accounting.SortChronological(fills)

	var acc accounting.Accumulator
	for i := range fills {
		fill := &fills[i]
		if fill.QuantityExecuted == 0 {
			// Reducing such a fill would divide by zero on a sign reversal.
			log.Printf("Skipping fill %s (%s): zero executed quantity", fill.ID, figi)
			result.Skipped++
			continue
		}
		if warn := directionMismatch(*fill); warn != "" {
			log.Printf("Fill %s (%s): %s", fill.ID, figi, warn)
		}

		var snap accounting.Snapshot
		acc, snap = accounting.Reduce(acc, *fill)
		accounting.ApplySnapshot(fill, snap)
	}

	if err := r.fills.PutMany(portfolio.ID, fills); err != nil {
		return ReconcileResult{}, err
	}

	result.Quantity = acc.Quantity
	result.RealizedPnL = acc.RealizedPnL
	result.Average = acc.AveragePriceCorrected

	position, err := r.updatePosition(ctx, portfolio, figi, acc, &result)
	if err != nil {
		return ReconcileResult{}, err
	}

	log.Printf("Fills %s reconciled: created %d, updated %d, skipped %d",
		position.Ticker, result.Created, result.Updated, result.Skipped)

	if r.onUpdate != nil {
		r.onUpdate(position)
	}

	return result, nil
}

// updatePosition writes the accumulator outcome to the instrument's position,
// creating the position on first sight of the instrument.
func (r *Reconciler) updatePosition(ctx context.Context, portfolio model.Portfolio, figi string, acc accounting.Accumulator, result *ReconcileResult) (model.Position, error) {
	position, found, err := r.positions.GetOne(portfolio.ID, figi)
	if err != nil {
		return model.Position{}, err
	}
	if !found {
		instrument, err := r.client.InstrumentByFIGI(ctx, figi)
		if err != nil {
			return model.Position{}, err
		}
		position = model.Position{
			PortfolioID:    portfolio.ID,
			FIGI:           instrument.FIGI,
			Ticker:         instrument.Ticker,
			Name:           instrument.Name,
			ISIN:           instrument.ISIN,
			InstrumentType: instrument.Type,
			Currency:       instrument.Currency,
		}
	}

	quantity := acc.Quantity
	position.CalculatedCount = &quantity
	position.CalculatedAverage = acc.AveragePriceCorrected
	realized := acc.RealizedPnL
	position.FixedPnL = &realized

	if position.LastPrice != nil && position.CalculatedAverage != nil {
		expected := (*position.LastPrice - *position.CalculatedAverage) * quantity
		position.CalculatedExpected = &expected
	} else {
		position.CalculatedExpected = nil
	}

	if position.Count != acc.Quantity {
		log.Printf("Warning: %s quantity calculated by fills (%v) does not match broker-reported quantity (%v)",
			position.Ticker, acc.Quantity, position.Count)
		result.QuantityMismatch = true
	}

	if err := r.positions.PutOne(portfolio.ID, position); err != nil {
		return model.Position{}, err
	}

	return position, nil
}

// mergeFills folds fresh operations into the stored fill set. Only completed
// buy/sell operations participate. Fills marked manual are never overwritten;
// for the rest, economics fields are updated only when they differ from the
// fetched values.
func mergeFills(portfolioID string, fills []model.Fill, operations []broker.Operation) ([]model.Fill, int, int) {
	index := make(map[string]int, len(fills))
	for i, fill := range fills {
		index[fill.ID] = i
	}

	created := 0
	updated := 0

	for _, op := range operations {
		if op.Status != broker.StatusDone || !IsAccountableOperation(op) {
			continue
		}

		i, exists := index[op.ID]
		if !exists {
			fills = append(fills, newFill(portfolioID, op))
			index[op.ID] = len(fills) - 1
			created++
			continue
		}

		fill := &fills[i]
		if fill.Manual {
			continue
		}

		changed := false
		commission := commissionMagnitude(op)
		if fill.Price != op.Price || fill.Commission != commission {
			fill.Price = op.Price
			fill.Commission = commission
			changed = true
		}
		if fill.Quantity != op.Quantity || fill.QuantityExecuted != op.QuantityExecuted {
			fill.Quantity = op.Quantity
			fill.QuantityExecuted = op.QuantityExecuted
			changed = true
		}
		if fill.Payment != op.Payment {
			fill.Payment = op.Payment
			changed = true
		}
		if len(fill.Trades) != len(op.Trades) {
			fill.Trades = convertTrades(op.Trades)
			changed = true
		}
		if changed {
			updated++
		}
	}

	return fills, created, updated
}

// IsAccountableOperation reports whether an operation belongs in position
// accounting: a completed buy/sell variant.
func IsAccountableOperation(op broker.Operation) bool {
	return broker.IsAccountable(op.OperationType)
}

func newFill(portfolioID string, op broker.Operation) model.Fill {
	return model.Fill{
		ID:               op.ID,
		PortfolioID:      portfolioID,
		FIGI:             op.FIGI,
		Date:             op.Date,
		OperationType:    op.OperationType,
		Price:            op.Price,
		Quantity:         op.Quantity,
		QuantityExecuted: op.QuantityExecuted,
		Payment:          op.Payment,
		Commission:       commissionMagnitude(op),
		Trades:           convertTrades(op.Trades),
	}
}

func commissionMagnitude(op broker.Operation) float64 {
	if op.Commission == nil {
		return 0
	}
	if op.Commission.Value < 0 {
		return -op.Commission.Value
	}
	return op.Commission.Value
}

func convertTrades(trades []broker.OperationTrade) []model.TradeExecution {
	if len(trades) == 0 {
		return nil
	}
	result := make([]model.TradeExecution, len(trades))
	for i, t := range trades {
		result[i] = model.TradeExecution{
			TradeID:  t.TradeID,
			Date:     t.Date,
			Price:    t.Price,
			Quantity: t.Quantity,
		}
	}
	return result
}

// directionMismatch checks the declared operation type against the payment
// sign. The payment sign is authoritative; a mismatch is only reported.
func directionMismatch(fill model.Fill) string {
	switch {
	case fill.Payment < 0 && fill.OperationType == broker.OperationSell:
		return "declared Sell but payment is negative; treating as buy"
	case fill.Payment > 0 && (fill.OperationType == broker.OperationBuy || fill.OperationType == broker.OperationBuyCard):
		return "declared Buy but payment is positive; treating as sell"
	}
	return ""
}

func (r *Reconciler) lockFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}
