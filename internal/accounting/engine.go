// Package accounting implements the position accounting engine: a pure
// left-to-right reduction over chronologically ordered fills that tracks the
// running quantity, the weighted-average cost basis (with and without
// commission), and the realized profit/loss of one instrument.
package accounting

import (
	"math"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

// Accumulator is the engine state carried between fills. The averages are nil
// while the position is flat; a fully closed position carries no basis
// forward.
type Accumulator struct {
	// Quantity is the signed running position size: positive long,
	// negative short.
	Quantity float64
	// RealizedPnL accumulates the profit/loss fixed by closing fills.
	RealizedPnL float64
	// AveragePrice is the weighted-average acquisition price per unit.
	AveragePrice *float64
	// AveragePriceCorrected is the same average with commissions folded into
	// the cost basis. All realized and expected profit/loss uses this value;
	// AveragePrice is kept for reporting only.
	AveragePriceCorrected *float64
}

// Snapshot describes the position immediately after one fill was processed.
// FixedPnL is the realized profit/loss contributed by that fill alone and is
// nil for fills that only open or add to a position.
type Snapshot struct {
	Quantity              float64
	AveragePrice          *float64
	AveragePriceCorrected *float64
	FixedPnL              *float64
}

// Reduce applies a single fill to the accumulator and returns the new state
// plus the per-fill snapshot. It is a pure function: the input accumulator is
// not modified.
//
// The fill's direction is derived from the sign of its payment (negative
// payment = cash out = buy). Three cases apply, in order:
//
//  1. Sign reversal: the fill is large enough to close the position and open
//     one in the opposite direction. The fill is split at the zero crossing;
//     the closing portion realizes profit/loss against the prior corrected
//     average, the remainder opens the new position at the fill price.
//  2. Reduction: the fill moves the quantity toward zero without crossing it.
//     Profit/loss is realized on the closed units; the average cost of the
//     remainder is unchanged.
//  3. Opening or adding: no realized profit/loss; the weighted averages are
//     recomputed over the enlarged position.
//
// A fill with an executed quantity of zero must be filtered out by the caller
// before reduction; the sign-reversal split divides by it.
func Reduce(acc Accumulator, fill model.Fill) (Accumulator, Snapshot) {
	price := fill.Price
	cost := -fill.Payment
	quantity := fill.QuantityExecuted
	commission := math.Abs(fill.Commission)
	direction := -sign(fill.Payment)
	costCorrected := cost + commission

	sumUp := acc.Quantity*value(acc.AveragePrice) + cost
	sumUpCorrected := acc.Quantity*value(acc.AveragePriceCorrected) + costCorrected

	nextQuantity := acc.Quantity + direction*quantity

	next := acc
	var fixedPnL *float64

	switch {
	case (nextQuantity < 0 && acc.Quantity > 0) || (nextQuantity > 0 && acc.Quantity < 0):
		// The position flips through zero: split the fill at the crossing.
		proportion := math.Abs(acc.Quantity / quantity)
		partialCostCorrected := costCorrected * proportion

		pnl := sign(acc.Quantity) * direction *
			(acc.Quantity*value(acc.AveragePriceCorrected) + partialCostCorrected)
		fixedPnL = ptr(pnl)

		next.AveragePrice = ptr(price)
		next.AveragePriceCorrected = ptr(costCorrected * (1 - proportion) / nextQuantity)
		next.Quantity = nextQuantity

	case direction*acc.Quantity < 0:
		// Partial or full close: the remainder keeps its basis.
		pnl := direction*quantity*value(acc.AveragePriceCorrected) - costCorrected
		fixedPnL = ptr(pnl)
		next.Quantity = nextQuantity

	default:
		next.Quantity = nextQuantity
		if next.Quantity != 0 {
			next.AveragePrice = ptr(math.Abs(sumUp / next.Quantity))
			next.AveragePriceCorrected = ptr(math.Abs(sumUpCorrected / next.Quantity))
		}
	}

	if next.Quantity == 0 {
		next.AveragePrice = nil
		next.AveragePriceCorrected = nil
	}

	if fixedPnL != nil {
		next.RealizedPnL += *fixedPnL
	}

	return next, Snapshot{
		Quantity:              next.Quantity,
		AveragePrice:          next.AveragePrice,
		AveragePriceCorrected: next.AveragePriceCorrected,
		FixedPnL:              fixedPnL,
	}
}

// ReduceAll folds a chronologically ordered fill sequence from a zero
// accumulator and returns the final state together with one snapshot per
// fill, in input order.
func ReduceAll(fills []model.Fill) (Accumulator, []Snapshot) {
	var acc Accumulator
	snapshots := make([]Snapshot, len(fills))
	for i, fill := range fills {
		acc, snapshots[i] = Reduce(acc, fill)
	}
	return acc, snapshots
}

// ApplySnapshot writes a reduction snapshot back onto its fill.
func ApplySnapshot(fill *model.Fill, snap Snapshot) {
	fill.AveragePrice = snap.AveragePrice
	fill.AveragePriceCorrected = snap.AveragePriceCorrected
	fill.CurrentQuantity = ptr(snap.Quantity)
	fill.FixedPnL = snap.FixedPnL
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func ptr(v float64) *float64 {
	return &v
}
