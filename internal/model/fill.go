package model

import "time"

// TradeExecution is a single trade print within a fill. An order may be
// executed across several trades, each with its own timestamp and price.
type TradeExecution struct {
	TradeID  string    `json:"tradeId"`
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
}

// Fill represents one executed (or partially executed) buy/sell order for an
// instrument within a portfolio. Economics fields come from the broker;
// snapshot fields (AveragePrice, AveragePriceCorrected, CurrentQuantity,
// FixedPnL) are written by the accounting reduction and describe the position
// state immediately after this fill was processed.
type Fill struct {
	ID            string    `json:"id"`
	PortfolioID   string    `json:"portfolioId"`
	FIGI          string    `json:"figi"`
	Date          time.Time `json:"date"`
	OperationType string    `json:"operationType"`

	// Price is the per-unit price reported by the broker.
	Price float64 `json:"price"`
	// Quantity is the declared order quantity, QuantityExecuted the portion
	// that actually traded.
	Quantity         float64 `json:"quantity"`
	QuantityExecuted float64 `json:"quantityExecuted"`
	// Payment is the signed cash effect: negative for buys (cash out),
	// positive for sells (cash in). The buy/sell direction of a fill is
	// derived from this sign, not from OperationType.
	Payment float64 `json:"payment"`
	// Commission is always stored as a non-negative magnitude.
	Commission float64          `json:"commission"`
	Trades     []TradeExecution `json:"trades,omitempty"`

	// Accounting snapshot, recomputed on every full reduction pass.
	AveragePrice          *float64 `json:"averagePrice,omitempty"`
	AveragePriceCorrected *float64 `json:"averagePriceCorrected,omitempty"`
	CurrentQuantity       *float64 `json:"currentQuantity,omitempty"`
	FixedPnL              *float64 `json:"fixedPnL,omitempty"`

	// Manual marks a fill whose economics were edited by the user.
	// Reconciliation never overwrites a manual fill from broker data.
	Manual bool `json:"manual"`
}

// LastTradeDate returns the timestamp of the last recorded trade execution.
// The second return value is false when the fill carries no trade list.
func (f Fill) LastTradeDate() (time.Time, bool) {
	if len(f.Trades) == 0 {
		return time.Time{}, false
	}
	return f.Trades[len(f.Trades)-1].Date, true
}

// EffectiveTime is the moment the fill is considered executed for ordering
// purposes: the last trade execution if trades are recorded, otherwise the
// order placement date.
func (f Fill) EffectiveTime() time.Time {
	if t, ok := f.LastTradeDate(); ok {
		return t
	}
	return f.Date
}
