package model

import (
	"math"
	"time"
)

// Instrument types as reported by the broker.
const (
	InstrumentStock    = "Stock"
	InstrumentBond     = "Bond"
	InstrumentEtf      = "Etf"
	InstrumentCurrency = "Currency"
)

// Position is the current state of one instrument within a portfolio.
//
// Count, Average, Expected and LastPrice mirror the broker-reported snapshot
// and are authoritative for display. CalculatedCount, CalculatedAverage,
// CalculatedExpected and FixedPnL are derived from the stored fills by the
// accounting engine and are authoritative for profit/loss. A disagreement
// between Count and CalculatedCount is a reconciliation warning, not an error.
type Position struct {
	PortfolioID    string `json:"portfolioId"`
	FIGI           string `json:"figi"`
	Ticker         string `json:"ticker"`
	Name           string `json:"name"`
	ISIN           string `json:"isin"`
	InstrumentType string `json:"instrumentType"`
	Currency       string `json:"currency"`

	// Broker-reported state.
	Count            float64   `json:"count"`
	Average          *float64  `json:"average,omitempty"`
	Expected         *float64  `json:"expected,omitempty"`
	LastPrice        *float64  `json:"lastPrice,omitempty"`
	LastPriceUpdated time.Time `json:"lastPriceUpdated"`
	PreviousDayPrice *float64  `json:"previousDayPrice,omitempty"`

	// Derived from fills.
	CalculatedCount    *float64 `json:"calculatedCount,omitempty"`
	CalculatedAverage  *float64 `json:"calculatedAverage,omitempty"`
	CalculatedExpected *float64 `json:"calculatedExpected,omitempty"`
	FixedPnL           *float64 `json:"fixedPnL,omitempty"`

	IsFavourite bool `json:"isFavourite"`
}

// Cost is the current market value of the position (last price times broker
// count). Unknown while no last price has been observed.
func (p Position) Cost() (float64, bool) {
	if p.LastPrice == nil {
		return 0, false
	}
	return *p.LastPrice * p.Count, true
}

// ExpectedValue is the unrealized profit/loss of the open quantity. Currency
// positions have no meaningful average, so the broker-reported yield is used
// as-is. For other instruments it is (lastPrice - average) * quantity, with
// the fills-derived quantity preferred over the broker count.
func (p Position) ExpectedValue() (float64, bool) {
	if p.InstrumentType == InstrumentCurrency {
		if p.Expected == nil {
			return 0, false
		}
		return *p.Expected, true
	}
	if p.LastPrice != nil && p.Average != nil {
		count := p.Count
		if p.CalculatedCount != nil {
			count = *p.CalculatedCount
		}
		return (*p.LastPrice - *p.Average) * count, true
	}
	if p.Expected == nil {
		return 0, false
	}
	return *p.Expected, true
}

// PriceChange is the absolute day change of a price. Changes smaller than one
// cent are reported as zero.
func PriceChange(previousDayPrice, currentPrice float64) float64 {
	change := currentPrice - previousDayPrice
	if math.Abs(change) < 0.01 {
		return 0
	}
	return change
}

// PriceChangePercent is the day change of a price in percent, with the same
// sub-cent clamp as PriceChange.
func PriceChangePercent(previousDayPrice, currentPrice float64) float64 {
	change := 100*currentPrice/previousDayPrice - 100
	if math.Abs(change) < 0.01 {
		return 0
	}
	return change
}
