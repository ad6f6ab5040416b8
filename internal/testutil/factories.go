package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/repository"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithName("Custom Portfolio").
//	    WithAccount("2000123456").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID       string
	Name     string
	Account  string
	Settings model.Settings
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:       MakeID(),
		Name:     MakePortfolioName("Test Portfolio"),
		Account:  "2000000000",
		Settings: model.DefaultSettings(),
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithAccount sets a custom broker account.
func (b *PortfolioBuilder) WithAccount(account string) *PortfolioBuilder {
	b.Account = account
	return b
}

// WithSettings sets custom display settings.
func (b *PortfolioBuilder) WithSettings(settings model.Settings) *PortfolioBuilder {
	b.Settings = settings
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	portfolio := model.Portfolio{
		ID:       b.ID,
		Name:     b.Name,
		Account:  b.Account,
		Settings: b.Settings,
	}

	if err := repository.NewPortfolioRepository(db).Put(portfolio); err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return portfolio
}

// PositionBuilder provides a fluent interface for creating test positions.
type PositionBuilder struct {
	position model.Position
}

// NewPosition creates a PositionBuilder for the given portfolio with defaults.
func NewPosition(portfolioID string) *PositionBuilder {
	return &PositionBuilder{
		position: model.Position{
			PortfolioID:    portfolioID,
			FIGI:           MakeFIGI(),
			Ticker:         MakeTicker("TST"),
			Name:           "Test Instrument",
			ISIN:           "US0000000001",
			InstrumentType: model.InstrumentStock,
			Currency:       "USD",
		},
	}
}

// WithFIGI sets a custom FIGI.
func (b *PositionBuilder) WithFIGI(figi string) *PositionBuilder {
	b.position.FIGI = figi
	return b
}

// WithTicker sets a custom ticker.
func (b *PositionBuilder) WithTicker(ticker string) *PositionBuilder {
	b.position.Ticker = ticker
	return b
}

// WithInstrumentType sets the instrument type.
func (b *PositionBuilder) WithInstrumentType(instrumentType string) *PositionBuilder {
	b.position.InstrumentType = instrumentType
	return b
}

// WithCurrency sets the instrument currency.
func (b *PositionBuilder) WithCurrency(currency string) *PositionBuilder {
	b.position.Currency = currency
	return b
}

// WithCount sets the broker-reported quantity.
func (b *PositionBuilder) WithCount(count float64) *PositionBuilder {
	b.position.Count = count
	return b
}

// WithAverage sets the broker-reported average entry price.
func (b *PositionBuilder) WithAverage(average float64) *PositionBuilder {
	b.position.Average = &average
	return b
}

// WithExpected sets the broker-reported unrealized yield.
func (b *PositionBuilder) WithExpected(expected float64) *PositionBuilder {
	b.position.Expected = &expected
	return b
}

// WithLastPrice sets the last observed price.
func (b *PositionBuilder) WithLastPrice(price float64) *PositionBuilder {
	b.position.LastPrice = &price
	return b
}

// WithPreviousDayPrice sets the previous trading day close.
func (b *PositionBuilder) WithPreviousDayPrice(price float64) *PositionBuilder {
	b.position.PreviousDayPrice = &price
	return b
}

// WithFixedPnL sets the realized profit/loss.
func (b *PositionBuilder) WithFixedPnL(pnl float64) *PositionBuilder {
	b.position.FixedPnL = &pnl
	return b
}

// Value returns the built position without persisting it. Useful for
// comparator and filter tests that need no database.
func (b *PositionBuilder) Value() model.Position {
	return b.position
}

// Build creates the position in the database and returns it.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	if err := repository.NewPositionRepository(db).PutOne(b.position.PortfolioID, b.position); err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}
	return b.position
}

// FillBuilder provides a fluent interface for creating test fills.
type FillBuilder struct {
	fill model.Fill
}

// NewFill creates a FillBuilder with defaults: a completed buy of 1 unit at
// price 100.
func NewFill(portfolioID, figi string) *FillBuilder {
	return &FillBuilder{
		fill: model.Fill{
			ID:               MakeID(),
			PortfolioID:      portfolioID,
			FIGI:             figi,
			Date:             time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			OperationType:    "Buy",
			Price:            100,
			Quantity:         1,
			QuantityExecuted: 1,
			Payment:          -100,
		},
	}
}

// WithID sets a custom ID.
func (b *FillBuilder) WithID(id string) *FillBuilder {
	b.fill.ID = id
	return b
}

// WithDate sets the order placement date.
func (b *FillBuilder) WithDate(date time.Time) *FillBuilder {
	b.fill.Date = date
	return b
}

// Buy configures the fill as a buy of the given quantity at the given price.
func (b *FillBuilder) Buy(quantity, price float64) *FillBuilder {
	b.fill.OperationType = "Buy"
	b.fill.Price = price
	b.fill.Quantity = quantity
	b.fill.QuantityExecuted = quantity
	b.fill.Payment = -quantity * price
	return b
}

// Sell configures the fill as a sell of the given quantity at the given price.
func (b *FillBuilder) Sell(quantity, price float64) *FillBuilder {
	b.fill.OperationType = "Sell"
	b.fill.Price = price
	b.fill.Quantity = quantity
	b.fill.QuantityExecuted = quantity
	b.fill.Payment = quantity * price
	return b
}

// WithCommission sets the commission magnitude.
func (b *FillBuilder) WithCommission(commission float64) *FillBuilder {
	b.fill.Commission = commission
	return b
}

// WithTrades attaches trade executions.
func (b *FillBuilder) WithTrades(trades ...model.TradeExecution) *FillBuilder {
	b.fill.Trades = trades
	return b
}

// Manual marks the fill as manually edited.
func (b *FillBuilder) Manual() *FillBuilder {
	b.fill.Manual = true
	return b
}

// Value returns the built fill without persisting it.
func (b *FillBuilder) Value() model.Fill {
	return b.fill
}

// Build creates the fill in the database and returns it.
func (b *FillBuilder) Build(t *testing.T, db *sql.DB) model.Fill {
	t.Helper()

	if err := repository.NewFillRepository(db).PutMany(b.fill.PortfolioID, []model.Fill{b.fill}); err != nil {
		t.Fatalf("Failed to create test fill: %v", err)
	}
	return b.fill
}
