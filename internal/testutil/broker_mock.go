package testutil

import (
	"context"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
)

// MockBrokerClient is a mock implementation of broker.Client for testing.
// It returns predefined data instead of making actual API calls and counts
// invocations per method.
type MockBrokerClient struct {
	// MockOperations is returned from Operations, keyed by FIGI. Operations
	// for unlisted FIGIs return an empty slice.
	MockOperations map[string][]broker.Operation
	// MockPortfolio is returned from Portfolio.
	MockPortfolio []broker.PortfolioPosition
	// MockCurrencies is returned from Currencies.
	MockCurrencies []broker.CurrencyBalance
	// MockOrderbooks is returned from Orderbook, keyed by FIGI.
	MockOrderbooks map[string]broker.Orderbook
	// MockCandles is returned from Candles, keyed by FIGI.
	MockCandles map[string][]broker.Candle
	// MockInstruments is returned from instrument lookups, keyed by both FIGI
	// and ticker.
	MockInstruments map[string]broker.Instrument
	// MockError, when set, is returned from every method.
	MockError error

	// Per-method call counters.
	OperationsCalls int
	PortfolioCalls  int
	CurrenciesCalls int
	OrderbookCalls  int
	CandlesCalls    int
	InstrumentCalls int
}

// NewMockBrokerClient creates an empty mock broker client.
func NewMockBrokerClient() *MockBrokerClient {
	return &MockBrokerClient{
		MockOperations:  make(map[string][]broker.Operation),
		MockOrderbooks:  make(map[string]broker.Orderbook),
		MockCandles:     make(map[string][]broker.Candle),
		MockInstruments: make(map[string]broker.Instrument),
	}
}

// WithError configures the mock to return the specified error.
func (m *MockBrokerClient) WithError(err error) *MockBrokerClient {
	m.MockError = err
	return m
}

// WithInstrument registers instrument reference data under its FIGI and
// ticker.
func (m *MockBrokerClient) WithInstrument(instrument broker.Instrument) *MockBrokerClient {
	m.MockInstruments[instrument.FIGI] = instrument
	m.MockInstruments[instrument.Ticker] = instrument
	return m
}

// WithOperations registers operations for a FIGI.
func (m *MockBrokerClient) WithOperations(figi string, operations ...broker.Operation) *MockBrokerClient {
	m.MockOperations[figi] = operations
	return m
}

// Operations returns the operations registered for the FIGI.
func (m *MockBrokerClient) Operations(_ context.Context, _, figi string, _, _ time.Time) ([]broker.Operation, error) {
	m.OperationsCalls++
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockOperations[figi], nil
}

// Portfolio returns the configured portfolio snapshot.
func (m *MockBrokerClient) Portfolio(_ context.Context, _ string) ([]broker.PortfolioPosition, error) {
	m.PortfolioCalls++
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockPortfolio, nil
}

// Currencies returns the configured currency balances.
func (m *MockBrokerClient) Currencies(_ context.Context, _ string) ([]broker.CurrencyBalance, error) {
	m.CurrenciesCalls++
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockCurrencies, nil
}

// Orderbook returns the order book registered for the FIGI.
func (m *MockBrokerClient) Orderbook(_ context.Context, figi string, _ int) (broker.Orderbook, error) {
	m.OrderbookCalls++
	if m.MockError != nil {
		return broker.Orderbook{}, m.MockError
	}
	return m.MockOrderbooks[figi], nil
}

// Candles returns the candles registered for the FIGI.
func (m *MockBrokerClient) Candles(_ context.Context, figi string, _, _ time.Time, _ string) ([]broker.Candle, error) {
	m.CandlesCalls++
	if m.MockError != nil {
		return nil, m.MockError
	}
	return m.MockCandles[figi], nil
}

// InstrumentByFIGI returns the instrument registered under the FIGI.
func (m *MockBrokerClient) InstrumentByFIGI(_ context.Context, figi string) (broker.Instrument, error) {
	m.InstrumentCalls++
	if m.MockError != nil {
		return broker.Instrument{}, m.MockError
	}
	instrument, ok := m.MockInstruments[figi]
	if !ok {
		return broker.Instrument{}, errNotRegistered(figi)
	}
	return instrument, nil
}

// InstrumentByTicker returns the instrument registered under the ticker.
func (m *MockBrokerClient) InstrumentByTicker(_ context.Context, ticker string) (broker.Instrument, error) {
	m.InstrumentCalls++
	if m.MockError != nil {
		return broker.Instrument{}, m.MockError
	}
	instrument, ok := m.MockInstruments[ticker]
	if !ok {
		return broker.Instrument{}, errNotRegistered(ticker)
	}
	return instrument, nil
}

type errNotRegistered string

func (e errNotRegistered) Error() string {
	return "no mock instrument registered for " + string(e)
}
