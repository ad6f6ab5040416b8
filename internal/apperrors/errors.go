// Package apperrors defines the sentinel errors shared across layers.
package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrPositionNotFound indicates that a position for the given instrument does not exist.
	ErrPositionNotFound = errors.New("position not found")

	// ErrFillNotFound indicates that a fill with the given ID does not exist.
	ErrFillNotFound = errors.New("fill not found")

	// ErrInstrumentNotFound indicates that an instrument lookup returned no results.
	ErrInstrumentNotFound = errors.New("instrument not found")

	// ErrTokenNotFound indicates that no broker API token has been stored yet.
	ErrTokenNotFound = errors.New("broker token not found")
)

// Business logic errors represent validation failures or constraint
// violations. These errors indicate that an operation cannot be completed due
// to business rules.
var (
	// ErrPositionNotFlat indicates an attempt to remove a position whose
	// quantity is not zero. Only fully closed positions may be removed.
	ErrPositionNotFlat = errors.New("position quantity is not zero")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidSortField indicates an unknown position sort field.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrUnsupportedCurrencyPair indicates a currency conversion the rate
	// service has no rate for.
	ErrUnsupportedCurrencyPair = errors.New("unsupported currency pair")
)

// Data quality errors represent broker records the accounting pipeline
// refuses to process. They are logged and skipped, never fatal.
var (
	// ErrZeroExecutedQuantity indicates a completed buy/sell operation whose
	// executed quantity is zero. Reducing such a fill would divide by zero.
	ErrZeroExecutedQuantity = errors.New("fill has zero executed quantity")

	// ErrNoPreviousClose indicates that no candle data was available for the
	// previous trading day.
	ErrNoPreviousClose = errors.New("no previous close price available")
)
