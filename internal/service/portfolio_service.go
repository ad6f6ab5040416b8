package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/accounting"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

// PortfolioService manages portfolios and their positions: broker snapshot
// loading, sorting and filtering for display, manual fill corrections.
type PortfolioService struct {
	client     broker.Client
	portfolios PortfolioStore
	positions  PositionStore
	fills      FillStore
	reconciler *Reconciler
	market     *MarketService
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(
	client broker.Client,
	portfolios PortfolioStore,
	positions PositionStore,
	fills FillStore,
	reconciler *Reconciler,
	market *MarketService,
) *PortfolioService {
	return &PortfolioService{
		client:     client,
		portfolios: portfolios,
		positions:  positions,
		fills:      fills,
		reconciler: reconciler,
		market:     market,
	}
}

// Portfolios returns every stored portfolio.
func (s *PortfolioService) Portfolios() ([]model.Portfolio, error) {
	return s.portfolios.GetAll()
}

// GetPortfolio returns one portfolio by ID.
func (s *PortfolioService) GetPortfolio(id string) (model.Portfolio, error) {
	return s.portfolios.GetOne(id)
}

// CreatePortfolio stores a new portfolio with default display settings.
func (s *PortfolioService) CreatePortfolio(name, account string) (model.Portfolio, error) {
	portfolio := model.Portfolio{
		ID:       uuid.New().String(),
		Name:     name,
		Account:  account,
		Settings: model.DefaultSettings(),
	}
	if err := s.portfolios.Put(portfolio); err != nil {
		return model.Portfolio{}, err
	}
	return portfolio, nil
}

// DeletePortfolio removes a portfolio.
func (s *PortfolioService) DeletePortfolio(id string) error {
	return s.portfolios.DeleteOne(id)
}

// UpdateSettings replaces the display settings of a portfolio after
// validating the sort field.
func (s *PortfolioService) UpdateSettings(id string, settings model.Settings) (model.Portfolio, error) {
	if !model.IsSortField(settings.Sorting.Field) {
		return model.Portfolio{}, fmt.Errorf("%w: %s", apperrors.ErrInvalidSortField, settings.Sorting.Field)
	}

	portfolio, err := s.portfolios.GetOne(id)
	if err != nil {
		return model.Portfolio{}, err
	}
	portfolio.Settings = settings
	if err := s.portfolios.Put(portfolio); err != nil {
		return model.Portfolio{}, err
	}
	return portfolio, nil
}

// LoadPositions fetches the broker portfolio snapshot, merges it into the
// stored positions and returns the merged set. Instruments the broker no
// longer reports keep their record with a zeroed count so realized history
// stays visible.
func (s *PortfolioService) LoadPositions(ctx context.Context, portfolio model.Portfolio) ([]model.Position, error) {
	brokerPositions, err := s.client.Portfolio(ctx, portfolio.Account)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch broker portfolio: %w", err)
	}

	stored, err := s.positions.GetAllByPortfolio(portfolio.ID)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(stored))
	for i, p := range stored {
		index[p.FIGI] = i
	}
	reported := make(map[string]bool, len(brokerPositions))

	now := time.Now().UTC()
	for _, bp := range brokerPositions {
		reported[bp.FIGI] = true

		i, exists := index[bp.FIGI]
		if !exists {
			stored = append(stored, model.Position{
				PortfolioID:    portfolio.ID,
				FIGI:           bp.FIGI,
				Ticker:         bp.Ticker,
				Name:           bp.Name,
				ISIN:           bp.ISIN,
				InstrumentType: bp.InstrumentType,
			})
			i = len(stored) - 1
			index[bp.FIGI] = i
		}

		position := &stored[i]
		position.Count = bp.Balance
		if bp.AveragePositionPrice != nil {
			average := bp.AveragePositionPrice.Value
			position.Average = &average
			position.Currency = bp.AveragePositionPrice.Currency
		}
		if bp.ExpectedYield != nil {
			expected := bp.ExpectedYield.Value
			position.Expected = &expected
		}
		if lastPrice, ok := bp.LastPrice(); ok {
			position.LastPrice = &lastPrice
			position.LastPriceUpdated = now
		}
	}

	// Holdings sold off entirely disappear from the snapshot. Zero them
	// instead of deleting so fixed profit/loss keeps a home. Currency rows
	// are handled separately below.
	for i := range stored {
		position := &stored[i]
		if reported[position.FIGI] || position.InstrumentType == model.InstrumentCurrency {
			continue
		}
		position.Count = 0
		position.Average = nil
		position.Expected = nil
	}

	if err := s.updateCurrencies(ctx, portfolio, &stored, index, now); err != nil {
		return nil, err
	}
	s.refreshPreviousCloses(ctx, stored, now)

	if err := s.positions.PutMany(portfolio.ID, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// updateCurrencies merges account cash balances into the position set as
// currency pseudo-positions. RUB has no instrument of its own; its price and
// average are pinned to 1.
func (s *PortfolioService) updateCurrencies(ctx context.Context, portfolio model.Portfolio, stored *[]model.Position, index map[string]int, now time.Time) error {
	balances, err := s.client.Currencies(ctx, portfolio.Account)
	if err != nil {
		return fmt.Errorf("failed to fetch currency balances: %w", err)
	}

	for _, balance := range balances {
		if balance.Balance == 0 {
			continue
		}

		var figi, ticker, name string
		switch balance.Currency {
		case CurrencyUSD:
			figi, ticker, name = FIGIUSD, "USD000UTSTOM", "US Dollar"
		case CurrencyEUR:
			figi, ticker, name = FIGIEUR, "EUR_RUB__TOM", "Euro"
		case CurrencyRUB:
			figi, ticker, name = CurrencyRUB, CurrencyRUB, "Russian Ruble"
		default:
			log.Printf("Skipping unsupported currency balance: %s", balance.Currency)
			continue
		}

		i, exists := index[figi]
		if !exists {
			*stored = append(*stored, model.Position{
				PortfolioID:    portfolio.ID,
				FIGI:           figi,
				Ticker:         ticker,
				Name:           name,
				InstrumentType: model.InstrumentCurrency,
				Currency:       balance.Currency,
			})
			i = len(*stored) - 1
			index[figi] = i
		}

		position := &(*stored)[i]
		position.Count = balance.Balance

		if balance.Currency == CurrencyRUB {
			one := 1.0
			position.LastPrice = &one
			position.Average = &one
			position.LastPriceUpdated = now
			continue
		}

		orderbook, err := s.client.Orderbook(ctx, figi, 1)
		if err != nil {
			log.Printf("Failed to fetch %s orderbook: %v", ticker, err)
			continue
		}
		lastPrice := orderbook.LastPrice
		position.LastPrice = &lastPrice
		position.LastPriceUpdated = now
	}

	return nil
}

// refreshPreviousCloses fills in the previous trading day close for held
// positions so the day-change column can be rendered. Market data failures
// leave the old value in place.
func (s *PortfolioService) refreshPreviousCloses(ctx context.Context, positions []model.Position, now time.Time) {
	for i := range positions {
		position := &positions[i]
		if position.Count == 0 {
			continue
		}

		price, err := s.market.PreviousDayClosePrice(ctx, position.FIGI, now)
		if err != nil {
			log.Printf("Failed to fetch previous close for %s: %v", position.Ticker, err)
			continue
		}
		position.PreviousDayPrice = &price
	}
}

// FindPosition looks an instrument up by FIGI and returns its stored
// position, creating an unsaved skeleton from broker reference data when the
// instrument is not tracked yet.
func (s *PortfolioService) FindPosition(ctx context.Context, portfolio model.Portfolio, figi string) (model.Position, error) {
	position, found, err := s.positions.GetOne(portfolio.ID, figi)
	if err != nil {
		return model.Position{}, err
	}
	if found {
		return position, nil
	}

	instrument, err := s.client.InstrumentByFIGI(ctx, figi)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: %s", apperrors.ErrInstrumentNotFound, figi)
	}
	return model.Position{
		PortfolioID:    portfolio.ID,
		FIGI:           instrument.FIGI,
		Ticker:         instrument.Ticker,
		Name:           instrument.Name,
		ISIN:           instrument.ISIN,
		InstrumentType: instrument.Type,
		Currency:       instrument.Currency,
	}, nil
}

// ResolveFIGI resolves a ticker to its FIGI via broker instrument search.
func (s *PortfolioService) ResolveFIGI(ctx context.Context, ticker string) (string, error) {
	instrument, err := s.client.InstrumentByTicker(ctx, ticker)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperrors.ErrInstrumentNotFound, ticker)
	}
	return instrument.FIGI, nil
}

// LoadFills reconciles and returns the fills of one instrument, identified by
// ticker, in chronological order with snapshots populated.
func (s *PortfolioService) LoadFills(ctx context.Context, portfolio model.Portfolio, ticker string) ([]model.Fill, error) {
	figi, err := s.ResolveFIGI(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if _, err := s.reconciler.ReconcileInstrument(ctx, portfolio, figi); err != nil {
		return nil, err
	}

	fills, err := s.fills.GetAllByFIGI(portfolio.ID, figi)
	if err != nil {
		return nil, err
	}
	accounting.SortChronological(fills)
	return fills, nil
}

// UpdateFillManual applies a manual correction to one fill and recomputes
// the instrument's accounting. The fill is flagged manual so reconciliation
// never overwrites it with broker data again.
func (s *PortfolioService) UpdateFillManual(ctx context.Context, portfolio model.Portfolio, id string, patch model.Fill) (model.Fill, error) {
	fill, found, err := s.fills.GetOne(portfolio.ID, id)
	if err != nil {
		return model.Fill{}, err
	}
	if !found {
		return model.Fill{}, fmt.Errorf("%w: %s", apperrors.ErrFillNotFound, id)
	}
	if patch.QuantityExecuted == 0 {
		return model.Fill{}, apperrors.ErrZeroExecutedQuantity
	}

	fill.Price = patch.Price
	fill.Quantity = patch.Quantity
	fill.QuantityExecuted = patch.QuantityExecuted
	fill.Payment = patch.Payment
	// Commission is stored as a magnitude regardless of the sign supplied.
	fill.Commission = math.Abs(patch.Commission)
	if !patch.Date.IsZero() {
		fill.Date = patch.Date
	}
	fill.Manual = true

	if err := s.fills.PutMany(portfolio.ID, []model.Fill{fill}); err != nil {
		return model.Fill{}, err
	}

	if _, err := s.reconciler.RecomputeInstrument(ctx, portfolio, fill.FIGI); err != nil {
		return model.Fill{}, err
	}

	updated, _, err := s.fills.GetOne(portfolio.ID, id)
	if err != nil {
		return model.Fill{}, err
	}
	return updated, nil
}

// RemovePosition deletes a flat position. The fill history is kept, so a
// later reconciliation can recreate the record. Removing a position that
// still holds quantity is refused.
func (s *PortfolioService) RemovePosition(portfolio model.Portfolio, figi string) error {
	position, found, err := s.positions.GetOne(portfolio.ID, figi)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", apperrors.ErrPositionNotFound, figi)
	}
	if position.Count != 0 {
		return fmt.Errorf("%w: %s holds %v", apperrors.ErrPositionNotFlat, position.Ticker, position.Count)
	}
	return s.positions.DeleteOne(portfolio.ID, figi)
}

// SortedPositions returns the portfolio's positions filtered and ordered by
// its display settings.
func (s *PortfolioService) SortedPositions(portfolio model.Portfolio) ([]model.Position, error) {
	positions, err := s.positions.GetAllByPortfolio(portfolio.ID)
	if err != nil {
		return nil, err
	}

	filtered := positions[:0]
	for _, position := range positions {
		if portfolio.Settings.Filter.Match(position) {
			filtered = append(filtered, position)
		}
	}

	model.SortPositions(filtered, portfolio.Settings)
	return filtered, nil
}
