package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
)

// FIGIs of the exchange-traded currency instruments used for rate lookup.
const (
	FIGIUSD = "BBG0013HGFT4"
	FIGIEUR = "BBG0013HJJ31"

	CurrencyRUB = "RUB"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// MarketService answers market data questions: currency rates and
// previous-close prices. Rates are cached in memory per service instance;
// the cache is owned here, not in package state, so each session context can
// carry its own.
type MarketService struct {
	client broker.Client

	mu    sync.Mutex
	rates map[string]float64
}

// NewMarketService creates a MarketService backed by the given broker client.
func NewMarketService(client broker.Client) *MarketService {
	return &MarketService{
		client: client,
		rates:  map[string]float64{CurrencyRUB: 1},
	}
}

// CurrencyRate returns the RUB price of one unit of the given currency,
// fetching it from the currency instrument's order book on first use.
func (s *MarketService) CurrencyRate(ctx context.Context, currency string) (float64, error) {
	s.mu.Lock()
	rate, ok := s.rates[currency]
	s.mu.Unlock()
	if ok {
		return rate, nil
	}

	var figi string
	switch currency {
	case CurrencyUSD:
		figi = FIGIUSD
	case CurrencyEUR:
		figi = FIGIEUR
	default:
		return 0, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedCurrencyPair, currency)
	}

	orderbook, err := s.client.Orderbook(ctx, figi, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s rate: %w", currency, err)
	}

	s.mu.Lock()
	s.rates[currency] = orderbook.LastPrice
	s.mu.Unlock()

	return orderbook.LastPrice, nil
}

// Rate converts between two supported currencies. Only RUB pairs with USD
// and EUR are supported; anything else is ErrUnsupportedCurrencyPair.
func (s *MarketService) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}

	switch {
	case to == CurrencyRUB:
		return s.CurrencyRate(ctx, from)
	case from == CurrencyRUB:
		rate, err := s.CurrencyRate(ctx, to)
		if err != nil {
			return 0, err
		}
		return 1 / rate, nil
	}

	return 0, fmt.Errorf("%w: %s to %s", apperrors.ErrUnsupportedCurrencyPair, from, to)
}

// RefreshRates drops the cached rates and fetches fresh ones for the
// supported currencies. Used by the scheduler.
func (s *MarketService) RefreshRates(ctx context.Context) error {
	s.mu.Lock()
	s.rates = map[string]float64{CurrencyRUB: 1}
	s.mu.Unlock()

	for _, currency := range []string{CurrencyUSD, CurrencyEUR} {
		if _, err := s.CurrencyRate(ctx, currency); err != nil {
			return err
		}
	}
	return nil
}

// PreviousDayClosePrice returns the close price of the previous trading day
// for an instrument. The previous trading day ends at 15:00 UTC; Sunday and
// Monday step back to Friday. The price is the close of the last hourly
// candle in the eight hours after that cutoff.
func (s *MarketService) PreviousDayClosePrice(ctx context.Context, figi string, now time.Time) (float64, error) {
	if figi == CurrencyRUB {
		return 1, nil
	}

	now = now.UTC()
	previousTradingDay := time.Date(now.Year(), now.Month(), now.Day(), 15, 0, 0, 0, time.UTC)
	if weekday := int(now.Weekday()); weekday <= 1 {
		previousTradingDay = previousTradingDay.AddDate(0, 0, -2-weekday)
	} else {
		previousTradingDay = previousTradingDay.AddDate(0, 0, -1)
	}
	toDate := previousTradingDay.Add(8 * time.Hour)

	candles, err := s.client.Candles(ctx, figi, previousTradingDay, toDate, "hour")
	if err != nil {
		return 0, fmt.Errorf("failed to fetch candles for %s: %w", figi, err)
	}
	if len(candles) == 0 {
		log.Printf("No candles for %s between %s and %s", figi,
			previousTradingDay.Format(time.RFC3339), toDate.Format(time.RFC3339))
		return 0, apperrors.ErrNoPreviousClose
	}

	return candles[len(candles)-1].Close, nil
}
