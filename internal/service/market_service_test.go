package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/service"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/testutil"
)

func TestMarketService_CurrencyRate(t *testing.T) {
	t.Run("fetches the rate once and caches it", func(t *testing.T) {
		client := testutil.NewMockBrokerClient()
		client.MockOrderbooks[service.FIGIUSD] = broker.Orderbook{FIGI: service.FIGIUSD, LastPrice: 90}
		market := service.NewMarketService(client)

		for i := 0; i < 3; i++ {
			rate, err := market.CurrencyRate(context.Background(), service.CurrencyUSD)
			if err != nil {
				t.Fatalf("CurrencyRate() returned unexpected error: %v", err)
			}
			if rate != 90 {
				t.Errorf("Expected rate 90, got %v", rate)
			}
		}

		if client.OrderbookCalls != 1 {
			t.Errorf("Expected one orderbook fetch, got %d", client.OrderbookCalls)
		}
	})

	t.Run("ruble rate is always one", func(t *testing.T) {
		market := service.NewMarketService(testutil.NewMockBrokerClient())

		rate, err := market.CurrencyRate(context.Background(), service.CurrencyRUB)
		if err != nil {
			t.Fatalf("CurrencyRate() returned unexpected error: %v", err)
		}
		if rate != 1 {
			t.Errorf("Expected rate 1, got %v", rate)
		}
	})

	t.Run("unsupported currency", func(t *testing.T) {
		market := service.NewMarketService(testutil.NewMockBrokerClient())

		_, err := market.CurrencyRate(context.Background(), "GBP")
		if !errors.Is(err, apperrors.ErrUnsupportedCurrencyPair) {
			t.Errorf("Expected ErrUnsupportedCurrencyPair, got %v", err)
		}
	})
}

func TestMarketService_Rate(t *testing.T) {
	client := testutil.NewMockBrokerClient()
	client.MockOrderbooks[service.FIGIUSD] = broker.Orderbook{FIGI: service.FIGIUSD, LastPrice: 80}
	market := service.NewMarketService(client)

	t.Run("identity", func(t *testing.T) {
		rate, err := market.Rate(context.Background(), "USD", "USD")
		if err != nil || rate != 1 {
			t.Errorf("Expected identity rate 1, got %v (err=%v)", rate, err)
		}
	})

	t.Run("to rubles", func(t *testing.T) {
		rate, err := market.Rate(context.Background(), service.CurrencyUSD, service.CurrencyRUB)
		if err != nil || rate != 80 {
			t.Errorf("Expected rate 80, got %v (err=%v)", rate, err)
		}
	})

	t.Run("from rubles inverts", func(t *testing.T) {
		rate, err := market.Rate(context.Background(), service.CurrencyRUB, service.CurrencyUSD)
		if err != nil || rate != 1.0/80 {
			t.Errorf("Expected rate 1/80, got %v (err=%v)", rate, err)
		}
	})

	t.Run("cross pairs are unsupported", func(t *testing.T) {
		_, err := market.Rate(context.Background(), "USD", "EUR")
		if !errors.Is(err, apperrors.ErrUnsupportedCurrencyPair) {
			t.Errorf("Expected ErrUnsupportedCurrencyPair, got %v", err)
		}
	})
}

func TestMarketService_PreviousDayClosePrice(t *testing.T) {
	figi := "BBG000TEST01"

	candlesAt := func(closes ...float64) []broker.Candle {
		candles := make([]broker.Candle, len(closes))
		for i, c := range closes {
			candles[i] = broker.Candle{FIGI: figi, Interval: "hour", Close: c}
		}
		return candles
	}

	t.Run("takes the close of the last candle", func(t *testing.T) {
		client := testutil.NewMockBrokerClient()
		client.MockCandles[figi] = candlesAt(100, 101, 102.5)
		market := service.NewMarketService(client)

		// Wednesday.
		now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
		price, err := market.PreviousDayClosePrice(context.Background(), figi, now)
		if err != nil {
			t.Fatalf("PreviousDayClosePrice() returned unexpected error: %v", err)
		}
		if price != 102.5 {
			t.Errorf("Expected close 102.5, got %v", price)
		}
	})

	t.Run("no candles", func(t *testing.T) {
		market := service.NewMarketService(testutil.NewMockBrokerClient())

		now := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
		_, err := market.PreviousDayClosePrice(context.Background(), figi, now)
		if !errors.Is(err, apperrors.ErrNoPreviousClose) {
			t.Errorf("Expected ErrNoPreviousClose, got %v", err)
		}
	})

	t.Run("ruble needs no market data", func(t *testing.T) {
		market := service.NewMarketService(testutil.NewMockBrokerClient())

		price, err := market.PreviousDayClosePrice(context.Background(), "RUB", time.Now())
		if err != nil || price != 1 {
			t.Errorf("Expected price 1, got %v (err=%v)", price, err)
		}
	})
}
