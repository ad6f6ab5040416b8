// Package broker provides the HTTP client for the brokerage OpenAPI: account
// operations, portfolio snapshots, market data and instrument lookup.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client defines the brokerage API surface the tracker depends on.
// This interface enables dependency injection and testing with mock
// implementations.
type Client interface {
	Operations(ctx context.Context, account, figi string, from, to time.Time) ([]Operation, error)
	Portfolio(ctx context.Context, account string) ([]PortfolioPosition, error)
	Currencies(ctx context.Context, account string) ([]CurrencyBalance, error)
	Orderbook(ctx context.Context, figi string, depth int) (Orderbook, error)
	Candles(ctx context.Context, figi string, from, to time.Time, interval string) ([]Candle, error)
	InstrumentByFIGI(ctx context.Context, figi string) (Instrument, error)
	InstrumentByTicker(ctx context.Context, ticker string) (Instrument, error)
}

// RESTClient talks to the brokerage REST API. Responses arrive wrapped in a
// tracking envelope; a non-Ok envelope status is surfaced as an error.
type RESTClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewRESTClient creates a broker client for the given API base URL and
// bearer token.
func NewRESTClient(baseURL, token string) *RESTClient {
	return &RESTClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

// Operations fetches account operations in the [from, to] window, optionally
// restricted to one instrument.
func (c *RESTClient) Operations(ctx context.Context, account, figi string, from, to time.Time) ([]Operation, error) {
	params := url.Values{}
	params.Set("from", from.Format(time.RFC3339))
	params.Set("to", to.Format(time.RFC3339))
	if figi != "" {
		params.Set("figi", figi)
	}
	if account != "" {
		params.Set("brokerAccountId", account)
	}

	var response operationsResponse
	if err := c.get(ctx, "/operations", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch operations: %w", err)
	}
	return response.Payload.Operations, nil
}

// Portfolio fetches the current instrument positions of an account.
func (c *RESTClient) Portfolio(ctx context.Context, account string) ([]PortfolioPosition, error) {
	params := url.Values{}
	params.Set("brokerAccountId", account)

	var response portfolioResponse
	if err := c.get(ctx, "/portfolio", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch portfolio: %w", err)
	}
	return response.Payload.Positions, nil
}

// Currencies fetches the cash balances of an account.
func (c *RESTClient) Currencies(ctx context.Context, account string) ([]CurrencyBalance, error) {
	params := url.Values{}
	params.Set("brokerAccountId", account)

	var response currenciesResponse
	if err := c.get(ctx, "/portfolio/currencies", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch currencies: %w", err)
	}
	return response.Payload.Currencies, nil
}

// Orderbook fetches the order book snapshot for an instrument.
func (c *RESTClient) Orderbook(ctx context.Context, figi string, depth int) (Orderbook, error) {
	params := url.Values{}
	params.Set("figi", figi)
	params.Set("depth", fmt.Sprintf("%d", depth))

	var response orderbookResponse
	if err := c.get(ctx, "/market/orderbook", params, &response); err != nil {
		return Orderbook{}, fmt.Errorf("failed to fetch orderbook: %w", err)
	}
	return response.Payload, nil
}

// Candles fetches OHLCV bars for an instrument in the [from, to] window.
func (c *RESTClient) Candles(ctx context.Context, figi string, from, to time.Time, interval string) ([]Candle, error) {
	params := url.Values{}
	params.Set("figi", figi)
	params.Set("from", from.Format(time.RFC3339))
	params.Set("to", to.Format(time.RFC3339))
	params.Set("interval", interval)

	var response candlesResponse
	if err := c.get(ctx, "/market/candles", params, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch candles: %w", err)
	}
	return response.Payload.Candles, nil
}

// InstrumentByFIGI looks up instrument reference data by FIGI.
func (c *RESTClient) InstrumentByFIGI(ctx context.Context, figi string) (Instrument, error) {
	params := url.Values{}
	params.Set("figi", figi)

	var response instrumentResponse
	if err := c.get(ctx, "/market/search/by-figi", params, &response); err != nil {
		return Instrument{}, fmt.Errorf("failed to fetch instrument %s: %w", figi, err)
	}
	return response.Payload, nil
}

// InstrumentByTicker looks up instrument reference data by ticker. The first
// match wins when several instruments share the ticker.
func (c *RESTClient) InstrumentByTicker(ctx context.Context, ticker string) (Instrument, error) {
	params := url.Values{}
	params.Set("ticker", ticker)

	var response searchResponse
	if err := c.get(ctx, "/market/search/by-ticker", params, &response); err != nil {
		return Instrument{}, fmt.Errorf("failed to search instrument %s: %w", ticker, err)
	}
	if len(response.Payload.Instruments) == 0 {
		return Instrument{}, fmt.Errorf("instrument %s: not found", ticker)
	}
	return response.Payload.Instruments[0], nil
}

func (c *RESTClient) get(ctx context.Context, path string, params url.Values, result any) error {
	queryURL := c.baseURL + path
	if len(params) > 0 {
		queryURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Payload.Message != "" {
			return fmt.Errorf("broker error %s: %s", apiErr.Payload.Code, apiErr.Payload.Message)
		}
		return fmt.Errorf("broker returned status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode broker response: %w", err)
	}
	return nil
}
