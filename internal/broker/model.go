package broker

import "time"

// Operation statuses and types used by the accounting pipeline. Only
// completed buy/sell operations participate in position accounting; every
// other operation type (dividends, transfers, commission line items) is
// excluded before reduction.
const (
	StatusDone = "Done"

	OperationBuy     = "Buy"
	OperationBuyCard = "BuyCard"
	OperationSell    = "Sell"
)

// IsAccountable reports whether an operation type is a recognized buy/sell
// variant.
func IsAccountable(operationType string) bool {
	switch operationType {
	case OperationBuy, OperationBuyCard, OperationSell:
		return true
	}
	return false
}

// MoneyAmount is a currency-tagged monetary value.
type MoneyAmount struct {
	Currency string  `json:"currency"`
	Value    float64 `json:"value"`
}

// OperationTrade is one trade print within an operation.
type OperationTrade struct {
	TradeID  string    `json:"tradeId"`
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
}

// Operation is a raw brokerage operation record for an account.
type Operation struct {
	ID               string           `json:"id"`
	FIGI             string           `json:"figi"`
	Status           string           `json:"status"`
	OperationType    string           `json:"operationType"`
	Date             time.Time        `json:"date"`
	Currency         string           `json:"currency"`
	Price            float64          `json:"price"`
	Quantity         float64          `json:"quantity"`
	QuantityExecuted float64          `json:"quantityExecuted"`
	Payment          float64          `json:"payment"`
	Commission       *MoneyAmount     `json:"commission,omitempty"`
	Trades           []OperationTrade `json:"trades,omitempty"`
}

// PortfolioPosition is one instrument line of the broker's portfolio
// snapshot.
type PortfolioPosition struct {
	FIGI                 string       `json:"figi"`
	Ticker               string       `json:"ticker"`
	ISIN                 string       `json:"isin"`
	Name                 string       `json:"name"`
	InstrumentType       string       `json:"instrumentType"`
	Balance              float64      `json:"balance"`
	Lots                 float64      `json:"lots"`
	ExpectedYield        *MoneyAmount `json:"expectedYield,omitempty"`
	AveragePositionPrice *MoneyAmount `json:"averagePositionPrice,omitempty"`
}

// LastPrice derives the current instrument price from the broker snapshot:
// yield spread over the average entry price. Unknown when either part is
// missing or the balance is zero.
func (p PortfolioPosition) LastPrice() (float64, bool) {
	if p.ExpectedYield == nil || p.AveragePositionPrice == nil || p.Balance == 0 {
		return 0, false
	}
	return p.ExpectedYield.Value/p.Balance + p.AveragePositionPrice.Value, true
}

// CurrencyBalance is a cash balance per currency on the account.
type CurrencyBalance struct {
	Currency string  `json:"currency"`
	Balance  float64 `json:"balance"`
}

// Orderbook is a market data snapshot for one instrument. Only the prices
// relevant to the tracker are modeled.
type Orderbook struct {
	FIGI       string  `json:"figi"`
	Depth      int     `json:"depth"`
	LastPrice  float64 `json:"lastPrice"`
	ClosePrice float64 `json:"closePrice"`
}

// Candle is one OHLCV bar.
type Candle struct {
	FIGI     string    `json:"figi"`
	Interval string    `json:"interval"`
	Open     float64   `json:"o"`
	Close    float64   `json:"c"`
	High     float64   `json:"h"`
	Low      float64   `json:"l"`
	Volume   float64   `json:"v"`
	Time     time.Time `json:"time"`
}

// Instrument is the broker's reference data for one tradable instrument.
type Instrument struct {
	FIGI     string `json:"figi"`
	Ticker   string `json:"ticker"`
	ISIN     string `json:"isin"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

// API response envelopes. Every broker endpoint wraps its payload in a
// tracking envelope with a status field.

type operationsResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		Operations []Operation `json:"operations"`
	} `json:"payload"`
}

type portfolioResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		Positions []PortfolioPosition `json:"positions"`
	} `json:"payload"`
}

type currenciesResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		Currencies []CurrencyBalance `json:"currencies"`
	} `json:"payload"`
}

type orderbookResponse struct {
	TrackingID string    `json:"trackingId"`
	Status     string    `json:"status"`
	Payload    Orderbook `json:"payload"`
}

type candlesResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		FIGI    string   `json:"figi"`
		Candles []Candle `json:"candles"`
	} `json:"payload"`
}

type instrumentResponse struct {
	TrackingID string     `json:"trackingId"`
	Status     string     `json:"status"`
	Payload    Instrument `json:"payload"`
}

type searchResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		Total       int          `json:"total"`
		Instruments []Instrument `json:"instruments"`
	} `json:"payload"`
}

type errorResponse struct {
	TrackingID string `json:"trackingId"`
	Status     string `json:"status"`
	Payload    struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"payload"`
}
