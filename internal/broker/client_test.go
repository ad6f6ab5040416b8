package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *RESTClient) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewRESTClient(server.URL, "test-token")
}

func TestRESTClient_Operations(t *testing.T) {
	t.Run("decodes the operations envelope", func(t *testing.T) {
		var gotPath, gotAuth, gotFIGI string
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			gotFIGI = r.URL.Query().Get("figi")

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"trackingId": "t1",
				"status": "Ok",
				"payload": {
					"operations": [
						{
							"id": "op-1",
							"figi": "BBG000AAAA01",
							"status": "Done",
							"operationType": "Buy",
							"date": "2024-01-10T09:00:00Z",
							"currency": "USD",
							"price": 100,
							"quantity": 10,
							"quantityExecuted": 10,
							"payment": -1000,
							"commission": {"currency": "USD", "value": -2.5},
							"trades": [
								{"tradeId": "tr-1", "date": "2024-01-10T09:05:00Z", "price": 100, "quantity": 10}
							]
						}
					]
				}
			}`))
		})

		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		operations, err := client.Operations(context.Background(), "2000000000", "BBG000AAAA01", from, to)
		if err != nil {
			t.Fatalf("Operations() returned unexpected error: %v", err)
		}

		if gotPath != "/operations" {
			t.Errorf("Expected path /operations, got %s", gotPath)
		}
		if gotAuth != "Bearer test-token" {
			t.Errorf("Expected bearer token header, got %q", gotAuth)
		}
		if gotFIGI != "BBG000AAAA01" {
			t.Errorf("Expected figi query parameter, got %q", gotFIGI)
		}

		if len(operations) != 1 {
			t.Fatalf("Expected 1 operation, got %d", len(operations))
		}
		op := operations[0]
		if op.ID != "op-1" || op.Payment != -1000 {
			t.Errorf("Expected operation decoded, got %+v", op)
		}
		if op.Commission == nil || op.Commission.Value != -2.5 {
			t.Errorf("Expected commission decoded, got %+v", op.Commission)
		}
		if len(op.Trades) != 1 || op.Trades[0].TradeID != "tr-1" {
			t.Errorf("Expected trades decoded, got %+v", op.Trades)
		}
		if !op.Date.Equal(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected date decoded, got %v", op.Date)
		}
	})

	t.Run("surfaces the broker error payload", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{
				"trackingId": "t2",
				"status": "Error",
				"payload": {"message": "token expired", "code": "ACCESS_DENIED"}
			}`))
		})

		_, err := client.Operations(context.Background(), "", "", time.Time{}, time.Time{})
		if err == nil {
			t.Fatal("Expected an error")
		}
		if !strings.Contains(err.Error(), "ACCESS_DENIED") || !strings.Contains(err.Error(), "token expired") {
			t.Errorf("Expected broker error details, got %v", err)
		}
	})

	t.Run("reports a bare non-200 status", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		})

		_, err := client.Operations(context.Background(), "", "", time.Time{}, time.Time{})
		if err == nil || !strings.Contains(err.Error(), "502") {
			t.Errorf("Expected status error, got %v", err)
		}
	})
}

func TestRESTClient_Orderbook(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/orderbook" {
			t.Errorf("Expected path /market/orderbook, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("depth") != "1" {
			t.Errorf("Expected depth 1, got %q", r.URL.Query().Get("depth"))
		}
		w.Write([]byte(`{
			"trackingId": "t3",
			"status": "Ok",
			"payload": {"figi": "BBG0013HGFT4", "depth": 1, "lastPrice": 92.5, "closePrice": 91}
		}`))
	})

	orderbook, err := client.Orderbook(context.Background(), "BBG0013HGFT4", 1)
	if err != nil {
		t.Fatalf("Orderbook() returned unexpected error: %v", err)
	}
	if orderbook.LastPrice != 92.5 || orderbook.ClosePrice != 91 {
		t.Errorf("Expected orderbook decoded, got %+v", orderbook)
	}
}

func TestRESTClient_Candles(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("interval") != "hour" {
			t.Errorf("Expected interval hour, got %q", r.URL.Query().Get("interval"))
		}
		w.Write([]byte(`{
			"trackingId": "t4",
			"status": "Ok",
			"payload": {
				"figi": "BBG000AAAA01",
				"candles": [
					{"figi": "BBG000AAAA01", "interval": "hour", "o": 100, "c": 102.5, "h": 103, "l": 99, "v": 1000, "time": "2024-03-12T22:00:00Z"}
				]
			}
		}`))
	})

	from := time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)
	candles, err := client.Candles(context.Background(), "BBG000AAAA01", from, from.Add(8*time.Hour), "hour")
	if err != nil {
		t.Fatalf("Candles() returned unexpected error: %v", err)
	}
	if len(candles) != 1 || candles[0].Close != 102.5 {
		t.Errorf("Expected candles decoded, got %+v", candles)
	}
}

func TestRESTClient_InstrumentByTicker(t *testing.T) {
	t.Run("first match wins", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/market/search/by-ticker" {
				t.Errorf("Expected path /market/search/by-ticker, got %s", r.URL.Path)
			}
			w.Write([]byte(`{
				"trackingId": "t5",
				"status": "Ok",
				"payload": {
					"total": 2,
					"instruments": [
						{"figi": "BBG000AAAA01", "ticker": "SBER", "name": "Sberbank", "type": "Stock", "currency": "RUB"},
						{"figi": "BBG000AAAA02", "ticker": "SBER", "name": "Sberbank GDR", "type": "Stock", "currency": "USD"}
					]
				}
			}`))
		})

		instrument, err := client.InstrumentByTicker(context.Background(), "SBER")
		if err != nil {
			t.Fatalf("InstrumentByTicker() returned unexpected error: %v", err)
		}
		if instrument.FIGI != "BBG000AAAA01" {
			t.Errorf("Expected first match, got %+v", instrument)
		}
	})

	t.Run("empty result is not found", func(t *testing.T) {
		_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"trackingId": "t6", "status": "Ok", "payload": {"total": 0, "instruments": []}}`))
		})

		_, err := client.InstrumentByTicker(context.Background(), "NOPE")
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("Expected not found error, got %v", err)
		}
	})
}

func TestRESTClient_InstrumentByFIGI(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/market/search/by-figi" {
			t.Errorf("Expected path /market/search/by-figi, got %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"trackingId": "t7",
			"status": "Ok",
			"payload": {"figi": "BBG000AAAA01", "ticker": "SBER", "isin": "RU0009029540", "name": "Sberbank", "type": "Stock", "currency": "RUB"}
		}`))
	})

	instrument, err := client.InstrumentByFIGI(context.Background(), "BBG000AAAA01")
	if err != nil {
		t.Fatalf("InstrumentByFIGI() returned unexpected error: %v", err)
	}
	if instrument.Ticker != "SBER" || instrument.ISIN != "RU0009029540" {
		t.Errorf("Expected instrument decoded, got %+v", instrument)
	}
}
