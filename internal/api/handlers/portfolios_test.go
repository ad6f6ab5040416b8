package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/api/handlers"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/testutil"
)

func TestPortfolioHandler_Portfolios(t *testing.T) {
	t.Run("GET /api/portfolio returns 200 with empty array", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockBrokerClient())
		handler := handlers.NewPortfolioHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/", nil)
		w := httptest.NewRecorder()

		handler.Portfolios(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []handlers.PortfolioResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d portfolios", len(response))
		}
	})

	t.Run("GET /api/portfolio returns stored portfolios", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockBrokerClient())
		handler := handlers.NewPortfolioHandler(svc)

		testutil.NewPortfolio().WithName("IIS").Build(t, db)
		testutil.NewPortfolio().WithName("Main").Build(t, db)

		req := httptest.NewRequest(http.MethodGet, "/api/portfolio/", nil)
		w := httptest.NewRecorder()

		handler.Portfolios(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []handlers.PortfolioResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(response) != 2 {
			t.Errorf("Expected 2 portfolios, got %d", len(response))
		}
	})
}

func TestPortfolioHandler_GetPortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockBrokerClient())
	handler := handlers.NewPortfolioHandler(svc)

	t.Run("returns the portfolio by ID", func(t *testing.T) {
		portfolio := testutil.NewPortfolio().WithName("Main").Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+portfolio.ID,
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.GetPortfolio(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response handlers.PortfolioResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.ID != portfolio.ID || response.Name != "Main" {
			t.Errorf("Expected portfolio in response, got %+v", response)
		}
	})

	t.Run("returns 404 for unknown ID", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(
			http.MethodGet,
			"/api/portfolio/"+testutil.MakeID(),
			map[string]string{"uuid": testutil.MakeID()},
		)
		w := httptest.NewRecorder()

		handler.GetPortfolio(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_CreatePortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockBrokerClient())
	handler := handlers.NewPortfolioHandler(svc)

	t.Run("creates a portfolio with default settings", func(t *testing.T) {
		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/portfolio/",
			request.CreatePortfolioRequest{Name: "Main", Account: "2000123456"}, nil)
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusCreated {
			t.Errorf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response handlers.PortfolioResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.ID == "" || response.Name != "Main" {
			t.Errorf("Expected created portfolio, got %+v", response)
		}
		if response.Settings.PriceChangeUnit != model.UnitPercent {
			t.Errorf("Expected default settings, got %+v", response.Settings)
		}
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPost, "/api/portfolio/",
			request.CreatePortfolioRequest{Account: "2000123456"}, nil)
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/portfolio/", nil)
		w := httptest.NewRecorder()

		handler.CreatePortfolio(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_DeletePortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockBrokerClient())
	handler := handlers.NewPortfolioHandler(svc)

	t.Run("deletes an existing portfolio", func(t *testing.T) {
		portfolio := testutil.NewPortfolio().Build(t, db)

		req := testutil.NewRequestWithURLParams(
			http.MethodDelete,
			"/api/portfolio/"+portfolio.ID,
			map[string]string{"uuid": portfolio.ID},
		)
		w := httptest.NewRecorder()

		handler.DeletePortfolio(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "portfolio", 0)
	})

	t.Run("returns 404 for unknown ID", func(t *testing.T) {
		req := testutil.NewRequestWithURLParams(
			http.MethodDelete,
			"/api/portfolio/"+testutil.MakeID(),
			map[string]string{"uuid": testutil.MakeID()},
		)
		w := httptest.NewRecorder()

		handler.DeletePortfolio(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestPortfolioHandler_UpdateSettings(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestPortfolioService(t, db, testutil.NewMockBrokerClient())
	handler := handlers.NewPortfolioHandler(svc)
	portfolio := testutil.NewPortfolio().Build(t, db)

	t.Run("replaces the display settings", func(t *testing.T) {
		body := request.UpdateSettingsRequest{
			PriceChangeUnit: model.UnitAbsolute,
			ExpectedUnit:    model.UnitPercent,
			Sorting:         request.SortingRequest{Field: model.SortByTicker, Ascending: true},
			Filter:          &request.FilterRequest{ShowNonZero: true},
		}
		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPut,
			"/api/portfolio/"+portfolio.ID+"/settings", body,
			map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.UpdateSettings(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response handlers.PortfolioResponse
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response.Settings.PriceChangeUnit != model.UnitAbsolute {
			t.Errorf("Expected updated unit, got %+v", response.Settings)
		}
		if response.Settings.Sorting.Field != model.SortByTicker {
			t.Errorf("Expected updated sorting, got %+v", response.Settings.Sorting)
		}
		if response.Settings.Filter == nil || !response.Settings.Filter.ShowNonZero {
			t.Errorf("Expected updated filter, got %+v", response.Settings.Filter)
		}
	})

	t.Run("rejects an unknown display unit", func(t *testing.T) {
		body := request.UpdateSettingsRequest{
			PriceChangeUnit: "Fraction",
			ExpectedUnit:    model.UnitAbsolute,
		}
		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPut,
			"/api/portfolio/"+portfolio.ID+"/settings", body,
			map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.UpdateSettings(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects an unknown sort field", func(t *testing.T) {
		body := request.UpdateSettingsRequest{
			PriceChangeUnit: model.UnitPercent,
			ExpectedUnit:    model.UnitAbsolute,
			Sorting:         request.SortingRequest{Field: "volatility"},
		}
		req := testutil.NewJSONRequestWithURLParams(t, http.MethodPut,
			"/api/portfolio/"+portfolio.ID+"/settings", body,
			map[string]string{"uuid": portfolio.ID})
		w := httptest.NewRecorder()

		handler.UpdateSettings(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
