package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/service"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// PortfolioResponse represents one portfolio in API responses
type PortfolioResponse struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Account  string         `json:"account"`
	Settings model.Settings `json:"settings"`
}

func portfolioResponse(p model.Portfolio) PortfolioResponse {
	return PortfolioResponse{
		ID:       p.ID,
		Name:     p.Name,
		Account:  p.Account,
		Settings: p.Settings,
	}
}

// Portfolios lists every stored portfolio
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, r *http.Request) {
	portfolios, err := h.portfolioService.Portfolios()
	if err != nil {
		respondServiceError(w, "Failed to retrieve portfolios", err)
		return
	}

	response := make([]PortfolioResponse, len(portfolios))
	for i, p := range portfolios {
		response[i] = portfolioResponse(p)
	}

	respondJSON(w, http.StatusOK, response)
}

// GetPortfolio returns one portfolio by ID
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve portfolio", err)
		return
	}
	respondJSON(w, http.StatusOK, portfolioResponse(portfolio))
}

// CreatePortfolio stores a new portfolio
func (h *PortfolioHandler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateCreatePortfolio(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	portfolio, err := h.portfolioService.CreatePortfolio(req.Name, req.Account)
	if err != nil {
		respondServiceError(w, "Failed to create portfolio", err)
		return
	}

	respondJSON(w, http.StatusCreated, portfolioResponse(portfolio))
}

// DeletePortfolio removes a portfolio
func (h *PortfolioHandler) DeletePortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.portfolioService.DeletePortfolio(chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, "Failed to delete portfolio", err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// UpdateSettings replaces a portfolio's display settings
func (h *PortfolioHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateUpdateSettings(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	settings := model.Settings{
		PriceChangeUnit: req.PriceChangeUnit,
		ExpectedUnit:    req.ExpectedUnit,
		Sorting: model.Sorting{
			Field:     req.Sorting.Field,
			Ascending: req.Sorting.Ascending,
		},
	}
	if req.Filter != nil {
		settings.Filter = &model.Filter{
			Currencies:  req.Filter.Currencies,
			ShowZero:    req.Filter.ShowZero,
			ShowNonZero: req.Filter.ShowNonZero,
		}
	}

	portfolio, err := h.portfolioService.UpdateSettings(chi.URLParam(r, "uuid"), settings)
	if err != nil {
		respondServiceError(w, "Failed to update settings", err)
		return
	}

	respondJSON(w, http.StatusOK, portfolioResponse(portfolio))
}
