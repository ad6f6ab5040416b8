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

// FillHandler handles fill-related HTTP requests
type FillHandler struct {
	portfolioService *service.PortfolioService
}

// NewFillHandler creates a new FillHandler
func NewFillHandler(portfolioService *service.PortfolioService) *FillHandler {
	return &FillHandler{
		portfolioService: portfolioService,
	}
}

// Fills reconciles an instrument identified by ticker and returns its fills
// in chronological order
func (h *FillHandler) Fills(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve portfolio", err)
		return
	}

	fills, err := h.portfolioService.LoadFills(r.Context(), portfolio, chi.URLParam(r, "ticker"))
	if err != nil {
		respondServiceError(w, "Failed to load fills", err)
		return
	}

	respondJSON(w, http.StatusOK, fills)
}

// UpdateFill applies a manual correction to one fill and recomputes the
// instrument's accounting
func (h *FillHandler) UpdateFill(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve portfolio", err)
		return
	}

	var req request.UpdateFillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateUpdateFill(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "validation failed",
			"detail": err.Error(),
		})
		return
	}

	patch := model.Fill{
		Price:            req.Price,
		Quantity:         req.Quantity,
		QuantityExecuted: req.QuantityExecuted,
		Payment:          req.Payment,
		Commission:       req.Commission,
	}
	if req.Date != nil {
		patch.Date = *req.Date
	}

	fill, err := h.portfolioService.UpdateFillManual(r.Context(), portfolio, chi.URLParam(r, "id"), patch)
	if err != nil {
		respondServiceError(w, "Failed to update fill", err)
		return
	}

	respondJSON(w, http.StatusOK, fill)
}
