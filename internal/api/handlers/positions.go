package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/service"
)

// PositionHandler handles position-related HTTP requests
type PositionHandler struct {
	portfolioService *service.PortfolioService
	reconciler       *service.Reconciler
}

// NewPositionHandler creates a new PositionHandler
func NewPositionHandler(portfolioService *service.PortfolioService, reconciler *service.Reconciler) *PositionHandler {
	return &PositionHandler{
		portfolioService: portfolioService,
		reconciler:       reconciler,
	}
}

// Positions refreshes a portfolio from the broker snapshot and returns its
// positions sorted and filtered by the portfolio settings
func (h *PositionHandler) Positions(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve portfolio", err)
		return
	}

	if _, err := h.portfolioService.LoadPositions(r.Context(), portfolio); err != nil {
		respondServiceError(w, "Failed to load positions", err)
		return
	}

	positions, err := h.portfolioService.SortedPositions(portfolio)
	if err != nil {
		respondServiceError(w, "Failed to sort positions", err)
		return
	}

	respondJSON(w, http.StatusOK, positions)
}

// ReconcileResponse summarizes a reconciliation pass over a portfolio
type ReconcileResponse struct {
	Status string `json:"status"`
}

// Reconcile recomputes every position of a portfolio from broker operations
func (h *PositionHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve portfolio", err)
		return
	}

	if err := h.reconciler.ReconcileAll(r.Context(), portfolio); err != nil {
		respondServiceError(w, "Failed to reconcile portfolio", err)
		return
	}

	respondJSON(w, http.StatusOK, ReconcileResponse{Status: "reconciled"})
}

// DeletePosition removes a flat position and its fill history
func (h *PositionHandler) DeletePosition(w http.ResponseWriter, r *http.Request) {
	portfolio, err := h.portfolioService.GetPortfolio(chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, "Failed to retrieve portfolio", err)
		return
	}

	if err := h.portfolioService.RemovePosition(portfolio, chi.URLParam(r, "figi")); err != nil {
		respondServiceError(w, "Failed to delete position", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
