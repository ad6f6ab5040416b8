package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// respondServiceError maps a service error to an HTTP status and sends a
// structured error body. Unrecognized errors become 500.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrPortfolioNotFound),
		errors.Is(err, apperrors.ErrPositionNotFound),
		errors.Is(err, apperrors.ErrFillNotFound),
		errors.Is(err, apperrors.ErrInstrumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrPositionNotFlat):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidSortField),
		errors.Is(err, apperrors.ErrZeroExecutedQuantity),
		errors.Is(err, apperrors.ErrInvalidUUID),
		errors.Is(err, apperrors.ErrEmptyID):
		status = http.StatusBadRequest
	}

	errorResponse := map[string]string{
		"error":  message,
		"detail": err.Error(),
	}
	respondJSON(w, status, errorResponse)
}
