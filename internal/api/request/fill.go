package request

import "time"

// UpdateFillRequest represents the request body for a manual fill correction
type UpdateFillRequest struct {
	Price            float64    `json:"price"`
	Quantity         float64    `json:"quantity"`
	QuantityExecuted float64    `json:"quantityExecuted"`
	Payment          float64    `json:"payment"`
	Commission       float64    `json:"commission"`
	Date             *time.Time `json:"date,omitempty"`
}
