package validation

import (
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/api/request"
)

func ValidateUpdateFill(req request.UpdateFillRequest) error {
	errors := make(map[string]string)

	if req.Price < 0 {
		errors["price"] = "price cannot be negative"
	}
	if req.QuantityExecuted == 0 {
		errors["quantityExecuted"] = "executed quantity cannot be zero"
	}
	if req.QuantityExecuted < 0 {
		errors["quantityExecuted"] = "executed quantity cannot be negative"
	}
	if req.Quantity < req.QuantityExecuted {
		errors["quantity"] = "quantity cannot be less than executed quantity"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
