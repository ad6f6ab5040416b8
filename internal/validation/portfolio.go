package validation

import (
	"strings"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/api/request"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

func ValidateCreatePortfolio(req request.CreatePortfolioRequest) error {
	errors := make(map[string]string)

	// Required field
	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	} else if len(req.Name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if strings.TrimSpace(req.Account) == "" {
		errors["account"] = "account is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func ValidateUpdateSettings(req request.UpdateSettingsRequest) error {
	errors := make(map[string]string)

	if req.PriceChangeUnit != model.UnitPercent && req.PriceChangeUnit != model.UnitAbsolute {
		errors["priceChangeUnit"] = "must be Percents or Absolute"
	}
	if req.ExpectedUnit != model.UnitPercent && req.ExpectedUnit != model.UnitAbsolute {
		errors["expectedUnit"] = "must be Percents or Absolute"
	}
	if !model.IsSortField(req.Sorting.Field) {
		errors["sorting.field"] = "unknown sort field"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
