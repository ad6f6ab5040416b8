package request

// CreatePortfolioRequest represents the request body for creating a portfolio
type CreatePortfolioRequest struct {
	Name    string `json:"name"`
	Account string `json:"account"`
}

// UpdateSettingsRequest represents the request body for replacing a
// portfolio's display settings
type UpdateSettingsRequest struct {
	PriceChangeUnit string         `json:"priceChangeUnit"`
	ExpectedUnit    string         `json:"expectedUnit"`
	Filter          *FilterRequest `json:"filter,omitempty"`
	Sorting         SortingRequest `json:"sorting"`
}

type FilterRequest struct {
	Currencies  map[string]bool `json:"currencies,omitempty"`
	ShowZero    bool            `json:"showZero"`
	ShowNonZero bool            `json:"showNonZero"`
}

type SortingRequest struct {
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}
