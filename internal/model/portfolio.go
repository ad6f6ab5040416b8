package model

import "strings"

// Portfolio groups positions and fills under one brokerage account.
type Portfolio struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Account  string   `json:"account"`
	Settings Settings `json:"settings"`
}

// Display units for the day-change and expected-profit columns.
const (
	UnitPercent  = "Percents"
	UnitAbsolute = "Absolute"
)

// Settings holds per-portfolio display preferences. They only affect how
// positions are sorted and filtered for presentation, never the accounting.
type Settings struct {
	PriceChangeUnit string  `json:"priceChangeUnit"`
	ExpectedUnit    string  `json:"expectedUnit"`
	Filter          *Filter `json:"filter,omitempty"`
	Sorting         Sorting `json:"sorting"`
}

// DefaultSettings returns the settings a newly created portfolio starts with.
func DefaultSettings() Settings {
	return Settings{
		PriceChangeUnit: UnitPercent,
		ExpectedUnit:    UnitAbsolute,
		Sorting:         Sorting{Ascending: true},
	}
}

// Sorting selects the position comparator: the primary field and direction.
// An empty Field selects the default chain (instrument type, zero/non-zero
// quantity, ticker).
type Sorting struct {
	Field     string `json:"field,omitempty"`
	Ascending bool   `json:"ascending"`
}

// Filter restricts which positions are shown. A nil Filter passes everything.
type Filter struct {
	// Currencies maps a lower-case currency code to visibility. Codes absent
	// from the map stay visible.
	Currencies map[string]bool `json:"currencies,omitempty"`
	// ShowZero / ShowNonZero toggle positions by quantity.
	ShowZero    bool `json:"showZero"`
	ShowNonZero bool `json:"showNonZero"`
}

// Match reports whether the position passes the filter.
func (f *Filter) Match(p Position) bool {
	if f == nil {
		return true
	}
	if f.Currencies != nil {
		if visible, ok := f.Currencies[strings.ToLower(p.Currency)]; ok && !visible {
			return false
		}
	}
	if !f.ShowZero && p.Count == 0 {
		return false
	}
	if !f.ShowNonZero && p.Count != 0 {
		return false
	}
	return true
}
