package model

import (
	"sort"
	"strings"
)

// Sortable position fields accepted by Sorting.Field.
const (
	SortByTicker    = "ticker"
	SortByCount     = "count"
	SortByAverage   = "average"
	SortByLastPrice = "lastPrice"
	SortByCost      = "cost"
	SortByExpected  = "expected"
	SortByFixed     = "fixed"
	SortByChange    = "change"
)

// SortFields lists every accepted value of Sorting.Field.
var SortFields = []string{
	SortByTicker, SortByCount, SortByAverage, SortByLastPrice,
	SortByCost, SortByExpected, SortByFixed, SortByChange,
}

// IsSortField reports whether a value is accepted by Sorting.Field. The empty
// string selects the default ordering and is accepted.
func IsSortField(field string) bool {
	if field == "" {
		return true
	}
	for _, f := range SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// SortPositions orders positions in place for display according to the
// portfolio settings. The sort is stable, so equal positions keep their
// relative order.
func SortPositions(positions []Position, settings Settings) {
	cmp := Comparator(settings)
	sort.SliceStable(positions, func(i, j int) bool {
		return cmp(positions[i], positions[j]) < 0
	})
}

// Comparator builds the position comparison function selected by the
// settings. The ascending toggle inverts the whole chain, with one
// exception: positions whose sort field is undefined always come after
// positions with a defined value, regardless of direction.
func Comparator(settings Settings) func(a, b Position) int {
	ascending := settings.Sorting.Ascending

	withAsc := func(cmp func(a, b Position) int) func(a, b Position) int {
		if ascending {
			return cmp
		}
		return func(a, b Position) int { return cmp(b, a) }
	}

	var selector func(p Position) (float64, bool)

	switch settings.Sorting.Field {
	case SortByTicker:
		return withAsc(func(a, b Position) int {
			return strings.Compare(a.Ticker, b.Ticker)
		})
	case SortByCount:
		selector = func(p Position) (float64, bool) { return p.Count, true }
	case SortByAverage:
		selector = defined(func(p Position) *float64 { return p.Average })
	case SortByLastPrice:
		selector = defined(func(p Position) *float64 { return p.LastPrice })
	case SortByCost:
		selector = func(p Position) (float64, bool) { return p.Cost() }
	case SortByExpected:
		selector = nonZero(defined(func(p Position) *float64 { return p.Expected }))
	case SortByFixed:
		selector = nonZero(defined(func(p Position) *float64 { return p.FixedPnL }))
	case SortByChange:
		selector = changeSelector(settings.PriceChangeUnit)
	default:
		return withAsc(defaultComparator)
	}

	return func(p1, p2 Position) int {
		a, aOK := selector(p1)
		b, bOK := selector(p2)
		// Undefined sorts last in either direction.
		switch {
		case !aOK && bOK:
			return 1
		case aOK && !bOK:
			return -1
		case !aOK && !bOK:
			return 0
		}
		if !ascending {
			a, b = b, a
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
}

// defaultComparator orders by instrument type, then non-zero before zero
// quantity, then ticker.
func defaultComparator(a, b Position) int {
	if byType := strings.Compare(a.InstrumentType, b.InstrumentType); byType != 0 {
		return byType
	}
	if a.Count == 0 && b.Count != 0 {
		return 1
	}
	if b.Count == 0 && a.Count != 0 {
		return -1
	}
	return strings.Compare(a.Ticker, b.Ticker)
}

func defined(field func(p Position) *float64) func(p Position) (float64, bool) {
	return func(p Position) (float64, bool) {
		v := field(p)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

// nonZero treats a zero value as undefined, pushing flat profit/loss rows to
// the end of the list.
func nonZero(selector func(p Position) (float64, bool)) func(p Position) (float64, bool) {
	return func(p Position) (float64, bool) {
		v, ok := selector(p)
		if !ok || v == 0 {
			return 0, false
		}
		return v, true
	}
}

func changeSelector(unit string) func(p Position) (float64, bool) {
	return func(p Position) (float64, bool) {
		if p.PreviousDayPrice == nil || p.LastPrice == nil {
			return 0, false
		}
		var change float64
		if unit == UnitPercent {
			change = PriceChangePercent(*p.PreviousDayPrice, *p.LastPrice)
		} else {
			change = PriceChange(*p.PreviousDayPrice, *p.LastPrice)
		}
		if change == 0 {
			return 0, false
		}
		return change, true
	}
}
