package accounting

import (
	"sort"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

// SortChronological orders fills by effective execution time: the timestamp
// of the last trade execution within the fill when trades are recorded,
// otherwise the order placement date. Ties keep their original relative order.
//
// The reduction is a strict left-to-right fold, so processing fills out of
// order silently produces a wrong average cost and wrong realized P&L
// attribution. Every caller of ReduceAll must sort first.
func SortChronological(fills []model.Fill) {
	sort.SliceStable(fills, func(i, j int) bool {
		return fills[i].EffectiveTime().Before(fills[j].EffectiveTime())
	})
}
