package accounting

import (
	"testing"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

func fillAt(id string, date time.Time, trades ...model.TradeExecution) model.Fill {
	return model.Fill{ID: id, Date: date, Trades: trades}
}

func TestSortChronological(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
	}

	t.Run("Orders by placement date without trades", func(t *testing.T) {
		fills := []model.Fill{
			fillAt("b", day(2)),
			fillAt("a", day(1)),
			fillAt("c", day(3)),
		}

		SortChronological(fills)

		for i, want := range []string{"a", "b", "c"} {
			if fills[i].ID != want {
				t.Errorf("Position %d: expected %s, got %s", i, want, fills[i].ID)
			}
		}
	})

	t.Run("Last trade execution overrides the placement date", func(t *testing.T) {
		// Order "late" was placed first but executed last.
		late := fillAt("late", day(1), model.TradeExecution{TradeID: "t1", Date: day(5)})
		early := fillAt("early", day(2))

		fills := []model.Fill{late, early}
		SortChronological(fills)

		if fills[0].ID != "early" || fills[1].ID != "late" {
			t.Errorf("Expected [early late], got [%s %s]", fills[0].ID, fills[1].ID)
		}
	})

	t.Run("Last of several trades decides", func(t *testing.T) {
		multi := fillAt("multi", day(1),
			model.TradeExecution{TradeID: "t1", Date: day(2)},
			model.TradeExecution{TradeID: "t2", Date: day(6)},
		)
		single := fillAt("single", day(4))

		fills := []model.Fill{multi, single}
		SortChronological(fills)

		if fills[0].ID != "single" {
			t.Errorf("Expected single first, got %s", fills[0].ID)
		}
	})

	t.Run("Equal times keep their relative order", func(t *testing.T) {
		fills := []model.Fill{
			fillAt("first", day(1)),
			fillAt("second", day(1)),
			fillAt("third", day(1)),
		}

		SortChronological(fills)

		for i, want := range []string{"first", "second", "third"} {
			if fills[i].ID != want {
				t.Errorf("Position %d: expected %s, got %s", i, want, fills[i].ID)
			}
		}
	})
}
