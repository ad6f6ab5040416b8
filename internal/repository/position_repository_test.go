package repository_test

import (
	"errors"
	"testing"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/repository"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/testutil"
)

func TestPositionRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPositionRepository(db)
	portfolio := testutil.NewPortfolio().Build(t, db)

	t.Run("PutOne and GetOne round-trip optional fields", func(t *testing.T) {
		position := testutil.NewPosition(portfolio.ID).
			WithCount(10).
			WithAverage(100.5).
			WithLastPrice(110).
			WithPreviousDayPrice(108).
			WithFixedPnL(42).
			Build(t, db)

		stored, found, err := repo.GetOne(portfolio.ID, position.FIGI)
		if err != nil || !found {
			t.Fatalf("Expected position to exist, found=%v err=%v", found, err)
		}

		if stored.Count != 10 {
			t.Errorf("Expected count 10, got %v", stored.Count)
		}
		if stored.Average == nil || *stored.Average != 100.5 {
			t.Errorf("Expected average 100.5, got %v", stored.Average)
		}
		if stored.PreviousDayPrice == nil || *stored.PreviousDayPrice != 108 {
			t.Errorf("Expected previous day price 108, got %v", stored.PreviousDayPrice)
		}
		if stored.FixedPnL == nil || *stored.FixedPnL != 42 {
			t.Errorf("Expected fixed pnl 42, got %v", stored.FixedPnL)
		}
		// Fields never set stay nil.
		if stored.CalculatedAverage != nil {
			t.Errorf("Expected nil calculated average, got %v", *stored.CalculatedAverage)
		}
	})

	t.Run("PutMany upserts by portfolio and FIGI", func(t *testing.T) {
		position := testutil.NewPosition(portfolio.ID).WithCount(5).Build(t, db)

		position.Count = 7
		if err := repo.PutOne(portfolio.ID, position); err != nil {
			t.Fatalf("PutOne() returned unexpected error: %v", err)
		}

		stored, _, err := repo.GetOne(portfolio.ID, position.FIGI)
		if err != nil {
			t.Fatalf("GetOne() returned unexpected error: %v", err)
		}
		if stored.Count != 7 {
			t.Errorf("Expected updated count 7, got %v", stored.Count)
		}
	})

	t.Run("GetOne reports absence without error", func(t *testing.T) {
		_, found, err := repo.GetOne(portfolio.ID, "BBG000NONE00")
		if err != nil {
			t.Fatalf("GetOne() returned unexpected error: %v", err)
		}
		if found {
			t.Error("Expected position to be absent")
		}
	})

	t.Run("DeleteOne unknown FIGI", func(t *testing.T) {
		err := repo.DeleteOne(portfolio.ID, "BBG000NONE00")
		if !errors.Is(err, apperrors.ErrPositionNotFound) {
			t.Errorf("Expected ErrPositionNotFound, got %v", err)
		}
	})
}
