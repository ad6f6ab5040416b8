package repository_test

import (
	"errors"
	"testing"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/repository"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/testutil"
)

func TestPortfolioRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPortfolioRepository(db)

	t.Run("GetAll returns empty slice on fresh database", func(t *testing.T) {
		portfolios, err := repo.GetAll()
		if err != nil {
			t.Fatalf("GetAll() returned unexpected error: %v", err)
		}
		if len(portfolios) != 0 {
			t.Errorf("Expected no portfolios, got %d", len(portfolios))
		}
	})

	t.Run("Put and GetOne round-trip including settings", func(t *testing.T) {
		settings := model.DefaultSettings()
		settings.Sorting = model.Sorting{Field: model.SortByTicker, Ascending: false}
		settings.Filter = &model.Filter{ShowNonZero: true}

		portfolio := model.Portfolio{
			ID:       testutil.MakeID(),
			Name:     "Main",
			Account:  "2000123456",
			Settings: settings,
		}

		if err := repo.Put(portfolio); err != nil {
			t.Fatalf("Put() returned unexpected error: %v", err)
		}

		stored, err := repo.GetOne(portfolio.ID)
		if err != nil {
			t.Fatalf("GetOne() returned unexpected error: %v", err)
		}
		if stored.Name != "Main" || stored.Account != "2000123456" {
			t.Errorf("Expected portfolio round-trip, got %+v", stored)
		}
		if stored.Settings.Sorting.Field != model.SortByTicker || stored.Settings.Sorting.Ascending {
			t.Errorf("Expected sorting round-trip, got %+v", stored.Settings.Sorting)
		}
		if stored.Settings.Filter == nil || !stored.Settings.Filter.ShowNonZero {
			t.Errorf("Expected filter round-trip, got %+v", stored.Settings.Filter)
		}
	})

	t.Run("Put updates an existing portfolio", func(t *testing.T) {
		portfolio := testutil.NewPortfolio().WithName("Before").Build(t, db)

		portfolio.Name = "After"
		if err := repo.Put(portfolio); err != nil {
			t.Fatalf("Put() returned unexpected error: %v", err)
		}

		stored, err := repo.GetOne(portfolio.ID)
		if err != nil {
			t.Fatalf("GetOne() returned unexpected error: %v", err)
		}
		if stored.Name != "After" {
			t.Errorf("Expected updated name, got %q", stored.Name)
		}
	})

	t.Run("GetOne unknown ID", func(t *testing.T) {
		_, err := repo.GetOne(testutil.MakeID())
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})

	t.Run("DeleteOne removes the portfolio and cascades", func(t *testing.T) {
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewPosition(portfolio.ID).Build(t, db)
		testutil.NewFill(portfolio.ID, "BBG000TEST01").Build(t, db)

		if err := repo.DeleteOne(portfolio.ID); err != nil {
			t.Fatalf("DeleteOne() returned unexpected error: %v", err)
		}

		if _, err := repo.GetOne(portfolio.ID); !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected portfolio gone, got %v", err)
		}

		// Foreign keys cascade to positions and fills.
		positions, err := repository.NewPositionRepository(db).GetAllByPortfolio(portfolio.ID)
		if err != nil {
			t.Fatalf("GetAllByPortfolio() returned unexpected error: %v", err)
		}
		if len(positions) != 0 {
			t.Errorf("Expected positions cascaded, got %d", len(positions))
		}
	})

	t.Run("DeleteOne unknown ID", func(t *testing.T) {
		err := repo.DeleteOne(testutil.MakeID())
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}
