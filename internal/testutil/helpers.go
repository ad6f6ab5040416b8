package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/repository"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/service"
)

// NewTestReconciler creates a Reconciler over the test database and the given
// broker client.
func NewTestReconciler(t *testing.T, db *sql.DB, client broker.Client) *service.Reconciler {
	t.Helper()

	repos := repository.NewRegistry(db)
	return service.NewReconciler(
		client,
		repos.Fills,
		repos.Operations,
		repos.Positions,
		nil,
	)
}

// NewTestPortfolioService creates a PortfolioService over the test database
// and the given broker client.
func NewTestPortfolioService(t *testing.T, db *sql.DB, client broker.Client) *service.PortfolioService {
	t.Helper()

	repos := repository.NewRegistry(db)
	reconciler := NewTestReconciler(t, db, client)
	market := service.NewMarketService(client)

	return service.NewPortfolioService(
		client,
		repos.Portfolios,
		repos.Positions,
		repos.Fills,
		reconciler,
		market,
	)
}

// NewTestSystemService creates a SystemService over the test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
func MakeID() string {
	return uuid.New().String()
}

// MakeFIGI generates a FIGI-shaped identifier for testing.
//
// Example usage:
//
//	figi := testutil.MakeFIGI()
//	// Returns: "BBG00A1B2C3D"
func MakeFIGI() string {
	return "BBG" + randomAlphanumeric(9)
}

// MakeTicker generates a unique ticker symbol for testing.
func MakeTicker(base string) string {
	if base == "" {
		base = "TST"
	}
	return base + randomAlphanumeric(3)
}

// MakePortfolioName generates a unique portfolio name for testing.
func MakePortfolioName(base string) string {
	if base == "" {
		base = "Portfolio"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
