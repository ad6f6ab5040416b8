package repository

import "database/sql"

// Registry bundles every repository over one database connection. It is
// constructed once at startup and passed down explicitly instead of being
// cached in package-level state, so tests and future multi-database setups
// can hold independent instances.
type Registry struct {
	Portfolios *PortfolioRepository
	Positions  *PositionRepository
	Fills      *FillRepository
	Operations *OperationRepository
	Settings   *SettingsRepository
}

// NewRegistry creates all repositories for the given database connection.
func NewRegistry(db *sql.DB) *Registry {
	return &Registry{
		Portfolios: NewPortfolioRepository(db),
		Positions:  NewPositionRepository(db),
		Fills:      NewFillRepository(db),
		Operations: NewOperationRepository(db),
		Settings:   NewSettingsRepository(db),
	}
}
