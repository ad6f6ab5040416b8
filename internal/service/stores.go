package service

import (
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

// Persistence capabilities consumed by the services. Each store is scoped by
// a key (portfolio ID or broker account) passed on every call; the sqlite
// implementations live in the repository package.

// PortfolioStore persists portfolios.
type PortfolioStore interface {
	GetAll() ([]model.Portfolio, error)
	GetOne(id string) (model.Portfolio, error)
	Put(p model.Portfolio) error
	DeleteOne(id string) error
}

// PositionStore persists positions, keyed by portfolio and FIGI.
type PositionStore interface {
	GetOne(portfolioID, figi string) (model.Position, bool, error)
	GetAllByPortfolio(portfolioID string) ([]model.Position, error)
	PutMany(portfolioID string, positions []model.Position) error
	PutOne(portfolioID string, p model.Position) error
	DeleteOne(portfolioID, figi string) error
}

// FillStore persists fills, keyed by portfolio.
type FillStore interface {
	GetOne(portfolioID, id string) (model.Fill, bool, error)
	GetAllByFIGI(portfolioID, figi string) ([]model.Fill, error)
	PutMany(portfolioID string, fills []model.Fill) error
	DeleteOne(portfolioID, id string) error
}

// OperationStore archives raw broker operations, keyed by account.
type OperationStore interface {
	GetAllByFIGI(account, figi string) ([]broker.Operation, error)
	PutMany(account string, operations []broker.Operation) error
}
