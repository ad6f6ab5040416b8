package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
type PortfolioRepository struct {
	db *sql.DB
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// GetAll retrieves every portfolio, ordered by name.
func (r *PortfolioRepository) GetAll() ([]model.Portfolio, error) {
	rows, err := r.db.Query(`SELECT id, name, account, settings FROM portfolio ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		p, err := scanPortfolio(rows.Scan)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

// GetOne retrieves a single portfolio by ID.
func (r *PortfolioRepository) GetOne(id string) (model.Portfolio, error) {
	row := r.db.QueryRow(`SELECT id, name, account, settings FROM portfolio WHERE id = ?`, id)
	p, err := scanPortfolio(row.Scan)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, err
	}
	return p, nil
}

// Put inserts or replaces a portfolio.
func (r *PortfolioRepository) Put(p model.Portfolio) error {
	settings, err := json.Marshal(p.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio settings: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO portfolio (id, name, account, settings)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			account = excluded.account,
			settings = excluded.settings
	`, p.ID, p.Name, p.Account, string(settings))
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio: %w", err)
	}
	return nil
}

// DeleteOne removes a portfolio and, via foreign keys, its positions and fills.
func (r *PortfolioRepository) DeleteOne(id string) error {
	result, err := r.db.Exec(`DELETE FROM portfolio WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete portfolio: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

func scanPortfolio(scan func(dest ...any) error) (model.Portfolio, error) {
	var p model.Portfolio
	var settingsStr string

	if err := scan(&p.ID, &p.Name, &p.Account, &settingsStr); err != nil {
		if err == sql.ErrNoRows {
			return model.Portfolio{}, err
		}
		return model.Portfolio{}, fmt.Errorf("failed to scan portfolio table results: %w", err)
	}

	if settingsStr != "" && settingsStr != "{}" {
		if err := json.Unmarshal([]byte(settingsStr), &p.Settings); err != nil {
			return model.Portfolio{}, fmt.Errorf("failed to unmarshal portfolio settings: %w", err)
		}
	} else {
		p.Settings = model.DefaultSettings()
	}

	return p, nil
}
