package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

// PositionRepository provides data access methods for the position table.
// Positions are keyed by (portfolio ID, FIGI).
type PositionRepository struct {
	db *sql.DB
}

// NewPositionRepository creates a new PositionRepository with the provided database connection.
func NewPositionRepository(db *sql.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

const positionColumns = `portfolio_id, figi, ticker, name, isin, instrument_type, currency,
	count, average, expected, last_price, last_price_updated, previous_day_price,
	calculated_count, calculated_average, calculated_expected, fixed_pnl, is_favourite`

// GetOne retrieves a single position. The boolean is false when the
// instrument is not tracked in the portfolio.
func (r *PositionRepository) GetOne(portfolioID, figi string) (model.Position, bool, error) {
	row := r.db.QueryRow(`SELECT `+positionColumns+` FROM position WHERE portfolio_id = ? AND figi = ?`,
		portfolioID, figi)

	p, err := scanPosition(row.Scan)
	if err == sql.ErrNoRows {
		return model.Position{}, false, nil
	}
	if err != nil {
		return model.Position{}, false, err
	}
	return p, true, nil
}

// GetAllByPortfolio retrieves every position of a portfolio.
func (r *PositionRepository) GetAllByPortfolio(portfolioID string) ([]model.Position, error) {
	rows, err := r.db.Query(`SELECT `+positionColumns+` FROM position WHERE portfolio_id = ?`, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query position table: %w", err)
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		p, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating position table: %w", err)
	}

	return positions, nil
}

// PutMany upserts a batch of positions inside one transaction.
func (r *PositionRepository) PutMany(portfolioID string, positions []model.Position) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.Prepare(`
		INSERT INTO position (` + positionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, figi) DO UPDATE SET
			ticker = excluded.ticker,
			name = excluded.name,
			isin = excluded.isin,
			instrument_type = excluded.instrument_type,
			currency = excluded.currency,
			count = excluded.count,
			average = excluded.average,
			expected = excluded.expected,
			last_price = excluded.last_price,
			last_price_updated = excluded.last_price_updated,
			previous_day_price = excluded.previous_day_price,
			calculated_count = excluded.calculated_count,
			calculated_average = excluded.calculated_average,
			calculated_expected = excluded.calculated_expected,
			fixed_pnl = excluded.fixed_pnl,
			is_favourite = excluded.is_favourite
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare position upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		var updated sql.NullString
		if !p.LastPriceUpdated.IsZero() {
			updated = sql.NullString{String: p.LastPriceUpdated.UTC().Format(time.RFC3339), Valid: true}
		}

		_, err = stmt.Exec(
			portfolioID,
			p.FIGI,
			p.Ticker,
			p.Name,
			p.ISIN,
			p.InstrumentType,
			p.Currency,
			p.Count,
			nullFloat(p.Average),
			nullFloat(p.Expected),
			nullFloat(p.LastPrice),
			updated,
			nullFloat(p.PreviousDayPrice),
			nullFloat(p.CalculatedCount),
			nullFloat(p.CalculatedAverage),
			nullFloat(p.CalculatedExpected),
			nullFloat(p.FixedPnL),
			p.IsFavourite,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert position %s: %w", p.FIGI, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit position upsert: %w", err)
	}
	return nil
}

// PutOne upserts a single position.
func (r *PositionRepository) PutOne(portfolioID string, p model.Position) error {
	return r.PutMany(portfolioID, []model.Position{p})
}

// DeleteOne removes a position from a portfolio.
func (r *PositionRepository) DeleteOne(portfolioID, figi string) error {
	result, err := r.db.Exec(`DELETE FROM position WHERE portfolio_id = ? AND figi = ?`, portfolioID, figi)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrPositionNotFound
	}
	return nil
}

func scanPosition(scan func(dest ...any) error) (model.Position, error) {
	var p model.Position
	var name, isin, currency sql.NullString
	var updatedStr sql.NullString
	var average, expected, lastPrice, previousDayPrice sql.NullFloat64
	var calculatedCount, calculatedAverage, calculatedExpected, fixedPnL sql.NullFloat64

	err := scan(
		&p.PortfolioID,
		&p.FIGI,
		&p.Ticker,
		&name,
		&isin,
		&p.InstrumentType,
		&currency,
		&p.Count,
		&average,
		&expected,
		&lastPrice,
		&updatedStr,
		&previousDayPrice,
		&calculatedCount,
		&calculatedAverage,
		&calculatedExpected,
		&fixedPnL,
		&p.IsFavourite,
	)
	if err == sql.ErrNoRows {
		return model.Position{}, err
	}
	if err != nil {
		return model.Position{}, fmt.Errorf("failed to scan position table results: %w", err)
	}

	p.Name = name.String
	p.ISIN = isin.String
	p.Currency = currency.String

	if updatedStr.Valid {
		p.LastPriceUpdated, err = ParseTime(updatedStr.String)
		if err != nil {
			return model.Position{}, fmt.Errorf("failed to parse date: %w", err)
		}
	}

	p.Average = floatPtr(average)
	p.Expected = floatPtr(expected)
	p.LastPrice = floatPtr(lastPrice)
	p.PreviousDayPrice = floatPtr(previousDayPrice)
	p.CalculatedCount = floatPtr(calculatedCount)
	p.CalculatedAverage = floatPtr(calculatedAverage)
	p.CalculatedExpected = floatPtr(calculatedExpected)
	p.FixedPnL = floatPtr(fixedPnL)

	return p, nil
}
