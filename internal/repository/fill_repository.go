package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/model"
)

// FillRepository provides data access methods for the fill table. All queries
// are scoped by portfolio ID; a fill is only visible to the portfolio that
// owns it.
type FillRepository struct {
	db *sql.DB
}

// NewFillRepository creates a new FillRepository with the provided database connection.
func NewFillRepository(db *sql.DB) *FillRepository {
	return &FillRepository{db: db}
}

const fillColumns = `id, portfolio_id, figi, date, operation_type, price, quantity,
	quantity_executed, payment, commission, trades, average_price,
	average_price_corrected, current_quantity, fixed_pnl, manual`

// GetOne retrieves a single fill scoped to a portfolio. The boolean is false
// when no such fill exists.
func (r *FillRepository) GetOne(portfolioID, id string) (model.Fill, bool, error) {
	row := r.db.QueryRow(`SELECT `+fillColumns+` FROM fill WHERE portfolio_id = ? AND id = ?`,
		portfolioID, id)

	fill, err := scanFill(row.Scan)
	if err == sql.ErrNoRows {
		return model.Fill{}, false, nil
	}
	if err != nil {
		return model.Fill{}, false, err
	}
	return fill, true, nil
}

// GetAllByFIGI retrieves every fill of one instrument within a portfolio,
// in insertion order.
func (r *FillRepository) GetAllByFIGI(portfolioID, figi string) ([]model.Fill, error) {
	rows, err := r.db.Query(`SELECT `+fillColumns+` FROM fill WHERE portfolio_id = ? AND figi = ?`,
		portfolioID, figi)
	if err != nil {
		return nil, fmt.Errorf("failed to query fill table: %w", err)
	}
	defer rows.Close()

	fills := []model.Fill{}
	for rows.Next() {
		fill, err := scanFill(rows.Scan)
		if err != nil {
			return nil, err
		}
		fills = append(fills, fill)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fill table: %w", err)
	}

	return fills, nil
}

// PutMany upserts a batch of fills for a portfolio inside one transaction.
func (r *FillRepository) PutMany(portfolioID string, fills []model.Fill) error {
	if len(fills) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.Prepare(`
		INSERT INTO fill (` + fillColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, id) DO UPDATE SET
			figi = excluded.figi,
			date = excluded.date,
			operation_type = excluded.operation_type,
			price = excluded.price,
			quantity = excluded.quantity,
			quantity_executed = excluded.quantity_executed,
			payment = excluded.payment,
			commission = excluded.commission,
			trades = excluded.trades,
			average_price = excluded.average_price,
			average_price_corrected = excluded.average_price_corrected,
			current_quantity = excluded.current_quantity,
			fixed_pnl = excluded.fixed_pnl,
			manual = excluded.manual
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fill upsert: %w", err)
	}
	defer stmt.Close()

	for _, fill := range fills {
		var trades sql.NullString
		if len(fill.Trades) > 0 {
			data, err := json.Marshal(fill.Trades)
			if err != nil {
				return fmt.Errorf("failed to marshal trades for fill %s: %w", fill.ID, err)
			}
			trades = sql.NullString{String: string(data), Valid: true}
		}

		_, err = stmt.Exec(
			fill.ID,
			portfolioID,
			fill.FIGI,
			fill.Date.UTC().Format(time.RFC3339),
			fill.OperationType,
			fill.Price,
			fill.Quantity,
			fill.QuantityExecuted,
			fill.Payment,
			fill.Commission,
			trades,
			nullFloat(fill.AveragePrice),
			nullFloat(fill.AveragePriceCorrected),
			nullFloat(fill.CurrentQuantity),
			nullFloat(fill.FixedPnL),
			fill.Manual,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert fill %s: %w", fill.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fill upsert: %w", err)
	}
	return nil
}

// DeleteOne removes a fill scoped to a portfolio.
func (r *FillRepository) DeleteOne(portfolioID, id string) error {
	_, err := r.db.Exec(`DELETE FROM fill WHERE portfolio_id = ? AND id = ?`, portfolioID, id)
	if err != nil {
		return fmt.Errorf("failed to delete fill: %w", err)
	}
	return nil
}

func scanFill(scan func(dest ...any) error) (model.Fill, error) {
	var f model.Fill
	var dateStr string
	var trades sql.NullString
	var averagePrice, averagePriceCorrected, currentQuantity, fixedPnL sql.NullFloat64

	err := scan(
		&f.ID,
		&f.PortfolioID,
		&f.FIGI,
		&dateStr,
		&f.OperationType,
		&f.Price,
		&f.Quantity,
		&f.QuantityExecuted,
		&f.Payment,
		&f.Commission,
		&trades,
		&averagePrice,
		&averagePriceCorrected,
		&currentQuantity,
		&fixedPnL,
		&f.Manual,
	)
	if err == sql.ErrNoRows {
		return model.Fill{}, err
	}
	if err != nil {
		return model.Fill{}, fmt.Errorf("failed to scan fill table results: %w", err)
	}

	f.Date, err = ParseTime(dateStr)
	if err != nil || f.Date.IsZero() {
		return model.Fill{}, fmt.Errorf("failed to parse date: %w", err)
	}

	if trades.Valid {
		if err := json.Unmarshal([]byte(trades.String), &f.Trades); err != nil {
			return model.Fill{}, fmt.Errorf("failed to unmarshal trades for fill %s: %w", f.ID, err)
		}
	}

	f.AveragePrice = floatPtr(averagePrice)
	f.AveragePriceCorrected = floatPtr(averagePriceCorrected)
	f.CurrentQuantity = floatPtr(currentQuantity)
	f.FixedPnL = floatPtr(fixedPnL)

	return f, nil
}
