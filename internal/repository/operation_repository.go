package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/broker"
)

// OperationRepository archives raw broker operation records per account.
// The archive preserves everything the broker returned, including operation
// types the accounting pipeline ignores, so reconciliation can always be
// replayed without refetching.
type OperationRepository struct {
	db *sql.DB
}

// NewOperationRepository creates a new OperationRepository with the provided database connection.
func NewOperationRepository(db *sql.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

const operationColumns = `id, account, figi, status, operation_type, date, currency,
	price, quantity, quantity_executed, payment, commission, commission_currency, trades`

// GetAllByFIGI retrieves the archived operations of one instrument for an account.
func (r *OperationRepository) GetAllByFIGI(account, figi string) ([]broker.Operation, error) {
	rows, err := r.db.Query(`SELECT `+operationColumns+` FROM operation WHERE account = ? AND figi = ?`,
		account, figi)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation table: %w", err)
	}
	defer rows.Close()

	operations := []broker.Operation{}
	for rows.Next() {
		op, err := scanOperation(rows.Scan)
		if err != nil {
			return nil, err
		}
		operations = append(operations, op)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation table: %w", err)
	}

	return operations, nil
}

// PutMany upserts a batch of raw operations for an account inside one transaction.
func (r *OperationRepository) PutMany(account string, operations []broker.Operation) error {
	if len(operations) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.Prepare(`
		INSERT INTO operation (` + operationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account, id) DO UPDATE SET
			figi = excluded.figi,
			status = excluded.status,
			operation_type = excluded.operation_type,
			date = excluded.date,
			currency = excluded.currency,
			price = excluded.price,
			quantity = excluded.quantity,
			quantity_executed = excluded.quantity_executed,
			payment = excluded.payment,
			commission = excluded.commission,
			commission_currency = excluded.commission_currency,
			trades = excluded.trades
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare operation upsert: %w", err)
	}
	defer stmt.Close()

	for _, op := range operations {
		var commission float64
		var commissionCurrency sql.NullString
		if op.Commission != nil {
			commission = op.Commission.Value
			commissionCurrency = sql.NullString{String: op.Commission.Currency, Valid: true}
		}

		var trades sql.NullString
		if len(op.Trades) > 0 {
			data, err := json.Marshal(op.Trades)
			if err != nil {
				return fmt.Errorf("failed to marshal trades for operation %s: %w", op.ID, err)
			}
			trades = sql.NullString{String: string(data), Valid: true}
		}

		_, err = stmt.Exec(
			op.ID,
			account,
			op.FIGI,
			op.Status,
			op.OperationType,
			op.Date.UTC().Format(time.RFC3339),
			op.Currency,
			op.Price,
			op.Quantity,
			op.QuantityExecuted,
			op.Payment,
			commission,
			commissionCurrency,
			trades,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert operation %s: %w", op.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit operation upsert: %w", err)
	}
	return nil
}

// DeleteOne removes an archived operation for an account.
func (r *OperationRepository) DeleteOne(account, id string) error {
	_, err := r.db.Exec(`DELETE FROM operation WHERE account = ? AND id = ?`, account, id)
	if err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	return nil
}

func scanOperation(scan func(dest ...any) error) (broker.Operation, error) {
	var op broker.Operation
	var account string
	var dateStr string
	var commission float64
	var commissionCurrency, trades sql.NullString

	err := scan(
		&op.ID,
		&account,
		&op.FIGI,
		&op.Status,
		&op.OperationType,
		&dateStr,
		&op.Currency,
		&op.Price,
		&op.Quantity,
		&op.QuantityExecuted,
		&op.Payment,
		&commission,
		&commissionCurrency,
		&trades,
	)
	if err == sql.ErrNoRows {
		return broker.Operation{}, err
	}
	if err != nil {
		return broker.Operation{}, fmt.Errorf("failed to scan operation table results: %w", err)
	}

	op.Date, err = ParseTime(dateStr)
	if err != nil || op.Date.IsZero() {
		return broker.Operation{}, fmt.Errorf("failed to parse date: %w", err)
	}

	if commissionCurrency.Valid || commission != 0 {
		op.Commission = &broker.MoneyAmount{Currency: commissionCurrency.String, Value: commission}
	}

	if trades.Valid {
		if err := json.Unmarshal([]byte(trades.String), &op.Trades); err != nil {
			return broker.Operation{}, fmt.Errorf("failed to unmarshal trades for operation %s: %w", op.ID, err)
		}
	}

	return op, nil
}
