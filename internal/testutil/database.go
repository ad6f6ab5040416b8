package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE portfolio (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			account VARCHAR(36) NOT NULL,
			settings TEXT NOT NULL DEFAULT '{}'
		);

		CREATE TABLE position (
			portfolio_id VARCHAR(36) NOT NULL,
			figi VARCHAR(12) NOT NULL,
			ticker VARCHAR(12) NOT NULL,
			name VARCHAR(200),
			isin VARCHAR(12),
			instrument_type VARCHAR(10) NOT NULL,
			currency VARCHAR(3),
			count FLOAT NOT NULL DEFAULT 0,
			average FLOAT,
			expected FLOAT,
			last_price FLOAT,
			last_price_updated DATETIME,
			previous_day_price FLOAT,
			calculated_count FLOAT,
			calculated_average FLOAT,
			calculated_expected FLOAT,
			fixed_pnl FLOAT,
			is_favourite BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (portfolio_id, figi),
			FOREIGN KEY (portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE
		);

		CREATE TABLE fill (
			id VARCHAR(36) NOT NULL,
			portfolio_id VARCHAR(36) NOT NULL,
			figi VARCHAR(12) NOT NULL,
			date DATETIME NOT NULL,
			operation_type VARCHAR(10),
			price FLOAT NOT NULL DEFAULT 0,
			quantity FLOAT NOT NULL DEFAULT 0,
			quantity_executed FLOAT NOT NULL DEFAULT 0,
			payment FLOAT NOT NULL DEFAULT 0,
			commission FLOAT NOT NULL DEFAULT 0,
			trades TEXT,
			average_price FLOAT,
			average_price_corrected FLOAT,
			current_quantity FLOAT,
			fixed_pnl FLOAT,
			manual BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (portfolio_id, id),
			FOREIGN KEY (portfolio_id) REFERENCES portfolio(id) ON DELETE CASCADE
		);

		CREATE INDEX idx_fill_portfolio_figi ON fill(portfolio_id, figi);

		CREATE TABLE operation (
			id VARCHAR(36) NOT NULL,
			account VARCHAR(36) NOT NULL,
			figi VARCHAR(12),
			status VARCHAR(10),
			operation_type VARCHAR(20),
			date DATETIME NOT NULL,
			currency VARCHAR(3),
			price FLOAT NOT NULL DEFAULT 0,
			quantity FLOAT NOT NULL DEFAULT 0,
			quantity_executed FLOAT NOT NULL DEFAULT 0,
			payment FLOAT NOT NULL DEFAULT 0,
			commission FLOAT NOT NULL DEFAULT 0,
			commission_currency VARCHAR(3),
			trades TEXT,
			PRIMARY KEY (account, id)
		);

		CREATE INDEX idx_operation_account_figi ON operation(account, figi);

		CREATE TABLE setting (
			key VARCHAR(50) NOT NULL PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"fill",
		"position",
		"portfolio",
		"operation",
		"setting",
	}

	for _, table := range tables {
		query := "DELETE FROM " + table
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := "SELECT COUNT(*) FROM " + table
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
