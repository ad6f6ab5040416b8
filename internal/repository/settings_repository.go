package repository

import (
	"database/sql"
	"fmt"

	"github.com/psemenov/Broker-Portfolio-Tracker-Backend/internal/apperrors"
)

// Well-known setting keys.
const (
	SettingBrokerToken = "broker_token"
)

// SettingsRepository provides access to the key-value setting table. It holds
// small pieces of application state such as the fernet-encrypted broker API
// token.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository with the provided database connection.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves a setting value by key.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM setting WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		if key == SettingBrokerToken {
			return "", apperrors.ErrTokenNotFound
		}
		return "", fmt.Errorf("setting %s not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting table: %w", err)
	}
	return value, nil
}

// Set stores a setting value, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO setting (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", key, err)
	}
	return nil
}
