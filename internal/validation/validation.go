package validation

import (
	"fmt"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrInvalidUUID = fmt.Errorf("invalid UUID format")
	ErrEmptyValue  = fmt.Errorf("value cannot be empty")
)

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateNotEmpty checks that a required string field is present
func ValidateNotEmpty(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrEmptyValue, name)
	}
	return nil
}
