package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var recordValidator = validator.New()

// ValidateRecord checks the required fields of a record read from a store.
func ValidateRecord(kind string, record any) error {
	if err := recordValidator.Struct(record); err != nil {
		return fmt.Errorf("%s: %w: %v", kind, ErrMalformedRecord, err)
	}
	return nil
}
