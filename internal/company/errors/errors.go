package errors

import (
	"fmt"
	"strings"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")

	// Storage constraint failures. Callers distinguish them with errors.Is.
	ErrPrimaryKeyViolation = fmt.Errorf("primary key violation")
	ErrUniqueViolation     = fmt.Errorf("unique constraint violation")
	ErrForeignKeyViolation = fmt.Errorf("foreign key violation")
)

// FieldViolation describes a single rejected input field.
type FieldViolation struct {
	Field  string
	Reason string
}

// ValidationError is returned when input fails validation. It matches ErrInvalidInput.
type ValidationError struct {
	Violations []FieldViolation
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Violations))
	for _, fv := range v.Violations {
		parts = append(parts, fv.Field+": "+fv.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
