package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Structural file problems abort the import before any row is examined.
var (
	// ErrEmptyFile is returned when the CSV content has no rows at all
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrMissingHeader is returned when the first row looks like data
	// instead of a header
	ErrMissingHeader = errors.New("CSV must have header row")

	// ErrInvalidEncoding is returned when the content is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")
)

// MissingColumnsError lists required columns absent from the header row
type MissingColumnsError struct {
	Columns []string
}

// Error implements the error interface
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Missing required columns: %s", strings.Join(e.Columns, ", "))
}

// NewMissingColumnsError creates a MissingColumnsError
func NewMissingColumnsError(columns []string) *MissingColumnsError {
	return &MissingColumnsError{Columns: columns}
}
