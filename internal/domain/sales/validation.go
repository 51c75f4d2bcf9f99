package sales

import "github.com/google/uuid"

// ValidationResult accumulates human-readable validation failures. Business
// rule violations are reported as data rather than errors so callers can show
// all of them at once.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// NewValidationResult returns a passing result with no errors
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true, Errors: []string{}}
}

// AddError records a failure and marks the result invalid
func (r *ValidationResult) AddError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

// ValidateForConfirmation checks whether a draft order is complete enough to
// be confirmed. All failures are accumulated; the quantity rule is reported
// at most once regardless of how many lines violate it.
func ValidateForConfirmation(order *SalesOrder) *ValidationResult {
	result := NewValidationResult()

	if order.CustomerID == uuid.Nil {
		result.AddError("Customer is required")
	}
	if len(order.Lines) == 0 {
		result.AddError("At least one line is required")
	}
	for _, line := range order.Lines {
		if !line.QuantityOrdered.IsPositive() {
			result.AddError("Quantity must be greater than zero")
			break
		}
	}

	return result
}
