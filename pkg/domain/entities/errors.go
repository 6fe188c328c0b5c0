package entities

import "fmt"

// ValidationError rejects a single demand line before planning. The rest
// of the batch proceeds; the caller receives rejected lines alongside the
// planning result.
type ValidationError struct {
	Field string
	Msg   string
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ConsistencyError reports an internal invariant violation, such as a
// hierarchy whose cuts exceed the roll width. It always indicates a defect
// in the planning pipeline, never bad input, and fails the affected
// specification group rather than being silently corrected.
type ConsistencyError struct {
	Msg string
}

// NewConsistencyError creates a ConsistencyError
func NewConsistencyError(format string, args ...interface{}) *ConsistencyError {
	return &ConsistencyError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ConsistencyError) Error() string {
	return "internal consistency failure: " + e.Msg
}
