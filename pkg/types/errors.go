package types

import "fmt"

// ValidationError reports conflicting or missing parameters. It is fatal
// and never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid parameters: " + e.Message
	}
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AmbiguousTargetError means the requested node set cannot be mapped onto
// a single detected cluster
type AmbiguousTargetError struct {
	Requested []string
	Detected  []string
	Message   string
}

func (e *AmbiguousTargetError) Error() string {
	return fmt.Sprintf("%s (requested %v, detected %v)", e.Message, e.Requested, e.Detected)
}

// InternalConsistencyError signals a bug: a condition that must always hold did not
type InternalConsistencyError struct {
	Message string
}

func (e *InternalConsistencyError) Error() string {
	return "internal consistency error: " + e.Message
}
