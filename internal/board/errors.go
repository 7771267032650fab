package board

import "errors"

// ErrNotFound covers unknown collection selectors as well as missing items,
// comments and replies.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing required request field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing required field: " + e.Field
}

// missingField is shorthand used by the document operations.
func missingField(name string) error {
	return &ValidationError{Field: name}
}
