package services

// ValidationError is a business-rule violation tied to a request field.
// Handlers translate it into a 400 response with a field -> message mapping.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
