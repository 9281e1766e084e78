package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
)

// Password rules
const (
	MinPasswordLength = 8
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DefaultProjectDescription is applied when a project is created without one.
const DefaultProjectDescription = "no description"
