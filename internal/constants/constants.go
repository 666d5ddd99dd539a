package constants

// Context and session keys
const (
	ContextKeyActor    = "actor"
	SessionKeyUsername = "username"
	SessionKeyRoles    = "roles"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
