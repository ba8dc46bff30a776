package auth

// Role of a resolved request principal.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// Actor is the resolved request principal. Credentials are parsed once at
// the HTTP boundary; the engine only ever sees this value.
type Actor struct {
	Role Role
	ID   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsAgent() bool {
	return a.Role == RoleAgent
}
