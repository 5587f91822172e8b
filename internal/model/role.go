package model

// Role is the closed set of roles a user can hold.  The string values are
// exactly what is stored in the users.role column and what appears in the
// "role" claim of issued tokens.  Keeping the set closed lets the
// authorization gate check membership without trusting open strings.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.  Anything outside the
// set must never be persisted or trusted from a token.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
