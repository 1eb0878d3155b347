package domain

// Role is the access level of a user within an organization.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleClient    Role = "client"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDeveloper, RoleClient:
		return true
	}
	return false
}

// Invitable reports whether the role may be granted through an invitation.
// Admin accounts are never created by invitation.
func (r Role) Invitable() bool {
	return r == RoleDeveloper || r == RoleClient
}
