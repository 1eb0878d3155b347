package domain

import "time"

// User is an account within an organization. Accounts are created through
// invitation redemption and are deactivated rather than deleted.
type User struct {
	ID             string
	Email          string // unique per organization, stored lowercased
	Name           string
	PasswordHash   string // argon2id encoded, never serialized to clients
	Role           Role
	OrganizationID string

	// AssignedProjects lists project ids a client-role user may see.
	// Empty for admins and developers, who see the whole organization.
	AssignedProjects []string

	IsActive  bool
	CreatedAt time.Time
	LastLogin *time.Time
}

// AssignedTo reports whether the user is preassigned to the given project.
func (u User) AssignedTo(projectID string) bool {
	for _, id := range u.AssignedProjects {
		if id == projectID {
			return true
		}
	}
	return false
}
