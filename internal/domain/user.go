package domain

import "time"

// User is an acting identity supplied by the authentication collaborator. The
// core only consumes the role capability checks; verifying who the actor is
// happens before its operations are invoked.
type User struct {
	ID        string
	Email     string
	Name      string
	Role      Role
	CreatedAt time.Time
	Active    bool
}

// Role represents a user's access level.
type Role string

const (
	// RoleAdmin manages the chart of accounts and the period lifecycle.
	RoleAdmin Role = "admin"

	// RoleBookkeeper posts journal entries but cannot manage periods.
	RoleBookkeeper Role = "bookkeeper"

	// RoleViewer reads balances and listings only.
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:      true,
	RoleBookkeeper: true,
	RoleViewer:     true,
}

// IsValid checks if the role is a valid role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanPostEntries checks if the role may record journal entries.
func (r Role) CanPostEntries() bool {
	return r == RoleAdmin || r == RoleBookkeeper
}

// CanManagePeriods checks if the role may create and close periods.
func (r Role) CanManagePeriods() bool {
	return r == RoleAdmin
}

// CanManageChart checks if the role may create and deactivate accounts.
func (r Role) CanManageChart() bool {
	return r == RoleAdmin
}

// CanViewAll checks if the role can read balances and listings.
func (r Role) CanViewAll() bool {
	return r.IsValid()
}
