package domain

import "fmt"

// Role is the closed set of roles an identity can hold. Customer and Mechanic
// are tied to a matching profile record; Admin is an administrative role with
// no profile attached.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
	RoleMechanic Role = "Mechanic"
)

// AllRoles returns the set of valid roles.
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleCustomer, RoleMechanic}
}

// ParseRole converts a string into a Role, rejecting anything outside the
// closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCustomer, RoleMechanic:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// RoleStrings converts a role slice to its wire representation.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// RolesFromStrings converts stored role strings back into typed roles.
// Unknown values are rejected so a corrupted row never produces an open-ended
// role set.
func RolesFromStrings(values []string) ([]Role, error) {
	roles := make([]Role, len(values))
	for i, v := range values {
		role, err := ParseRole(v)
		if err != nil {
			return nil, err
		}
		roles[i] = role
	}
	return roles, nil
}
