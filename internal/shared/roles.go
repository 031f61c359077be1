package shared

import "fmt"

// Role is the closed set of account types known to the platform.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleLecturer Role = "Lecturer"
	RoleStudent  Role = "Student"
)

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleLecturer, RoleStudent:
		return Role(s), nil
	}
	return "", fmt.Errorf("shared: unknown role %q", s)
}

// Valid reports whether the role is one of the three known account types.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// In reports membership of the role in the given set. An empty set matches
// any role; several read endpoints run in that "any logged-in user" mode.
func (r Role) In(roles []Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
