// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleAthlete indicates a regular gym member. It is the default role.
	RoleAthlete Role = "athlete"
	// RoleCoach indicates a coach.
	RoleCoach Role = "coach"
	// RoleCoordinator indicates a coordinator.
	RoleCoordinator Role = "coordinator"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleAthlete, RoleCoach, RoleCoordinator:
		return true
	default:
		return false
	}
}

// RoleFromString converts a string to a Role, falling back to RoleAthlete
// for empty input. Invalid values are returned as-is so the caller can
// validate them with IsValid.
func RoleFromString(s string) Role {
	if s == "" {
		return RoleAthlete
	}

	return Role(s)
}
