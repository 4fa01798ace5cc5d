package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleAthlete.IsValid())
	assert.True(t, RoleCoach.IsValid())
	assert.True(t, RoleCoordinator.IsValid())

	assert.False(t, Role("manager").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRoleFromString(t *testing.T) {
	// Empty input falls back to the default role
	assert.Equal(t, RoleAthlete, RoleFromString(""))

	assert.Equal(t, RoleCoach, RoleFromString("coach"))
	assert.Equal(t, RoleCoordinator, RoleFromString("coordinator"))

	// Unknown values pass through for the caller to reject
	unknown := RoleFromString("manager")
	assert.False(t, unknown.IsValid())
}
