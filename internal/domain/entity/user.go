// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the single identity record of the system: one account per person,
// used both as the login principal and as the subject of issued tokens.
type User struct {
	ID           uuid.UUID // The unique identifier, assigned at creation and immutable afterwards.
	Email        string    // Unique login identifier; stored lowercased.
	FullName     string    // Optional display name.
	PasswordHash string    // Opaque output of the password hasher; never the plaintext.
	Role         Role      // The account's role label; defaults to RoleAthlete.
	IsActive     bool      // Inactive accounts are rejected at login and at token resolution.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this account.
}
