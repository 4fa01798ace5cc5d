// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gymid/config"
	"gymid/internal/domain/service"
)

// bcryptSHA256Prefix marks hashes produced by the primary scheme: bcrypt over
// a base64-encoded SHA-256 digest of the password. The pre-hash lifts
// bcrypt's 72-byte input limit.
const bcryptSHA256Prefix = "{bcrypt-sha256}"

// passwordHasher is a concrete implementation of the PasswordHasher interface.
// New hashes always use the primary scheme; Check additionally accepts legacy
// plain-bcrypt hashes so accounts created before the scheme change keep working.
type passwordHasher struct {
	cost int
}

// NewPasswordHasher is the constructor for passwordHasher.
// It returns the implementation as a service.PasswordHasher interface.
func NewPasswordHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost >= bcrypt.MinCost && cfg.Auth.BcryptCost <= bcrypt.MaxCost {
		cost = cfg.Auth.BcryptCost
	}

	return &passwordHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password.
// bcrypt selects a fresh random salt internally, so hashing the same
// password twice yields different strings.
func (h *passwordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(prehash(password), h.cost)
	if err != nil {
		return "", err
	}

	return bcryptSHA256Prefix + string(bytes), nil
}

// Check compares a plaintext password with a stored hash. Comparison is
// delegated to bcrypt, which is constant-time in the digest. Unknown or
// malformed hash formats report a mismatch rather than an error so the
// caller never learns why verification failed.
func (h *passwordHasher) Check(password, hash string) bool {
	if rest, ok := strings.CutPrefix(hash, bcryptSHA256Prefix); ok {
		return bcrypt.CompareHashAndPassword([]byte(rest), prehash(password)) == nil
	}

	// Legacy scheme: plain bcrypt hashes from before the pre-hash change.
	if strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	}

	return false
}

func prehash(password string) []byte {
	digest := sha256.Sum256([]byte(password))
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(digest)))
	base64.StdEncoding.Encode(encoded, digest[:])

	return encoded
}
