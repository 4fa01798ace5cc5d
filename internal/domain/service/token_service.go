package service

import (
	"errors"
	"time"
)

// Token validation failure kinds. The delivery layer collapses all of them
// into one generic unauthorized response so a caller cannot tell which
// check failed.
var (
	// ErrTokenInvalid covers tampered tokens, wrong keys and wrong
	// signing algorithms.
	ErrTokenInvalid = errors.New("token signature invalid")

	// ErrTokenExpired is returned when the exp claim is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed is returned for undecodable tokens or tokens
	// missing the subject claim.
	ErrTokenMalformed = errors.New("token malformed")
)

// TokenClaims carries the decoded claims of a validated access token.
type TokenClaims struct {
	Subject   string    // The principal the token was issued to (the user's email).
	IssuedAt  time.Time // When the token was signed.
	ExpiresAt time.Time // When the token stops being accepted.
}

// TokenService defines the interface for issuing and validating signed
// bearer tokens. This abstracts the token format from the use cases.
type TokenService interface {
	// Issue creates a signed, time-limited token for the given subject.
	Issue(subject string) (string, error)

	// Validate checks signature and expiry of a token string and returns
	// its claims. Failures are one of ErrTokenInvalid, ErrTokenExpired or
	// ErrTokenMalformed.
	Validate(tokenString string) (*TokenClaims, error)

	// AccessTokenDuration returns the configured token lifetime.
	AccessTokenDuration() time.Duration
}
