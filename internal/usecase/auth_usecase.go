package usecase

import (
	"context"

	"gymid/internal/domain/entity"
)

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput returns the issued bearer token after a successful login.
type LoginOutput struct {
	AccessToken string
	TokenType   string
}

// AuthUsecase defines the authentication operations: verifying credentials,
// issuing tokens and resolving a presented token back to a user.
type AuthUsecase interface {
	// Login verifies the credentials and issues an access token. Every
	// failure mode (unknown email, wrong password, inactive account)
	// surfaces as the same invalid-credentials error.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// ResolveSubject validates a presented token and resolves its subject
	// claim to an active user. Every failure mode surfaces as the same
	// generic unauthenticated error.
	ResolveSubject(ctx context.Context, tokenString string) (*entity.User, error)
}
