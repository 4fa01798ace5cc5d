package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"gymid/internal/domain/entity"
	domainerrors "gymid/internal/domain/errors"
	"gymid/internal/domain/repository"
	"gymid/internal/domain/service"
	mockRepo "gymid/internal/mocks/repository"
	mockSvc "gymid/internal/mocks/service"
	"gymid/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service      usecase.AuthUsecase
	userRepo     *mockRepo.MockUserRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAuthService(userRepo, hasher, tokenService, logger)

	return authServiceFixtures{
		service:      service,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

func activeTestUser(email string) *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "stored_hash",
		Role:         entity.RoleAthlete,
		IsActive:     true,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeTestUser("test@example.com")
	input := &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "Password123!",
	}

	fx.userRepo.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
	fx.hasher.EXPECT().Check(input.Password, user.PasswordHash).Return(true)
	fx.tokenService.EXPECT().Issue(user.Email).Return("signed_access_token", nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, "signed_access_token", output.AccessToken)
	assert.Equal(t, "bearer", output.TokenType)
}

func TestAuthService_Login_NormalizesEmail(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeTestUser("test@example.com")
	input := &usecase.LoginInput{
		Email:    "  Test@Example.COM ",
		Password: "Password123!",
	}

	// The lookup uses the canonical lowercase form.
	fx.userRepo.EXPECT().FindByEmail(ctx, "test@example.com").Return(user, nil)
	fx.hasher.EXPECT().Check(input.Password, user.PasswordHash).Return(true)
	fx.tokenService.EXPECT().Issue(user.Email).Return("signed_access_token", nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "signed_access_token", output.AccessToken)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "Password123!",
	}

	fx.userRepo.EXPECT().
		FindByEmail(ctx, input.Email).
		Return(nil, repository.ErrUserNotFound)

	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeTestUser("test@example.com")
	input := &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "wrong",
	}

	fx.userRepo.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
	fx.hasher.EXPECT().Check(input.Password, user.PasswordHash).Return(false)

	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeTestUser("test@example.com")
	user.IsActive = false
	input := &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "Password123!",
	}

	fx.userRepo.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
	fx.hasher.EXPECT().Check(input.Password, user.PasswordHash).Return(true)

	// A disabled account fails with the same error as bad credentials so the
	// endpoint does not reveal account state.
	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_Login_TokenIssueFailure(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeTestUser("test@example.com")
	input := &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "Password123!",
	}

	fx.userRepo.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)
	fx.hasher.EXPECT().Check(input.Password, user.PasswordHash).Return(true)
	fx.tokenService.EXPECT().Issue(user.Email).Return("", errors.New("signing failure"))

	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.False(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAuthService_ResolveSubject_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeTestUser("test@example.com")
	claims := &service.TokenClaims{
		Subject:   user.Email,
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	fx.tokenService.EXPECT().Validate("valid_token").Return(claims, nil)
	fx.userRepo.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)

	resolved, err := fx.service.ResolveSubject(ctx, "valid_token")

	require.NoError(t, err)
	assert.Equal(t, user, resolved)
}

func TestAuthService_ResolveSubject_InvalidToken(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()

	fx.tokenService.EXPECT().Validate("bad_token").Return(nil, service.ErrTokenInvalid)

	resolved, err := fx.service.ResolveSubject(ctx, "bad_token")

	assert.Error(t, err)
	assert.Nil(t, resolved)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthenticated))
}

func TestAuthService_ResolveSubject_ExpiredToken(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()

	fx.tokenService.EXPECT().Validate("expired_token").Return(nil, service.ErrTokenExpired)

	resolved, err := fx.service.ResolveSubject(ctx, "expired_token")

	assert.Error(t, err)
	assert.Nil(t, resolved)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthenticated))
}

func TestAuthService_ResolveSubject_UnknownSubject(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	claims := &service.TokenClaims{Subject: "ghost@example.com"}

	fx.tokenService.EXPECT().Validate("orphan_token").Return(claims, nil)
	fx.userRepo.EXPECT().
		FindByEmail(ctx, claims.Subject).
		Return(nil, repository.ErrUserNotFound)

	resolved, err := fx.service.ResolveSubject(ctx, "orphan_token")

	assert.Error(t, err)
	assert.Nil(t, resolved)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthenticated))
}

func TestAuthService_ResolveSubject_InactiveUser(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	user := activeTestUser("test@example.com")
	user.IsActive = false
	claims := &service.TokenClaims{Subject: user.Email}

	// A token issued before the account was disabled must stop working.
	fx.tokenService.EXPECT().Validate("stale_token").Return(claims, nil)
	fx.userRepo.EXPECT().FindByEmail(ctx, user.Email).Return(user, nil)

	resolved, err := fx.service.ResolveSubject(ctx, "stale_token")

	assert.Error(t, err)
	assert.Nil(t, resolved)
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthenticated))
}
