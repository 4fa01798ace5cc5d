package impl

import (
	"context"
	"log/slog"

	"gymid/internal/domain/entity"
	domainerrors "gymid/internal/domain/errors"
	"gymid/internal/domain/repository"
	"gymid/internal/domain/service"
	"gymid/internal/usecase"

	"github.com/pkg/errors"
)

// tokenTypeBearer is the token_type value returned to clients.
const tokenTypeBearer = "bearer"

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher service.PasswordHasher,
	tokenService service.TokenService,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
	}
}

// Login verifies the credentials and issues a signed access token.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)
	srv.logger.Debug("Starting user login", "email", email)

	user, err := srv.authenticate(ctx, email, input.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Unknown email, wrong password and inactive account all land here.
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	accessToken, err := srv.tokenService.Issue(user.Email)
	if err != nil {
		srv.logger.Error("Failed to issue access token", "error", err, "userID", user.ID)

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	srv.logger.Debug("User logged in successfully", "userID", user.ID)

	return &usecase.LoginOutput{
		AccessToken: accessToken,
		TokenType:   tokenTypeBearer,
	}, nil
}

// ResolveSubject validates a presented token and resolves its subject to an
// active user record.
func (srv *authService) ResolveSubject(ctx context.Context, tokenString string) (*entity.User, error) {
	claims, err := srv.tokenService.Validate(tokenString)
	if err != nil {
		// Signature, expiry and claim failures are deliberately not
		// distinguished in the returned error.
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "token validation failed")
	}

	user, err := srv.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "unknown token subject")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !user.IsActive {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "inactive token subject")
	}

	return user, nil
}

// authenticate checks the credentials against the stored hash. It returns
// (nil, nil) for every verification failure so callers cannot distinguish an
// unknown email from a wrong password.
func (srv *authService) authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !srv.hasher.Check(password, user.PasswordHash) {
		return nil, nil
	}

	if !user.IsActive {
		return nil, nil
	}

	return user, nil
}
