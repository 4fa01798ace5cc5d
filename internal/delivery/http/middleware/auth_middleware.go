package middleware

import (
	"strings"

	"gymid/internal/domain/entity"
	domainerrors "gymid/internal/domain/errors"
	"gymid/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CurrentUserKey is the echo context key under which the authenticated user
// is stored by Authenticate.
const CurrentUserKey = "currentUser"

// AuthMiddleware guards routes with bearer token authentication.
type AuthMiddleware struct {
	authUC usecase.AuthUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authUC usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{authUC: authUC}
}

// Authenticate extracts the Authorization bearer token, resolves it to an
// active user and stores the user on the request context. Every failure,
// including a missing or malformed header, collapses into the same generic
// unauthorized response.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return errors.Wrap(domainerrors.ErrUnauthenticated, "authorization header missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return errors.Wrap(domainerrors.ErrUnauthenticated, "not a bearer token")
		}

		user, err := m.authUC.ResolveSubject(c.Request().Context(), tokenString)
		if err != nil {
			return errors.WithStack(err)
		}

		c.Set(CurrentUserKey, user)

		return next(c)
	}
}

// CurrentUser returns the authenticated user previously stored by
// Authenticate, or nil when the route is not guarded.
func CurrentUser(c echo.Context) *entity.User {
	user, _ := c.Get(CurrentUserKey).(*entity.User)

	return user
}
