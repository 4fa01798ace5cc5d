package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gymid/config"
	"gymid/internal/delivery/http/middleware"
	"gymid/internal/delivery/http/response"
	"gymid/internal/delivery/http/validator"
	"gymid/internal/domain/entity"
	"gymid/internal/domain/repository"
	"gymid/internal/infra/auth"
	"gymid/internal/usecase/impl"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryUserRepository is an in-memory UserRepository for handler tests.
type memoryUserRepository struct {
	usersByEmail map[string]*entity.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{usersByEmail: make(map[string]*entity.User)}
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	for _, user := range r.usersByEmail {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	user, ok := r.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *memoryUserRepository) Create(_ context.Context, user *entity.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.usersByEmail[user.Email] = user

	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *entity.User) error {
	r.usersByEmail[user.Email] = user

	return nil
}

func (r *memoryUserRepository) List(_ context.Context, offset, limit int) ([]*entity.User, error) {
	users := make([]*entity.User, 0, len(r.usersByEmail))
	for _, user := range r.usersByEmail {
		users = append(users, user)
	}
	if offset >= len(users) {
		return []*entity.User{}, nil
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}

	return users, nil
}

// memoryTransactionManager runs the unit of work directly against the shared
// repository; handler tests do not need real transaction semantics.
type memoryTransactionManager struct {
	repo *memoryUserRepository
}

func (m *memoryTransactionManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *memoryTransactionManager) NewUserRepository() repository.UserRepository {
	return m.repo
}

// testServer wires real hasher, token service and usecases behind an echo
// instance with the production middleware stack.
type testServer struct {
	echo *echo.Echo
	repo *memoryUserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		Auth: &config.AuthConfig{
			SecretKey:      "integration_test_secret_key",
			Algorithm:      "HS256",
			AccessTokenTTL: time.Hour,
			BcryptCost:     bcrypt.MinCost,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := newMemoryUserRepository()
	txManager := &memoryTransactionManager{repo: repo}
	hasher := auth.NewPasswordHasher(cfg)
	tokenService, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	userUC := impl.NewUserService(txManager, repo, hasher, logger)
	authUC := impl.NewAuthService(repo, hasher, tokenService, logger)

	userHandler := NewUserHandler(userUC, logger)
	authHandler := NewAuthHandler(authUC, logger)
	authMiddleware := middleware.NewAuthMiddleware(authUC)
	errorMiddleware := middleware.NewErrorMiddleware(logger)

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = errorMiddleware.HandleHTTPError

	api := e.Group("/api/v1")
	api.POST("/auth/token", authHandler.Token)
	api.POST("/users", userHandler.Register)
	api.GET("/users", userHandler.ListUsers)
	api.GET("/users/me", userHandler.Me, authMiddleware.Authenticate)
	api.GET("/users/:id", userHandler.GetUser)

	return &testServer{echo: e, repo: repo}
}

func (s *testServer) register(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) login(t *testing.T, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func (s *testServer) get(t *testing.T, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var envelope response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	return envelope
}

func TestAuthFlow_RegisterLoginMe(t *testing.T) {
	server := newTestServer(t)

	// Register a new account
	rec := server.register(t, `{"email":"Athlete@Example.com","full_name":"Test Athlete","password":"Password123!","role":"athlete"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	envelope := decodeResponse(t, rec)
	assert.True(t, envelope.Success)

	// The stored email is lowercased and the hash never leaves the server
	body := rec.Body.String()
	assert.Contains(t, body, `"athlete@example.com"`)
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "hash")

	// Login with the original mixed-case email
	rec = server.login(t, "Athlete@Example.com", "Password123!")
	assert.Equal(t, http.StatusOK, rec.Code)

	var loginData struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	envelope = decodeResponse(t, rec)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &loginData))
	assert.NotEmpty(t, loginData.AccessToken)
	assert.Equal(t, "bearer", loginData.TokenType)

	// Use the token to fetch the authenticated user
	rec = server.get(t, "/api/v1/users/me", loginData.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "athlete@example.com")
}

func TestAuthFlow_DuplicateRegistration(t *testing.T) {
	server := newTestServer(t)

	rec := server.register(t, `{"email":"taken@example.com","password":"Password123!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Same email again, different case
	rec = server.register(t, `{"email":"Taken@Example.com","password":"OtherPass456!"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	envelope := decodeResponse(t, rec)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "EMAIL_TAKEN", envelope.Error.Code)
}

func TestAuthFlow_RegisterValidation(t *testing.T) {
	server := newTestServer(t)

	// Password below the minimum length
	rec := server.register(t, `{"email":"short@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Not an email address
	rec = server.register(t, `{"email":"not-an-email","password":"Password123!"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown role
	rec = server.register(t, `{"email":"role@example.com","password":"Password123!","role":"manager"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthFlow_LoginFailuresAreIndistinguishable(t *testing.T) {
	server := newTestServer(t)

	rec := server.register(t, `{"email":"user@example.com","password":"Password123!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Unknown account and wrong password must produce the same response
	unknownRec := server.login(t, "nobody@example.com", "Password123!")
	wrongRec := server.login(t, "user@example.com", "WrongPassword!")

	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongRec.Code)
	assert.Equal(t, unknownRec.Body.String(), wrongRec.Body.String())
	assert.Equal(t, "Bearer", unknownRec.Header().Get(echo.HeaderWWWAuthenticate))
}

func TestAuthFlow_InactiveAccount(t *testing.T) {
	server := newTestServer(t)

	rec := server.register(t, `{"email":"disabled@example.com","password":"Password123!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Grab a token while the account is still active
	rec = server.login(t, "disabled@example.com", "Password123!")
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeResponse(t, rec)
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var loginData struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(raw, &loginData))

	// Disable the account
	server.repo.usersByEmail["disabled@example.com"].IsActive = false

	// Both the login and the previously issued token stop working
	rec = server.login(t, "disabled@example.com", "Password123!")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = server.get(t, "/api/v1/users/me", loginData.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthFlow_TokenFailures(t *testing.T) {
	server := newTestServer(t)

	rec := server.register(t, `{"email":"user@example.com","password":"Password123!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Missing Authorization header
	rec = server.get(t, "/api/v1/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))

	// Garbage token
	rec = server.get(t, "/api/v1/users/me", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed under a different key
	otherCfg := &config.Config{
		Auth: &config.AuthConfig{
			SecretKey:      "a_different_secret_key",
			Algorithm:      "HS256",
			AccessTokenTTL: time.Hour,
		},
	}
	otherService, err := auth.NewJWTService(otherCfg)
	require.NoError(t, err)
	forged, err := otherService.Issue("user@example.com")
	require.NoError(t, err)

	rec = server.get(t, "/api/v1/users/me", forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	envelope := decodeResponse(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "CREDENTIALS_NOT_VALIDATED", envelope.Error.Code)

	// Expired token signed under the correct key
	expiredCfg := &config.Config{
		Auth: &config.AuthConfig{
			SecretKey:      "integration_test_secret_key",
			Algorithm:      "HS256",
			AccessTokenTTL: -time.Minute,
		},
	}
	expiredService, err := auth.NewJWTService(expiredCfg)
	require.NoError(t, err)
	expired, err := expiredService.Issue("user@example.com")
	require.NoError(t, err)

	rec = server.get(t, "/api/v1/users/me", expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_GetUser(t *testing.T) {
	server := newTestServer(t)

	rec := server.register(t, `{"email":"lookup@example.com","password":"Password123!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	user := server.repo.usersByEmail["lookup@example.com"]

	// Lookup by id succeeds without authentication
	rec = server.get(t, "/api/v1/users/"+user.ID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lookup@example.com")

	// Unknown id and non-uuid id both read as not found
	rec = server.get(t, "/api/v1/users/"+uuid.New().String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = server.get(t, "/api/v1/users/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandler_ListUsers(t *testing.T) {
	server := newTestServer(t)

	rec := server.register(t, `{"email":"one@example.com","password":"Password123!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = server.register(t, `{"email":"two@example.com","password":"Password123!"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = server.get(t, "/api/v1/users", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeResponse(t, rec)
	assert.True(t, envelope.Success)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(raw, &users))
	assert.Len(t, users, 2)

	// Pagination trims the page
	rec = server.get(t, "/api/v1/users?offset=1&limit=1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope = decodeResponse(t, rec)
	raw, err = json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &users))
	assert.Len(t, users, 1)
}
