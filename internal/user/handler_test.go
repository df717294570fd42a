package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stallbook/internal/auth"
	"stallbook/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init()
}

const testSecret = "test-secret"

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, name, email, phone, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, name, email, phone, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func setupRouter(repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(repo, testSecret)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("EmailExists", mock.Anything, "anna@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, "Anna Svensson", "anna@example.com", "070-1234567", mock.Anything, "customer").
		Return(&User{ID: 1, Name: "Anna Svensson", Email: "anna@example.com", Role: "customer"}, nil)

	r := setupRouter(repo)
	w := doJSON(r, http.MethodPost, "/auth/register", RegisterRequest{
		Name:     "Anna Svensson",
		Email:    "anna@example.com",
		Phone:    "070-1234567",
		Password: "hemligt123",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, 1, resp.User.ID)
	repo.AssertExpectations(t)
}

func TestRegister_ProviderRole(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("EmailExists", mock.Anything, "smed@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, "Smeden", "smed@example.com", "", mock.Anything, "provider").
		Return(&User{ID: 2, Role: "provider", Email: "smed@example.com"}, nil)

	r := setupRouter(repo)
	w := doJSON(r, http.MethodPost, "/auth/register", RegisterRequest{
		Name:     "Smeden",
		Email:    "smed@example.com",
		Password: "hemligt123",
		Role:     "provider",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	repo := new(MockUserRepo)
	r := setupRouter(repo)

	w := doJSON(r, http.MethodPost, "/auth/register", RegisterRequest{
		Name:     "Skurk",
		Email:    "skurk@example.com",
		Password: "hemligt123",
		Role:     "admin",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("EmailExists", mock.Anything, "anna@example.com").Return(true, nil)

	r := setupRouter(repo)
	w := doJSON(r, http.MethodPost, "/auth/register", RegisterRequest{
		Name:     "Anna Svensson",
		Email:    "anna@example.com",
		Password: "hemligt123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin(t *testing.T) {
	hash, err := auth.HashPassword("hemligt123")
	require.NoError(t, err)

	repo := new(MockUserRepo)
	repo.On("FindByEmail", mock.Anything, "anna@example.com").
		Return(&User{ID: 1, Email: "anna@example.com", PasswordHash: hash, Role: "customer"}, nil)

	r := setupRouter(repo)

	w := doJSON(r, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "anna@example.com",
		Password: "hemligt123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "anna@example.com",
		Password: "fel-lösenord",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepo)
	repo.On("FindByEmail", mock.Anything, "missing@example.com").Return(nil, ErrUserNotFound)

	r := setupRouter(repo)
	w := doJSON(r, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "missing@example.com",
		Password: "hemligt123",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestRefreshToken(t *testing.T) {
	_, refreshToken, err := auth.GenerateTokens(1, "anna@example.com", "customer", testSecret, testSecret)
	require.NoError(t, err)

	repo := new(MockUserRepo)
	repo.On("FindByID", mock.Anything, 1).
		Return(&User{ID: 1, Email: "anna@example.com", Role: "customer"}, nil)

	r := setupRouter(repo)
	w := doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refreshToken})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	accessToken, _, err := auth.GenerateTokens(1, "anna@example.com", "customer", testSecret, testSecret)
	require.NoError(t, err)

	r := setupRouter(new(MockUserRepo))
	w := doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": accessToken})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
