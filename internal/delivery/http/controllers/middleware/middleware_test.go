package middleware

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"CourseHub/pkg/logger"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ParseToken(ctx context.Context, token string) (*jwt.Token, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.Token), args.Error(1)
}

func (m *MockAuthService) IsAccessToken(ctx context.Context, token *jwt.Token) bool {
	return m.Called(ctx, token).Bool(0)
}

func (m *MockAuthService) AccessClaims(ctx context.Context, token string) (uuid.UUID, []string, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Get(1).([]string), args.Error(2)
}

func (m *MockAuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func protectedRouter(svc AuthService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	provider := NewAuthMiddlewareProvider(logger.NewDiscard(), svc)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{provider.AuthMiddleware}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := ClientID(c)
		c.String(http.StatusOK, id.String())
	})
	r.GET("/protected", handlers...)
	return r
}

func get(r http.Handler, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()
	token := &jwt.Token{Raw: "good"}

	svc := new(MockAuthService)
	svc.On("ParseToken", mock.Anything, "good").Return(token, nil)
	svc.On("IsAccessToken", mock.Anything, token).Return(true)
	svc.On("AccessClaims", mock.Anything, "good").Return(userID, []string{models.ClientRole}, nil)
	svc.On("User", mock.Anything, userID).Return(&models.User{ID: userID, Roles: []string{models.ClientRole}}, nil)
	svc.On("ParseToken", mock.Anything, "expired").Return(nil, app_errors.ErrTokenExpired)

	r := protectedRouter(svc)

	w := get(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Basic abc").Code)

	w = get(r, "Bearer expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")
}

func TestRequireRoles(t *testing.T) {
	userID := uuid.New()
	token := &jwt.Token{Raw: "client"}

	svc := new(MockAuthService)
	svc.On("ParseToken", mock.Anything, "client").Return(token, nil)
	svc.On("IsAccessToken", mock.Anything, token).Return(true)
	svc.On("AccessClaims", mock.Anything, "client").Return(userID, []string{models.ClientRole}, nil)
	svc.On("User", mock.Anything, userID).Return(&models.User{ID: userID}, nil)

	r := protectedRouter(svc, RequireRoles(models.AdminRole))
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer client").Code)
}

func TestKeyedLimiter(t *testing.T) {
	l := NewKeyedLimiter(60, 2)
	now := time.Date(2025, 11, 28, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("user:a"))
	assert.True(t, l.Allow("user:a"))
	assert.False(t, l.Allow("user:a"), "burst exhausted")
	assert.True(t, l.Allow("user:b"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("user:a"), "one token refilled per second")

	var disabled *KeyedLimiter
	assert.True(t, disabled.Allow("anything"))
	assert.Nil(t, NewKeyedLimiter(0, 5))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	r := gin.New()
	r.GET("/limited", func(c *gin.Context) {
		c.Set(ClientIDCtx, userID)
		c.Next()
	}, RateLimit(NewKeyedLimiter(1, 1)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	do := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
