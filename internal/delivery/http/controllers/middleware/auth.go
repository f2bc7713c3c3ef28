package middleware

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthService interface {
	ParseToken(ctx context.Context, token string) (*jwt.Token, error)
	IsAccessToken(ctx context.Context, token *jwt.Token) bool
	AccessClaims(ctx context.Context, token string) (userID uuid.UUID, roles []string, err error)
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthMiddlewareProvider struct {
	log     logger.Log
	service AuthService
}

func NewAuthMiddlewareProvider(log logger.Log, s AuthService) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:     log,
		service: s,
	}
}

// AuthMiddleware resolves the bearer token to a user and stores the user id
// and roles in the gin context.
func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		abort(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	ctx := c.Request.Context()
	parsedToken, err := h.service.ParseToken(ctx, token)
	if err != nil {
		h.log.Debug("failed to parse token", logger.Err(err))
		if errors.Is(err, app_errors.ErrTokenExpired) {
			abort(c, http.StatusUnauthorized, "Not authorized, token expired")
			return
		}
		abort(c, http.StatusUnauthorized, "Not authorized, token failed")
		return
	}
	if !h.service.IsAccessToken(ctx, parsedToken) {
		abort(c, http.StatusUnauthorized, "Not authorized, not an access token")
		return
	}

	userID, roles, err := h.service.AccessClaims(ctx, token)
	if err != nil {
		abort(c, http.StatusUnauthorized, "Not authorized, token failed")
		return
	}
	user, err := h.service.User(ctx, userID)
	if err != nil {
		if !errors.Is(err, app_errors.ErrUserNotFound) {
			h.log.ErrorErr("auth: failed to load user", err, "user_id", userID)
		}
		abort(c, http.StatusUnauthorized, "Not authorized, user not found")
		return
	}

	c.Set(ClientIDCtx, user.ID)
	c.Set(ClientRolesCtx, roles)
	c.Next()
}
