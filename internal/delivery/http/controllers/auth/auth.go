package auth

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/delivery/http/controllers"
	"CourseHub/internal/delivery/http/controllers/middleware"
	"CourseHub/internal/models"
	authservice "CourseHub/internal/service/auth"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (*authservice.Session, error)
	Login(ctx context.Context, email, password string) (*authservice.Session, error)
	RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error)
	User(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	log     logger.Log
	service AuthService
}

func NewAuthHandler(l logger.Log, s AuthService) *AuthHandler {
	return &AuthHandler{
		log:     l,
		service: s,
	}
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Roles []string  `json:"roles"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Roles: u.Roles}
}

type sessionResponse struct {
	Success      bool         `json:"success"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         userResponse `json:"user"`
}

func newSessionResponse(s *authservice.Session) sessionResponse {
	access, refresh := s.Tokens.Raw()
	return sessionResponse{
		Success:      true,
		AccessToken:  access,
		RefreshToken: refresh,
		User:         newUserResponse(s.User),
	}
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		controllers.Fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}
	user, err := h.service.User(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			controllers.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		h.log.ErrorErr("error retrieving user", err, "user_id", userID)
		controllers.Fail(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": newUserResponse(user)})
}

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var input signupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.Fail(c, http.StatusBadRequest, "Please provide name, email and password")
		return
	}

	session, err := h.service.Signup(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrUserExists):
			controllers.Fail(c, http.StatusBadRequest, "User already exists with this email")
		case errors.Is(err, app_errors.ErrIncorrectPassword):
			controllers.Fail(c, http.StatusBadRequest, "Password must be at least 6 characters")
		case errors.Is(err, authservice.ErrInvalidEmail), errors.Is(err, authservice.ErrNameRequired):
			controllers.Fail(c, http.StatusBadRequest, err.Error())
		default:
			h.log.ErrorErr("error handling signup", err)
			controllers.Fail(c, http.StatusInternalServerError, "Server error during signup")
		}
		return
	}

	c.JSON(http.StatusCreated, newSessionResponse(session))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.Fail(c, http.StatusBadRequest, "Please provide email and password")
		return
	}

	session, err := h.service.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, app_errors.ErrInvalidCredentials) {
			controllers.Fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.log.ErrorErr("error handling login", err)
		controllers.Fail(c, http.StatusInternalServerError, "Server error during login")
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

type tokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input tokenRefreshRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.Fail(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	tokenPair, err := h.service.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrTokenExpired):
			controllers.Fail(c, http.StatusUnauthorized, "Refresh token expired")
		case errors.Is(err, app_errors.ErrInvalidToken),
			errors.Is(err, app_errors.ErrUserNotFound),
			errors.Is(err, app_errors.ErrTokenNotFound):
			controllers.Fail(c, http.StatusUnauthorized, "Invalid refresh token")
		default:
			h.log.ErrorErr("error handling token refresh", err)
			controllers.Fail(c, http.StatusInternalServerError, "Server error")
		}
		return
	}

	access, refresh := tokenPair.Raw()
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"access_token":  access,
		"refresh_token": refresh,
	})
}
