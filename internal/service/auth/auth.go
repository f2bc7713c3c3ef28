package auth

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes
	maxPasswordLen = 72
)

var ErrInvalidEmail = errors.New("invalid email address")
var ErrNameRequired = errors.New("name is required")

type AuthRepo interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type tokenRepo interface {
	// Replace drops every refresh token of userID and stores token, atomically.
	Replace(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error)
}

type AuthService struct {
	log        logger.Log
	jwtManager *JWTManager
	authRepo   AuthRepo
	tokenRepo  tokenRepo
}

func NewAuthService(l logger.Log, manager *JWTManager, aRepo AuthRepo, tRepo tokenRepo) *AuthService {
	return &AuthService{
		log:        l,
		jwtManager: manager,
		authRepo:   aRepo,
		tokenRepo:  tRepo,
	}
}

// Session is what signup and login hand back to the client.
type Session struct {
	User   *models.User
	Tokens *models.TokenPair
}

func (u *AuthService) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email, err := parseEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return nil, app_errors.ErrIncorrectPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := u.authRepo.CreateUser(ctx, models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Roles:    []string{models.ClientRole},
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("user signed up", "user_id", user.ID)

	return u.issue(ctx, user)
}

// Login never tells the caller whether the email or the password was wrong.
func (u *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := u.authRepo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			return nil, app_errors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPasswordHash(password, user.Password) {
		return nil, app_errors.ErrInvalidCredentials
	}

	return u.issue(ctx, user)
}

func (u *AuthService) issue(ctx context.Context, user *models.User) (*Session, error) {
	tokenPair, err := u.jwtManager.GenerateTokenPair(user.ID, user.Roles)
	if err != nil {
		return nil, err
	}
	if _, err := u.tokenRepo.Replace(ctx, user.ID, tokenPair.RefreshToken); err != nil {
		return nil, err
	}
	return &Session{User: user, Tokens: tokenPair}, nil
}

func (u *AuthService) RefreshTokens(ctx context.Context, token string) (*models.TokenPair, error) {
	curToken, err := u.jwtManager.Parse(token)
	if err != nil {
		return nil, err
	}
	if !u.jwtManager.TokenType(curToken, RefreshTokenType) {
		return nil, fmt.Errorf("%w: not a refresh token", app_errors.ErrInvalidToken)
	}
	userIDStr, err := curToken.Claims.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInvalidToken, err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", app_errors.ErrInvalidToken)
	}
	tokenRecord, err := u.tokenRepo.ByPrimaryKey(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	if tokenRecord.ExpiresAt.Before(time.Now()) {
		return nil, app_errors.ErrTokenExpired
	}
	user, err := u.authRepo.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	session, err := u.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	return session.Tokens, nil
}

func (u *AuthService) ParseToken(ctx context.Context, token string) (*jwt.Token, error) {
	return u.jwtManager.Parse(token)
}

func (u *AuthService) IsAccessToken(ctx context.Context, token *jwt.Token) bool {
	return u.jwtManager.TokenType(token, AccessTokenType)
}

func (u *AuthService) AccessClaims(ctx context.Context, token string) (userID uuid.UUID, roles []string, err error) {
	claims, err := u.jwtManager.AccessClaims(token)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return claims.UserID, claims.Roles, nil
}

func (u *AuthService) User(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return u.authRepo.UserByID(ctx, id)
}

// parseEmail accepts a bare address only; display-name forms such as
// "Bob <bob@example.com>" are rejected.
func parseEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	return addr.Address, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
