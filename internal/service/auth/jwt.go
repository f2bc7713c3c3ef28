package auth

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenType  = "access"
	RefreshTokenType = "refresh"
)

var signingMethod = jwt.SigningMethodHS256

type JWTManager struct {
	secretKey  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewJWTManager(secretKey, issuer string, accessTTL, refreshTTL time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		now:        time.Now,
	}
}

type AccessTokenClaims struct {
	TokenType string    `json:"token_type"`
	UserID    uuid.UUID `json:"user_id"`
	Roles     []string  `json:"roles"`
	jwt.RegisteredClaims
}

type RefreshTokenClaims struct {
	TokenType string    `json:"token_type"`
	UserID    uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

func (j *JWTManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != signingMethod {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return j.secretKey, nil
}

func (j *JWTManager) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)
}

func (j *JWTManager) AccessClaims(tokenStr string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if _, err := j.parser().ParseWithClaims(tokenStr, claims, j.keyFunc); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInvalidToken, err)
	}

	if claims.TokenType != AccessTokenType {
		return nil, fmt.Errorf("%w: expected %q, got %q", app_errors.ErrInvalidToken, AccessTokenType, claims.TokenType)
	}

	return claims, nil
}

func (j *JWTManager) Parse(token string) (*jwt.Token, error) {
	jwtToken, err := j.parser().Parse(token, j.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, app_errors.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInvalidToken, err)
	}
	return jwtToken, nil
}

func (j *JWTManager) TokenType(token *jwt.Token, t string) bool {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	tokenType, ok := claims["token_type"].(string)
	return ok && tokenType == t
}

func (j *JWTManager) GenerateTokenPair(userID uuid.UUID, roles []string) (*models.TokenPair, error) {
	now := j.now()

	access, err := j.sign(AccessTokenClaims{
		TokenType:        AccessTokenType,
		UserID:           userID,
		Roles:            roles,
		RegisteredClaims: j.registered(userID, now, j.accessTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}

	refresh, err := j.sign(RefreshTokenClaims{
		TokenType: RefreshTokenType,
		UserID:    userID,
		// the id keeps two refresh tokens issued in the same second distinct
		RegisteredClaims: func() jwt.RegisteredClaims {
			rc := j.registered(userID, now, j.refreshTTL)
			rc.ID = uuid.NewString()
			return rc
		}(),
	})
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	return &models.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (j *JWTManager) registered(userID uuid.UUID, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    j.issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

// sign returns the token re-parsed from its signed form, so Raw is set and
// Claims is a jwt.MapClaims like any token coming from a client.
func (j *JWTManager) sign(claims jwt.Claims) (*jwt.Token, error) {
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(j.secretKey)
	if err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}
	return j.Parse(signed)
}
