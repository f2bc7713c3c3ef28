package postgres

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TokensPostgres struct {
	db DB
}

func NewTokensPostgres(db DB) *TokensPostgres {
	return &TokensPostgres{db: db}
}

func hashToken(token *jwt.Token) string {
	sum := sha256.Sum256([]byte(token.Raw))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Replace drops every refresh token of userID and stores token in one
// transaction, so a failed insert leaves the previous tokens in place.
func (r *TokensPostgres) Replace(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if expiresAt == nil {
		return nil, errors.New("refresh token has no expiry")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin token rotation: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("failed to delete refresh tokens: %w", err)
	}

	query := `
		INSERT INTO refresh_tokens (user_id, hashed_token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at, expires_at
	`
	refreshToken := &models.RefreshToken{
		UserID:      userID,
		HashedToken: hashToken(token),
	}
	err = tx.QueryRow(ctx, query, userID, refreshToken.HashedToken, expiresAt.Time).Scan(&refreshToken.CreatedAt, &refreshToken.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit token rotation: %w", err)
	}
	return refreshToken, nil
}

func (r *TokensPostgres) ByPrimaryKey(ctx context.Context, userID uuid.UUID, token *jwt.Token) (*models.RefreshToken, error) {
	query := `SELECT user_id, hashed_token, created_at, expires_at FROM refresh_tokens WHERE user_id = $1 AND hashed_token = $2`
	refreshToken := models.RefreshToken{}
	err := r.db.QueryRow(ctx, query, userID, hashToken(token)).Scan(&refreshToken.UserID, &refreshToken.HashedToken, &refreshToken.CreatedAt, &refreshToken.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrTokenNotFound
		}
		return nil, err
	}
	return &refreshToken, nil
}
