package postgres

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserPostgres struct {
	db DB
}

func NewUserPostgres(db DB) *UserPostgres {
	return &UserPostgres{db: db}
}

func (r *UserPostgres) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT id, name, email, password, roles, created_at FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserPostgres) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, name, email, password, roles, created_at FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, normalizeEmail(email)))
}

func (r *UserPostgres) scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Roles, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserPostgres) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if len(user.Roles) == 0 {
		user.Roles = []string{models.ClientRole}
	}
	user.Email = normalizeEmail(user.Email)

	query := `INSERT INTO users (name, email, password, roles) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, user.Name, user.Email, user.Password, user.Roles).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, app_errors.ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

func (r *UserPostgres) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
