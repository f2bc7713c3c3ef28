package postgres

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const subscriptionColumns = `s.id, s.user_id, s.course_id, s.original_price, s.price_paid, s.discount_applied, s.promo_code_used, s.subscribed_at`

// SubscriptionPostgres is the subscription ledger. The table carries a
// UNIQUE (user_id, course_id) constraint; Create relies on it rather than
// on any earlier lookup.
type SubscriptionPostgres struct {
	db  DB
	now func() time.Time
}

func NewSubscriptionPostgres(db DB) *SubscriptionPostgres {
	return &SubscriptionPostgres{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Create inserts sub, assigning its ID and SubscribedAt. A unique
// violation is reported as CreateOutcomeAlreadyExists, not as an error.
func (r *SubscriptionPostgres) Create(ctx context.Context, sub *models.Subscription) (models.CreateOutcome, error) {
	id := uuid.New()
	subscribedAt := r.now()
	query := `
        INSERT INTO subscriptions (
            id, user_id, course_id, original_price, price_paid,
            discount_applied, promo_code_used, subscribed_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.db.Exec(ctx, query,
		id,
		sub.UserID,
		sub.CourseID,
		sub.OriginalPrice,
		sub.PricePaid,
		sub.DiscountApplied,
		sub.PromoCodeUsed,
		subscribedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.CreateOutcomeAlreadyExists, nil
		}
		return models.CreateOutcomeCreated, fmt.Errorf("failed to insert subscription: %w", err)
	}

	sub.ID = id
	sub.SubscribedAt = subscribedAt
	return models.CreateOutcomeCreated, nil
}

func (r *SubscriptionPostgres) ByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions s WHERE s.user_id = $1 AND s.course_id = $2`

	sub := &models.Subscription{}
	err := r.db.QueryRow(ctx, query, userID, courseID).Scan(subscriptionDest(sub)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to query subscription: %w", err)
	}
	return sub, nil
}

// ListByUser joins every subscription of userID with its course, newest first.
func (r *SubscriptionPostgres) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SubscriptionDetail, error) {
	query := `
        SELECT ` + subscriptionColumns + `,
               c.id, c.title, c.description, c.price, c.image, c.image_object_key,
               c.category, c.instructor, c.duration, c.level, c.created_at
        FROM subscriptions s
        INNER JOIN courses c ON c.id = s.course_id
        WHERE s.user_id = $1
        ORDER BY s.subscribed_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	details := make([]models.SubscriptionDetail, 0)
	for rows.Next() {
		var d models.SubscriptionDetail
		c := &d.Course
		dest := append(subscriptionDest(&d.Subscription),
			&c.ID, &c.Title, &c.Description, &c.Price, &c.Image, &c.ImageObjectKey,
			&c.Category, &c.Instructor, &c.Duration, &c.Level, &c.CreatedAt,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}
	return details, nil
}

func subscriptionDest(s *models.Subscription) []any {
	return []any{
		&s.ID,
		&s.UserID,
		&s.CourseID,
		&s.OriginalPrice,
		&s.PricePaid,
		&s.DiscountApplied,
		&s.PromoCodeUsed,
		&s.SubscribedAt,
	}
}
