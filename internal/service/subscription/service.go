package subscription

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"CourseHub/internal/service/promo"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
}

// ledger is the durable, duplicate-free store of subscriptions. Create must
// report CreateOutcomeAlreadyExists when the (user, course) uniqueness
// constraint rejects the row.
type ledger interface {
	ByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) (models.CreateOutcome, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SubscriptionDetail, error)
}

type outcomeRecorder interface {
	ObserveSubscribe(result string)
	ObserveValidate(result string)
}

type Service struct {
	log     logger.Log
	courses courseRepo
	ledger  ledger
	rule    promo.Rule
	metrics outcomeRecorder
}

func NewService(l logger.Log, c courseRepo, led ledger, rule promo.Rule, m outcomeRecorder) *Service {
	return &Service{
		log:     l,
		courses: c,
		ledger:  led,
		rule:    rule,
		metrics: m,
	}
}

// Validate prices courseID with promoCode without writing anything.
func (s *Service) Validate(ctx context.Context, userID uuid.UUID, courseID, promoCode string) (*models.PromoQuote, error) {
	quote, err := s.validate(ctx, courseID, promoCode)
	if s.metrics != nil {
		s.metrics.ObserveValidate(ResultLabel(err))
	}
	if err != nil && !isClientError(err) {
		s.log.ErrorErr("validate promo failed", err, "user_id", userID, "course_id", courseID)
	}
	return quote, err
}

func (s *Service) validate(ctx context.Context, courseID, promoCode string) (*models.PromoQuote, error) {
	course, err := s.resolveCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if isBlank(promoCode) {
		return nil, app_errors.ErrPromoCodeRequired
	}

	ev := s.rule.Evaluate(promoCode, course.Price)
	if !ev.Valid {
		return nil, app_errors.ErrInvalidPromo
	}

	discounted := promo.Round(ev.DiscountedPrice)
	return &models.PromoQuote{
		OriginalPrice:   course.Price,
		DiscountedPrice: discounted,
		DiscountPercent: ev.DiscountPercent,
		Savings:         course.Price.Sub(discounted),
	}, nil
}

// Subscribe enrolls userID in courseID. Paid courses need a valid promo
// code, which is evaluated again here regardless of any earlier Validate.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID, courseID, promoCode string) (*models.SubscriptionDetail, error) {
	detail, err := s.subscribe(ctx, userID, courseID, promoCode)
	if s.metrics != nil {
		s.metrics.ObserveSubscribe(ResultLabel(err))
	}
	if err != nil && !isClientError(err) {
		s.log.ErrorErr("subscribe failed", err, "user_id", userID, "course_id", courseID)
	}
	return detail, err
}

func (s *Service) subscribe(ctx context.Context, userID uuid.UUID, courseID, promoCode string) (*models.SubscriptionDetail, error) {
	if isBlank(courseID) {
		return nil, app_errors.ErrCourseIDRequired
	}
	course, err := s.resolveCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	// Advisory only: a concurrent request can still pass this check, the
	// ledger's unique constraint decides.
	_, err = s.ledger.ByUserAndCourse(ctx, userID, course.ID)
	switch {
	case err == nil:
		return nil, app_errors.ErrAlreadySubscribed
	case !errors.Is(err, app_errors.ErrSubscriptionNotFound):
		return nil, fmt.Errorf("check existing subscription: %w", err)
	}

	sub := &models.Subscription{
		UserID:        userID,
		CourseID:      course.ID,
		OriginalPrice: course.Price,
		PricePaid:     decimal.Zero,
	}
	if !course.IsFree() {
		if isBlank(promoCode) {
			return nil, app_errors.ErrPromoCodeRequired
		}
		ev := s.rule.Evaluate(promoCode, course.Price)
		if !ev.Valid {
			return nil, app_errors.ErrInvalidPromo
		}
		code := ev.Code
		sub.PricePaid = promo.Round(ev.DiscountedPrice)
		sub.DiscountApplied = ev.DiscountPercent
		sub.PromoCodeUsed = &code
	}

	outcome, err := s.ledger.Create(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	if outcome == models.CreateOutcomeAlreadyExists {
		s.log.Info("duplicate subscription rejected by ledger", "user_id", userID, "course_id", course.ID)
		return nil, app_errors.ErrAlreadySubscribed
	}

	return &models.SubscriptionDetail{Subscription: *sub, Course: *course}, nil
}

// ListForUser returns the user's subscriptions, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.SubscriptionDetail, error) {
	details, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		s.log.ErrorErr("list subscriptions failed", err, "user_id", userID)
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if details == nil {
		details = []models.SubscriptionDetail{}
	}
	return details, nil
}

// IsSubscribed reads the ledger directly so a fresh subscription is
// visible immediately.
func (s *Service) IsSubscribed(ctx context.Context, userID uuid.UUID, courseID string) (bool, *models.Subscription, error) {
	id, err := uuid.Parse(strings.TrimSpace(courseID))
	if err != nil {
		return false, nil, nil
	}
	sub, err := s.ledger.ByUserAndCourse(ctx, userID, id)
	if err != nil {
		if errors.Is(err, app_errors.ErrSubscriptionNotFound) {
			return false, nil, nil
		}
		s.log.ErrorErr("check subscription failed", err, "user_id", userID, "course_id", courseID)
		return false, nil, fmt.Errorf("check subscription: %w", err)
	}
	return true, sub, nil
}

// resolveCourse treats malformed ids like unknown ones.
func (s *Service) resolveCourse(ctx context.Context, raw string) (*models.Course, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, app_errors.ErrCourseNotFound
	}
	course, err := s.courses.CourseByID(ctx, id)
	if err != nil {
		if errors.Is(err, app_errors.ErrCourseNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load course: %w", err)
	}
	return course, nil
}

// ResultLabel names the outcome of a workflow call for metrics.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, app_errors.ErrCourseIDRequired), errors.Is(err, app_errors.ErrPromoCodeRequired):
		return "bad_request"
	case errors.Is(err, app_errors.ErrCourseNotFound):
		return "not_found"
	case errors.Is(err, app_errors.ErrInvalidPromo):
		return "invalid_promo"
	case errors.Is(err, app_errors.ErrAlreadySubscribed):
		return "conflict"
	default:
		return "internal"
	}
}

func isClientError(err error) bool {
	return ResultLabel(err) != "internal"
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
