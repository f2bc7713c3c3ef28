package subscription

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/delivery/http/controllers"
	"CourseHub/internal/delivery/http/controllers/middleware"
	"CourseHub/internal/models"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubscriptionService interface {
	Validate(ctx context.Context, userID uuid.UUID, courseID, promoCode string) (*models.PromoQuote, error)
	Subscribe(ctx context.Context, userID uuid.UUID, courseID, promoCode string) (*models.SubscriptionDetail, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.SubscriptionDetail, error)
	IsSubscribed(ctx context.Context, userID uuid.UUID, courseID string) (bool, *models.Subscription, error)
}

type coursePreviewer interface {
	Preview(ctx context.Context, c models.Course) models.CoursePreview
}

type SubscriptionHandler struct {
	log      logger.Log
	service  SubscriptionService
	previews coursePreviewer
}

func NewSubscriptionHandler(log logger.Log, s SubscriptionService, p coursePreviewer) *SubscriptionHandler {
	return &SubscriptionHandler{
		log:      log,
		service:  s,
		previews: p,
	}
}

type subscribeRequest struct {
	CourseID  string `json:"courseId"`
	PromoCode string `json:"promoCode"`
}

type subscriptionView struct {
	SubscriptionID  uuid.UUID            `json:"subscriptionId"`
	Course          models.CoursePreview `json:"course"`
	OriginalPrice   decimal.Decimal      `json:"originalPrice"`
	PricePaid       decimal.Decimal      `json:"pricePaid"`
	DiscountApplied int                  `json:"discountApplied"`
	PromoCodeUsed   *string              `json:"promoCodeUsed"`
	SubscribedAt    time.Time            `json:"subscribedAt"`
}

func (h *SubscriptionHandler) view(ctx context.Context, d models.SubscriptionDetail) subscriptionView {
	return subscriptionView{
		SubscriptionID:  d.ID,
		Course:          h.previews.Preview(ctx, d.Course),
		OriginalPrice:   d.OriginalPrice,
		PricePaid:       d.PricePaid,
		DiscountApplied: d.DiscountApplied,
		PromoCodeUsed:   d.PromoCodeUsed,
		SubscribedAt:    d.SubscribedAt,
	}
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		controllers.Fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}
	var input subscribeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	detail, err := h.service.Subscribe(c.Request.Context(), userID, input.CourseID, input.PromoCode)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrCourseIDRequired):
			controllers.Fail(c, http.StatusBadRequest, "Course ID is required")
		case errors.Is(err, app_errors.ErrPromoCodeRequired):
			controllers.Fail(c, http.StatusBadRequest, "Promo code is required for paid courses")
		default:
			h.fail(c, err, "Server error during subscription")
		}
		return
	}

	message := "Successfully subscribed to free course!"
	if !detail.Course.IsFree() {
		message = fmt.Sprintf("Successfully subscribed! You saved %d%% with promo code.", detail.DiscountApplied)
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": message,
		"data":    h.view(c.Request.Context(), *detail),
	})
}

type validatePromoRequest struct {
	PromoCode string `json:"promoCode"`
	CourseID  string `json:"courseId"`
}

func (h *SubscriptionHandler) ValidatePromo(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		controllers.Fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}
	var input validatePromoRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		controllers.Fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	quote, err := h.service.Validate(c.Request.Context(), userID, input.CourseID, input.PromoCode)
	if err != nil {
		if errors.Is(err, app_errors.ErrPromoCodeRequired) {
			controllers.Fail(c, http.StatusBadRequest, "Promo code is required")
			return
		}
		h.fail(c, err, "Server error during promo validation")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Promo code valid! %d%% discount applied.", quote.DiscountPercent),
		"valid":   true,
		"data": gin.H{
			"originalPrice":      quote.OriginalPrice,
			"discountedPrice":    quote.DiscountedPrice,
			"discountPercentage": quote.DiscountPercent,
			"savings":            quote.Savings,
		},
	})
}

func (h *SubscriptionHandler) MyCourses(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		controllers.Fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	details, err := h.service.ListForUser(c.Request.Context(), userID)
	if err != nil {
		controllers.Fail(c, http.StatusInternalServerError, "Server error while fetching subscriptions")
		return
	}

	views := make([]subscriptionView, 0, len(details))
	for _, d := range details {
		views = append(views, h.view(c.Request.Context(), d))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(views),
		"data":    views,
	})
}

func (h *SubscriptionHandler) Check(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		controllers.Fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	subscribed, sub, err := h.service.IsSubscribed(c.Request.Context(), userID, c.Param("courseId"))
	if err != nil {
		controllers.Fail(c, http.StatusInternalServerError, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"isSubscribed": subscribed,
		"subscription": sub,
	})
}

// fail maps the workflow errors shared by subscribe and validate-promo.
// Anything unrecognised is answered with internalMessage only.
func (h *SubscriptionHandler) fail(c *gin.Context, err error, internalMessage string) {
	switch {
	case errors.Is(err, app_errors.ErrCourseNotFound):
		controllers.Fail(c, http.StatusNotFound, "Course not found")
	case errors.Is(err, app_errors.ErrInvalidPromo):
		controllers.FailWith(c, http.StatusBadRequest, "Invalid promo code", gin.H{"valid": false})
	case errors.Is(err, app_errors.ErrAlreadySubscribed):
		controllers.Fail(c, http.StatusConflict, "You are already subscribed to this course")
	default:
		controllers.Fail(c, http.StatusInternalServerError, internalMessage)
	}
}
