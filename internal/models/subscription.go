package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Subscription struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	CourseID        uuid.UUID       `json:"courseId"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	PricePaid       decimal.Decimal `json:"pricePaid"`
	DiscountApplied int             `json:"discountApplied"`
	PromoCodeUsed   *string         `json:"promoCodeUsed"`
	SubscribedAt    time.Time       `json:"subscribedAt"`
}

// SubscriptionDetail is a ledger record joined with the course it points at.
type SubscriptionDetail struct {
	Subscription
	Course Course
}

// CreateOutcome is the result of an at-most-once ledger insert.
type CreateOutcome int

const (
	CreateOutcomeCreated CreateOutcome = iota
	CreateOutcomeAlreadyExists
)

func (o CreateOutcome) String() string {
	switch o {
	case CreateOutcomeCreated:
		return "created"
	case CreateOutcomeAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// PromoQuote is the informational result of a promo dry run.
type PromoQuote struct {
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	DiscountPercent int
	Savings         decimal.Decimal
}
