package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices leave the API as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

type Course struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Image          string          `json:"image"`
	ImageObjectKey string          `json:"-"`
	Category       string          `json:"category"`
	Instructor     string          `json:"instructor"`
	Duration       string          `json:"duration"`
	Level          string          `json:"level"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// IsFree reports whether the course can be joined without a promo code.
func (c Course) IsFree() bool {
	return c.Price.IsZero()
}

type CoursePreview struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	IsFree      bool            `json:"isFree"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	Instructor  string          `json:"instructor"`
	Duration    string          `json:"duration"`
	Level       string          `json:"level"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// NewCoursePreview builds the client-facing view of a course. imageURL
// replaces the stored image when the cover lives in object storage.
func NewCoursePreview(c Course, imageURL string) CoursePreview {
	image := c.Image
	if imageURL != "" {
		image = imageURL
	}
	return CoursePreview{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Price:       c.Price,
		IsFree:      c.IsFree(),
		Image:       image,
		Category:    c.Category,
		Instructor:  c.Instructor,
		Duration:    c.Duration,
		Level:       c.Level,
		CreatedAt:   c.CreatedAt,
	}
}
