// Package promo holds the single process-wide promotion rule.
package promo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rule matches one promo code and discounts paid courses by a fixed
// percentage. The zero value matches nothing.
type Rule struct {
	code            string
	discountPercent int
}

type Evaluation struct {
	Valid bool
	// DiscountedPrice keeps full precision; callers round with Round at the
	// point where the amount is shown or stored.
	DiscountedPrice decimal.Decimal
	DiscountPercent int
	Code            string
}

func NewRule(code string, discountPercent int) (Rule, error) {
	normalized := Normalize(code)
	if normalized == "" {
		return Rule{}, errors.New("promo: code must not be empty")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return Rule{}, fmt.Errorf("promo: discount %d out of range 0-100", discountPercent)
	}
	return Rule{code: normalized, discountPercent: discountPercent}, nil
}

func (r Rule) Code() string {
	return r.code
}

func (r Rule) DiscountPercent() int {
	return r.discountPercent
}

// Evaluate checks supplied against the rule and prices originalPrice.
// It has no side effects and may be called any number of times.
func (r Rule) Evaluate(supplied string, originalPrice decimal.Decimal) Evaluation {
	code := Normalize(supplied)
	if r.code == "" || code != r.code {
		return Evaluation{}
	}

	factor := hundred.Sub(decimal.NewFromInt(int64(r.discountPercent))).Div(hundred)
	return Evaluation{
		Valid:           true,
		DiscountedPrice: originalPrice.Mul(factor),
		DiscountPercent: r.discountPercent,
		Code:            r.code,
	}
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Round rounds to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
