package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountType distinguishes percentage discounts from fixed deductions
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// IsValid checks if the type is a recognized DiscountType
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountPercentage, DiscountFixed:
		return true
	}
	return false
}

// String returns the string representation of DiscountType
func (t DiscountType) String() string {
	return string(t)
}

// Discount is a value object describing a price reduction.
// A percentage discount is bounded to [0, 100]; a fixed discount is a
// non-negative absolute amount in the order currency.
type Discount struct {
	discountType DiscountType
	value        decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// NewDiscount creates a validated Discount
func NewDiscount(discountType DiscountType, value decimal.Decimal) (Discount, error) {
	if !discountType.IsValid() {
		return Discount{}, fmt.Errorf("unknown discount type: %s", discountType)
	}
	if value.IsNegative() {
		return Discount{}, fmt.Errorf("discount value cannot be negative")
	}
	if discountType == DiscountPercentage && value.GreaterThan(hundred) {
		return Discount{}, fmt.Errorf("percentage discount cannot exceed 100")
	}
	return Discount{discountType: discountType, value: value}, nil
}

// NewPercentageDiscount creates a percentage Discount
func NewPercentageDiscount(value decimal.Decimal) (Discount, error) {
	return NewDiscount(DiscountPercentage, value)
}

// NewFixedDiscount creates a fixed-amount Discount
func NewFixedDiscount(value decimal.Decimal) (Discount, error) {
	return NewDiscount(DiscountFixed, value)
}

// Type returns the discount type
func (d Discount) Type() DiscountType {
	return d.discountType
}

// Value returns the raw discount value
func (d Discount) Value() decimal.Decimal {
	return d.value
}

// IsZero reports whether applying the discount leaves the base unchanged
func (d Discount) IsZero() bool {
	return d.value.IsZero()
}

// Apply returns base after the discount, floored at zero.
// Percentage: base - base*value/100. Fixed: base - value.
func (d Discount) Apply(base decimal.Decimal) decimal.Decimal {
	var result decimal.Decimal
	switch d.discountType {
	case DiscountPercentage:
		result = base.Sub(base.Mul(d.value).Div(hundred))
	case DiscountFixed:
		result = base.Sub(d.value)
	default:
		result = base
	}
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}
