package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var hundred = decimal.NewFromInt(100)

// CalculateDiscount maps a discount definition onto an amount for subtotal.
// Amounts are rounded half away from zero to two places and never exceed subtotal.
func CalculateDiscount(discountType model.DiscountType, value, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	if value.IsNegative() {
		value = decimal.Zero
	}

	var discount decimal.Decimal
	switch discountType {
	case model.DiscountTypePercentage:
		discount = subtotal.Mul(value).Div(hundred).Round(2)
	case model.DiscountTypeFixedAmount:
		discount = decimal.Min(value, subtotal).Round(2)
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", domainErrors.ErrUnknownDiscountType, discountType)
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount, nil
}
