package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a voucher reduces the order subtotal.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
)

// Voucher is a promotional code with usage limits and a validity window.
type Voucher struct {
	ID              int64
	Code            string
	Description     string
	DiscountType    DiscountType
	DiscountValue   decimal.Decimal
	MinOrderValue   *decimal.Decimal
	MaxUsage        *int
	MaxUsagePerUser *int
	StartDate       time.Time
	EndDate         time.Time
	IsPublic        bool
	CreatedAt       time.Time
}

var hundred = decimal.NewFromInt(100)

// Validate checks the voucher definition itself, not its eligibility for an order.
func (v Voucher) Validate() error {
	if !v.EndDate.After(v.StartDate) {
		return errors.New("voucher end date must be after start date")
	}
	if v.DiscountValue.IsNegative() {
		return errors.New("voucher discount value must not be negative")
	}
	if v.DiscountType == DiscountTypePercentage && v.DiscountValue.GreaterThan(hundred) {
		return errors.New("voucher percentage must not exceed 100")
	}
	return nil
}

// VoucherUsage records one successful application of a voucher to an order.
type VoucherUsage struct {
	ID        int64
	VoucherID int64
	UserID    int64
	OrderID   int64
	UsedAt    time.Time
}

// UserVoucher grants a user access to a private voucher.
type UserVoucher struct {
	UserID    int64
	VoucherID int64
	GrantedAt time.Time
}
