package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidateVoucherRequest asks whether a code applies to an order total.
type ValidateVoucherRequest struct {
	Code       string          `json:"code" binding:"required,max=64"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

// VoucherSummaryResponse is the public view of a voucher.
type VoucherSummaryResponse struct {
	Code          string          `json:"code"`
	Description   string          `json:"description,omitempty"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	EndDate       time.Time       `json:"end_date"`
}

// ValidateVoucherResponse describes voucher eligibility.
type ValidateVoucherResponse struct {
	IsValid        bool                    `json:"is_valid"`
	ErrorCode      string                  `json:"error_code,omitempty"`
	ErrorMessage   string                  `json:"error_message,omitempty"`
	DiscountAmount *decimal.Decimal        `json:"discount_amount,omitempty"`
	Voucher        *VoucherSummaryResponse `json:"voucher,omitempty"`
}

// ApplyVoucherRequest attaches a voucher to a pending order.
type ApplyVoucherRequest struct {
	Code    string `json:"code" binding:"required,max=64"`
	OrderID int64  `json:"order_id" binding:"required,gt=0"`
}

// ApplyVoucherResponse describes the outcome of applying a voucher.
type ApplyVoucherResponse struct {
	Success        bool             `json:"success"`
	ErrorCode      string           `json:"error_code,omitempty"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	NewTotal       *decimal.Decimal `json:"new_total,omitempty"`
}
