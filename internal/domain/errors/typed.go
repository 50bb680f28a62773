package errors

import (
	"fmt"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// TransitionError reports a move that is not on the transition graph.
type TransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// InsufficientStockError names the variant and the shortfall.
type InsufficientStockError struct {
	VariantID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: variant %d requested %d, available %d", ErrInsufficientStock, e.VariantID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Shortfall is the number of missing units.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// VoucherReason is the stable reason a voucher was refused.
type VoucherReason string

const (
	VoucherCodeNotFound       VoucherReason = "VOUCHER_CODE_NOT_FOUND"
	VoucherNotYetActive       VoucherReason = "VOUCHER_NOT_YET_ACTIVE"
	VoucherExpired            VoucherReason = "VOUCHER_EXPIRED"
	VoucherBelowMinimumOrder  VoucherReason = "VOUCHER_BELOW_MINIMUM_ORDER"
	VoucherGlobalLimitReached VoucherReason = "VOUCHER_GLOBAL_LIMIT_REACHED"
	VoucherPerUserLimit       VoucherReason = "VOUCHER_PER_USER_LIMIT_REACHED"
	VoucherAccessDenied       VoucherReason = "VOUCHER_ACCESS_DENIED"
)

// VoucherError carries the reason a voucher could not be used.
type VoucherError struct {
	Code   string
	Reason VoucherReason
}

func (e *VoucherError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrVoucherRejected, e.Code, e.Reason)
}

func (e *VoucherError) Unwrap() error { return ErrVoucherRejected }
