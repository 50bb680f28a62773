package errors

import "errors"

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrCancelReasonRequired = errors.New("cancel reason required")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrVoucherRejected      = errors.New("voucher rejected")
	ErrVoucherAlreadyUsed   = errors.New("order already has a voucher")
	ErrOrderNotPending      = errors.New("order is not pending")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrVariantNotFound      = errors.New("variant not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrVariantNotInCart     = errors.New("variant not in cart")
	ErrQuantityExceedsCart  = errors.New("quantity exceeds cart")
	ErrConcurrentUpdate     = errors.New("concurrent update, try again")
	ErrUnknownDiscountType  = errors.New("unknown discount type")
)

// Kind groups errors by how callers should react to them.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindPermission
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

type classified struct {
	err  error
	kind Kind
	code string
}

// More specific sentinels come first since typed errors may wrap several.
var registry = []classified{
	{ErrCustomerNotFound, KindNotFound, "CUSTOMER_NOT_FOUND"},
	{ErrOrderNotFound, KindNotFound, "ORDER_NOT_FOUND"},
	{ErrVariantNotFound, KindNotFound, "VARIANT_NOT_FOUND"},
	{ErrNotFound, KindNotFound, "NOT_FOUND"},
	{ErrPermissionDenied, KindPermission, "PERMISSION_DENIED"},
	{ErrConcurrentUpdate, KindConflict, "CONCURRENT_UPDATE"},
	{ErrAlreadyExists, KindConflict, "ALREADY_EXISTS"},
	{ErrInvalidTransition, KindValidation, "INVALID_TRANSITION"},
	{ErrCancelReasonRequired, KindValidation, "CANCEL_REASON_REQUIRED"},
	{ErrInsufficientStock, KindValidation, "INSUFFICIENT_STOCK"},
	{ErrVoucherAlreadyUsed, KindValidation, "VOUCHER_ALREADY_APPLIED"},
	{ErrOrderNotPending, KindValidation, "ORDER_NOT_PENDING"},
	{ErrEmptyCart, KindValidation, "EMPTY_CART"},
	{ErrVariantNotInCart, KindValidation, "VARIANT_NOT_IN_CART"},
	{ErrQuantityExceedsCart, KindValidation, "QUANTITY_EXCEEDS_CART"},
	{ErrInvalidInput, KindValidation, "INVALID_INPUT"},
	{ErrUnknownDiscountType, KindInternal, "INTERNAL"},
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var voucherErr *VoucherError
	if errors.As(err, &voucherErr) {
		if voucherErr.Reason == VoucherCodeNotFound {
			return KindNotFound
		}
		return KindValidation
	}
	for _, entry := range registry {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return KindInternal
}

// Code returns a stable machine readable code for err.
func Code(err error) string {
	var voucherErr *VoucherError
	if errors.As(err, &voucherErr) {
		return string(voucherErr.Reason)
	}
	for _, entry := range registry {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return "INTERNAL"
}
