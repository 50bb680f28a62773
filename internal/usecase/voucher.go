package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

var voucherMessages = map[domainErrors.VoucherReason]string{
	domainErrors.VoucherCodeNotFound:       "voucher code does not exist",
	domainErrors.VoucherNotYetActive:       "voucher is not active yet",
	domainErrors.VoucherExpired:            "voucher has expired",
	domainErrors.VoucherBelowMinimumOrder:  "order total is below the voucher minimum",
	domainErrors.VoucherGlobalLimitReached: "voucher usage limit reached",
	domainErrors.VoucherPerUserLimit:       "you have already used this voucher the maximum number of times",
	domainErrors.VoucherAccessDenied:       "voucher is not available for this account",
}

// VoucherMessage returns the default English message for reason.
func VoucherMessage(reason domainErrors.VoucherReason) string {
	return voucherMessages[reason]
}

// NormalizeVoucherCode trims and upper-cases a user supplied code.
func NormalizeVoucherCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// VoucherValidation is the outcome of the eligibility checks.
type VoucherValidation struct {
	Valid   bool
	Reason  domainErrors.VoucherReason
	Voucher *model.Voucher
}

// Err converts a failed validation into a typed error.
func (v VoucherValidation) Err(code string) error {
	if v.Valid {
		return nil
	}
	return &domainErrors.VoucherError{Code: code, Reason: v.Reason}
}

func rejected(reason domainErrors.VoucherReason, voucher *model.Voucher) VoucherValidation {
	return VoucherValidation{Reason: reason, Voucher: voucher}
}

// VoucherSummary is the public view of a voucher.
type VoucherSummary struct {
	Code          string
	Description   string
	DiscountType  model.DiscountType
	DiscountValue decimal.Decimal
	EndDate       time.Time
}

// ValidateVoucherResult answers whether a code can be used for a given total.
type ValidateVoucherResult struct {
	IsValid        bool
	Reason         domainErrors.VoucherReason
	ErrorMessage   string
	DiscountAmount *decimal.Decimal
	Voucher        *VoucherSummary
}

// ApplyVoucherResult reports the outcome of attaching a voucher to an order.
type ApplyVoucherResult struct {
	Success        bool
	Reason         domainErrors.VoucherReason
	ErrorMessage   string
	DiscountAmount *decimal.Decimal
	NewTotal       *decimal.Decimal
}

// VoucherUseCase validates vouchers and applies them to pending orders.
type VoucherUseCase struct {
	uow    repository.UnitOfWork
	logger *zap.Logger
	now    func() time.Time
}

// NewVoucherUseCase constructs VoucherUseCase.
func NewVoucherUseCase(uow repository.UnitOfWork, logger *zap.Logger) *VoucherUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoucherUseCase{uow: uow, logger: logger, now: time.Now}
}

// Validate runs the eligibility checks in their fixed order and stops at the
// first failure. With lock set the voucher row stays locked until the
// surrounding transaction ends.
func (u *VoucherUseCase) Validate(ctx context.Context, vouchers repository.VoucherRepository, code string, userID int64, orderTotal decimal.Decimal, lock bool) (VoucherValidation, error) {
	code = NormalizeVoucherCode(code)
	if code == "" {
		return rejected(domainErrors.VoucherCodeNotFound, nil), nil
	}

	lookup := vouchers.GetByCode
	if lock {
		lookup = vouchers.GetByCodeForUpdate
	}
	voucher, err := lookup(ctx, code)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return rejected(domainErrors.VoucherCodeNotFound, nil), nil
	}
	if err != nil {
		return VoucherValidation{}, fmt.Errorf("load voucher: %w", err)
	}

	now := u.now()
	if now.Before(voucher.StartDate) {
		return rejected(domainErrors.VoucherNotYetActive, voucher), nil
	}
	if now.After(voucher.EndDate) {
		return rejected(domainErrors.VoucherExpired, voucher), nil
	}

	if voucher.MinOrderValue != nil && orderTotal.LessThan(*voucher.MinOrderValue) {
		return rejected(domainErrors.VoucherBelowMinimumOrder, voucher), nil
	}

	if voucher.MaxUsage != nil {
		used, err := vouchers.CountUsage(ctx, voucher.ID)
		if err != nil {
			return VoucherValidation{}, fmt.Errorf("count voucher usage: %w", err)
		}
		if used >= *voucher.MaxUsage {
			return rejected(domainErrors.VoucherGlobalLimitReached, voucher), nil
		}
	}

	if voucher.MaxUsagePerUser != nil {
		used, err := vouchers.CountUserUsage(ctx, voucher.ID, userID)
		if err != nil {
			return VoucherValidation{}, fmt.Errorf("count user voucher usage: %w", err)
		}
		if used >= *voucher.MaxUsagePerUser {
			return rejected(domainErrors.VoucherPerUserLimit, voucher), nil
		}
	}

	if !voucher.IsPublic {
		granted, err := vouchers.HasGrant(ctx, voucher.ID, userID)
		if err != nil {
			return VoucherValidation{}, fmt.Errorf("check voucher grant: %w", err)
		}
		if !granted {
			return rejected(domainErrors.VoucherAccessDenied, voucher), nil
		}
	}

	return VoucherValidation{Valid: true, Voucher: voucher}, nil
}

// ValidateVoucher checks a code against an order total without side effects.
func (u *VoucherUseCase) ValidateVoucher(ctx context.Context, code string, orderTotal decimal.Decimal, userID int64) (ValidateVoucherResult, error) {
	if orderTotal.IsNegative() {
		return ValidateVoucherResult{}, fmt.Errorf("%w: order total must not be negative", domainErrors.ErrInvalidInput)
	}

	var result ValidateVoucherResult
	err := u.uow.Do(ctx, func(ctx context.Context, repos repository.Factory) error {
		validation, err := u.Validate(ctx, repos.Vouchers(), code, userID, orderTotal, false)
		if err != nil {
			return err
		}
		if !validation.Valid {
			result = ValidateVoucherResult{Reason: validation.Reason, ErrorMessage: VoucherMessage(validation.Reason)}
			return nil
		}

		voucher := validation.Voucher
		discount, err := CalculateDiscount(voucher.DiscountType, voucher.DiscountValue, orderTotal)
		if err != nil {
			return err
		}
		result = ValidateVoucherResult{
			IsValid:        true,
			DiscountAmount: &discount,
			Voucher:        summarize(voucher),
		}
		return nil
	})
	if err != nil {
		u.logFailure("voucher.validate.failed", err, zap.String("code", code))
		return ValidateVoucherResult{}, err
	}
	return result, nil
}

// ApplyVoucher attaches a voucher to a pending order owned by userID and
// records the usage. The voucher row is locked for the whole check-then-insert.
func (u *VoucherUseCase) ApplyVoucher(ctx context.Context, code string, orderID, userID int64) (ApplyVoucherResult, error) {
	var result ApplyVoucherResult
	err := u.uow.Do(ctx, func(ctx context.Context, repos repository.Factory) error {
		result = ApplyVoucherResult{}

		order, err := repos.Orders().GetByID(ctx, orderID)
		if err != nil {
			return mapOrderError(err, orderID)
		}
		customer, err := repos.Customers().GetByUserID(ctx, userID)
		if err != nil {
			return mapCustomerError(err)
		}
		if order.CustomerID != customer.ID {
			return fmt.Errorf("%w: order %d belongs to another customer", domainErrors.ErrPermissionDenied, orderID)
		}
		if order.Status != model.OrderStatusPending {
			return fmt.Errorf("%w: order %d is %s", domainErrors.ErrOrderNotPending, orderID, order.Status)
		}
		if order.VoucherID != nil {
			return fmt.Errorf("%w: order %d", domainErrors.ErrVoucherAlreadyUsed, orderID)
		}

		validation, err := u.Validate(ctx, repos.Vouchers(), code, userID, order.Subtotal, true)
		if err != nil {
			return err
		}
		if !validation.Valid {
			result = ApplyVoucherResult{Reason: validation.Reason, ErrorMessage: VoucherMessage(validation.Reason)}
			return nil
		}

		voucher := validation.Voucher
		discount, err := CalculateDiscount(voucher.DiscountType, voucher.DiscountValue, order.Subtotal)
		if err != nil {
			return err
		}

		now := u.now()
		order.VoucherID = valuePtr(voucher.ID)
		order.ApplyTotals(discount)
		order.UpdatedAt = now
		if err := repos.Orders().Update(ctx, order); err != nil {
			return err
		}

		if err := repos.Vouchers().RecordUsage(ctx, &model.VoucherUsage{
			VoucherID: voucher.ID,
			UserID:    userID,
			OrderID:   order.ID,
			UsedAt:    now,
		}); err != nil {
			return fmt.Errorf("record voucher usage: %w", err)
		}

		if err := syncPaymentAmount(ctx, repos.Payments(), order, now); err != nil {
			return err
		}

		result = ApplyVoucherResult{
			Success:        true,
			DiscountAmount: valuePtr(order.DiscountAmount),
			NewTotal:       valuePtr(order.Total),
		}
		return nil
	})
	if err != nil {
		u.logFailure("voucher.apply.failed", err, zap.Int64("order_id", orderID), zap.String("code", code))
		return ApplyVoucherResult{}, err
	}
	return result, nil
}

func (u *VoucherUseCase) logFailure(msg string, err error, fields ...zap.Field) {
	if domainErrors.KindOf(err) != domainErrors.KindInternal {
		return
	}
	u.logger.Error(msg, append(fields, zap.Error(err))...)
}

func summarize(voucher *model.Voucher) *VoucherSummary {
	return &VoucherSummary{
		Code:          voucher.Code,
		Description:   voucher.Description,
		DiscountType:  voucher.DiscountType,
		DiscountValue: voucher.DiscountValue,
		EndDate:       voucher.EndDate,
	}
}

func syncPaymentAmount(ctx context.Context, payments repository.PaymentRepository, order *model.Order, now time.Time) error {
	payment, err := payments.GetByOrderID(ctx, order.ID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load payment: %w", err)
	}
	payment.Amount = order.Total
	payment.UpdatedAt = now
	return payments.Update(ctx, payment)
}

func mapOrderError(err error, orderID int64) error {
	if errors.Is(err, domainErrors.ErrNotFound) {
		return fmt.Errorf("%w: %d", domainErrors.ErrOrderNotFound, orderID)
	}
	return err
}

func mapCustomerError(err error) error {
	if errors.Is(err, domainErrors.ErrNotFound) {
		return domainErrors.ErrCustomerNotFound
	}
	return err
}
