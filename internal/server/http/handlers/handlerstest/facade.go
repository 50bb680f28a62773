// Package handlerstest provides facade stubs for HTTP layer tests.
package handlerstest

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn  func(context.Context, model.Actor, usecase.PlaceOrderCommand) (int64, error)
	UpdateFn func(context.Context, model.Actor, usecase.UpdateStatusCommand) (bool, error)
}

// PlaceOrder delegates to provided function or returns order 1.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, actor model.Actor, cmd usecase.PlaceOrderCommand) (int64, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, actor, cmd)
	}
	return 1, nil
}

// UpdateOrderStatus delegates to provided function or reports success.
func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, actor model.Actor, cmd usecase.UpdateStatusCommand) (bool, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, actor, cmd)
	}
	return true, nil
}

// VoucherFacadeStub simulates voucher operations.
type VoucherFacadeStub struct {
	ValidateFn func(context.Context, string, decimal.Decimal, int64) (usecase.ValidateVoucherResult, error)
	ApplyFn    func(context.Context, string, int64, int64) (usecase.ApplyVoucherResult, error)
}

// ValidateVoucher returns the configured result or a valid zero discount.
func (s VoucherFacadeStub) ValidateVoucher(ctx context.Context, code string, orderTotal decimal.Decimal, userID int64) (usecase.ValidateVoucherResult, error) {
	if s.ValidateFn != nil {
		return s.ValidateFn(ctx, code, orderTotal, userID)
	}
	zero := decimal.Zero
	return usecase.ValidateVoucherResult{IsValid: true, DiscountAmount: &zero}, nil
}

// ApplyVoucher returns the configured result or a successful application.
func (s VoucherFacadeStub) ApplyVoucher(ctx context.Context, code string, orderID, userID int64) (usecase.ApplyVoucherResult, error) {
	if s.ApplyFn != nil {
		return s.ApplyFn(ctx, code, orderID, userID)
	}
	return usecase.ApplyVoucherResult{Success: true}, nil
}

// StorefrontFacadeStub aggregates facade dependencies for HTTP layer tests.
type StorefrontFacadeStub struct {
	testhelpers.TokenParserStub
	OrderFacadeStub
	VoucherFacadeStub
	HealthErr error
}

// HealthCheck returns HealthErr.
func (s StorefrontFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}
