package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade is the single entry point the transport layer talks to.
type StorefrontFacade struct {
	placement   *usecase.PlacementUseCase
	transitions *usecase.TransitionUseCase
	vouchers    *usecase.VoucherUseCase
	tokens      pkgAuth.Strategy
	health      HealthChecker
}

func NewStorefrontFacade(
	placement *usecase.PlacementUseCase,
	transitions *usecase.TransitionUseCase,
	vouchers *usecase.VoucherUseCase,
	tokens pkgAuth.Strategy,
	health HealthChecker,
) *StorefrontFacade {
	return &StorefrontFacade{
		placement:   placement,
		transitions: transitions,
		vouchers:    vouchers,
		tokens:      tokens,
		health:      health,
	}
}

func (f *StorefrontFacade) ParseActor(token string) (model.Actor, error) {
	return f.tokens.ParseActor(token)
}

func (f *StorefrontFacade) PlaceOrder(ctx context.Context, actor model.Actor, cmd usecase.PlaceOrderCommand) (int64, error) {
	return f.placement.PlaceOrder(ctx, actor, cmd)
}

func (f *StorefrontFacade) UpdateOrderStatus(ctx context.Context, actor model.Actor, cmd usecase.UpdateStatusCommand) (bool, error) {
	return f.transitions.UpdateOrderStatus(ctx, actor, cmd)
}

func (f *StorefrontFacade) ValidateVoucher(ctx context.Context, code string, orderTotal decimal.Decimal, userID int64) (usecase.ValidateVoucherResult, error) {
	return f.vouchers.ValidateVoucher(ctx, code, orderTotal, userID)
}

func (f *StorefrontFacade) ApplyVoucher(ctx context.Context, code string, orderID, userID int64) (usecase.ApplyVoucherResult, error) {
	return f.vouchers.ApplyVoucher(ctx, code, orderID, userID)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}
