package handlers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// AuthFacade resolves bearer tokens into actors.
type AuthFacade interface {
	ParseActor(token string) (model.Actor, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, actor model.Actor, cmd usecase.PlaceOrderCommand) (int64, error)
	UpdateOrderStatus(ctx context.Context, actor model.Actor, cmd usecase.UpdateStatusCommand) (bool, error)
}

// VoucherFacade provides voucher checks and application.
type VoucherFacade interface {
	ValidateVoucher(ctx context.Context, code string, orderTotal decimal.Decimal, userID int64) (usecase.ValidateVoucherResult, error)
	ApplyVoucher(ctx context.Context, code string, orderID, userID int64) (usecase.ApplyVoucherResult, error)
}

// HealthFacade reports backing store availability.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	AuthFacade
	OrderFacade
	VoucherFacade
	HealthFacade
}
