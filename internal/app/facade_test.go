package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	testhelpers "github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
)

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

func newFacade(health HealthChecker) (*StorefrontFacade, *testhelpers.Store, *testhelpers.NotifierStub) {
	store := testhelpers.NewStore()
	notifier := &testhelpers.NotifierStub{}
	ledger := usecase.NewInventoryLedger()
	vouchers := usecase.NewVoucherUseCase(store, zap.NewNop())
	placement := usecase.NewPlacementUseCase(store, ledger, vouchers, notifier, zap.NewNop())
	transitions := usecase.NewTransitionUseCase(store, usecase.NewOrderStateMachine(), ledger, notifier, zap.NewNop())
	tokens := pkgAuth.NewJWTStrategy("secret", pkgAuth.Options{TTL: time.Minute})

	return NewStorefrontFacade(placement, transitions, vouchers, tokens, health), store, notifier
}

func TestStorefrontFacadeOrderFlow(t *testing.T) {
	facade, store, notifier := newFacade(healthStub{})
	ctx := context.Background()

	adminID := store.AddUser(model.RoleAdmin)
	userID, _ := store.AddCustomer()
	variantID := store.AddVariant("20.00", 5)
	store.SetCart(userID, model.CartItem{VariantID: variantID, Quantity: 2})
	customer := model.Actor{UserID: userID, Role: model.RoleCustomer}

	orderID, err := facade.PlaceOrder(ctx, customer, usecase.PlaceOrderCommand{
		ShippingAddressID: 1,
		PaymentMethod:     model.PaymentMethodCashOnDelivery,
		Items:             []usecase.PlaceOrderItem{{VariantID: variantID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if got := store.Variant(variantID).StockQuantity; got != 3 {
		t.Fatalf("expected stock 3 after placement, got %d", got)
	}

	ok, err := facade.UpdateOrderStatus(ctx, model.Actor{UserID: adminID, Role: model.RoleAdmin}, usecase.UpdateStatusCommand{
		OrderID: orderID,
		Status:  model.OrderStatusConfirmed,
	})
	if err != nil || !ok {
		t.Fatalf("confirm order: %v", err)
	}
	order, found := store.Order(orderID)
	if !found || order.Status != model.OrderStatusConfirmed {
		t.Fatalf("unexpected order %+v", order)
	}

	var toCustomer int
	for _, n := range notifier.Sent() {
		if n.UserID == userID {
			toCustomer++
		}
	}
	if toCustomer != 1 {
		t.Fatalf("expected one customer notification, got %d", toCustomer)
	}
}

func TestStorefrontFacadeVouchers(t *testing.T) {
	facade, store, _ := newFacade(healthStub{})
	ctx := context.Background()
	now := time.Now()

	userID, customerID := store.AddCustomer()
	store.AddVoucher(model.Voucher{
		Code:          "SAVE10",
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartDate:     now.Add(-time.Hour),
		EndDate:       now.Add(time.Hour),
		IsPublic:      true,
	})

	result, err := facade.ValidateVoucher(ctx, "save10", decimal.NewFromInt(200), userID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !result.IsValid || !result.DiscountAmount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected validation %+v", result)
	}

	orderID := store.PutOrder(model.Order{
		CustomerID: customerID,
		Status:     model.OrderStatusPending,
		Items:      []model.OrderItem{{VariantID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(50)}},
		Subtotal:   decimal.NewFromInt(50),
		Total:      decimal.NewFromInt(50),
	})
	applied, err := facade.ApplyVoucher(ctx, "SAVE10", orderID, userID)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !applied.Success || !applied.NewTotal.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("unexpected apply result %+v", applied)
	}
}

func TestStorefrontFacadeParseActor(t *testing.T) {
	facade, _, _ := newFacade(healthStub{})
	token, err := facade.tokens.IssueToken(model.Actor{UserID: 12, Role: model.RoleShipper})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	actor, err := facade.ParseActor(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actor.UserID != 12 || actor.Role != model.RoleShipper {
		t.Fatalf("unexpected actor %+v", actor)
	}
	if _, err := facade.ParseActor("garbage"); !errors.Is(err, pkgAuth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestStorefrontFacadeParseActorDelegates(t *testing.T) {
	var seen string
	tokens := testhelpers.StrategyStub{
		ParseFn: func(token string) (model.Actor, error) {
			seen = token
			return model.Actor{UserID: 3, Role: model.RoleStaff}, nil
		},
	}
	facade := NewStorefrontFacade(nil, nil, nil, tokens, healthStub{})

	actor, err := facade.ParseActor("abc")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if seen != "abc" || actor.Role != model.RoleStaff {
		t.Fatalf("expected delegation, got %q %+v", seen, actor)
	}
}

func TestStorefrontFacadeErrorsPassThrough(t *testing.T) {
	facade, store, _ := newFacade(healthStub{})
	userID, _ := store.AddCustomer()

	_, err := facade.PlaceOrder(context.Background(), model.Actor{UserID: userID, Role: model.RoleCustomer}, usecase.PlaceOrderCommand{
		ShippingAddressID: 1,
		PaymentMethod:     model.PaymentMethodCard,
		Items:             []usecase.PlaceOrderItem{{VariantID: 1, Quantity: 1}},
	})
	if !errors.Is(err, domainErrors.ErrEmptyCart) {
		t.Fatalf("expected empty cart, got %v", err)
	}
}

func TestStorefrontFacadeHealthCheck(t *testing.T) {
	facade, _, _ := newFacade(healthStub{})
	if err := facade.HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	down := errors.New("db down")
	facade, _, _ = newFacade(healthStub{err: down})
	if err := facade.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected health error, got %v", err)
	}
}
