package usecase

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/test"
)

type fixture struct {
	store      *test.Store
	notifier   *test.NotifierStub
	vouchers   *VoucherUseCase
	placement  *PlacementUseCase
	transition *TransitionUseCase
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := test.NewStore()
	notifier := &test.NotifierStub{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ledger := NewInventoryLedger()

	vouchers := NewVoucherUseCase(store, zap.NewNop())
	vouchers.now = clock
	placement := NewPlacementUseCase(store, ledger, vouchers, notifier, zap.NewNop())
	placement.now = clock
	transition := NewTransitionUseCase(store, NewOrderStateMachine(), ledger, notifier, zap.NewNop())
	transition.now = clock

	return &fixture{
		store:      store,
		notifier:   notifier,
		vouchers:   vouchers,
		placement:  placement,
		transition: transition,
		now:        now,
	}
}

type voucherOption func(*model.Voucher)

func withMinOrder(v string) voucherOption {
	return func(voucher *model.Voucher) { voucher.MinOrderValue = valuePtr(dec(v)) }
}

func withMaxUsage(n int) voucherOption {
	return func(voucher *model.Voucher) { voucher.MaxUsage = &n }
}

func withMaxUsagePerUser(n int) voucherOption {
	return func(voucher *model.Voucher) { voucher.MaxUsagePerUser = &n }
}

func privateVoucher() voucherOption {
	return func(voucher *model.Voucher) { voucher.IsPublic = false }
}

func withWindow(start, end time.Time) voucherOption {
	return func(voucher *model.Voucher) {
		voucher.StartDate = start
		voucher.EndDate = end
	}
}

func (f *fixture) addVoucher(code string, kind model.DiscountType, value string, opts ...voucherOption) int64 {
	v := model.Voucher{
		Code:          code,
		DiscountType:  kind,
		DiscountValue: dec(value),
		StartDate:     f.now.Add(-24 * time.Hour),
		EndDate:       f.now.Add(24 * time.Hour),
		IsPublic:      true,
	}
	for _, opt := range opts {
		opt(&v)
	}
	return f.store.AddVoucher(v)
}

// customerWithCart registers a customer whose cart holds the given variants.
func (f *fixture) customerWithCart(items ...model.CartItem) model.Actor {
	userID, _ := f.store.AddCustomer()
	f.store.SetCart(userID, items...)
	return model.Actor{UserID: userID, Role: model.RoleCustomer}
}

// storedOrder stores an order in the given status for a fresh customer with
// a completed card payment.
func (f *fixture) storedOrder(status model.OrderStatus, items ...model.OrderItem) (model.Actor, int64) {
	userID, customerID := f.store.AddCustomer()
	order := model.Order{CustomerID: customerID, Items: items, Version: 1}
	if status != model.OrderStatusPending {
		confirmedAt := f.now.Add(-time.Hour)
		order.ConfirmedAt = &confirmedAt
	}
	order.SetStatus(status)
	order.ApplyTotals(dec("0"))
	id := f.store.PutOrder(order)
	f.store.PutPayment(model.Payment{OrderID: id, Method: model.PaymentMethodCard, Amount: order.Total, Status: model.PaymentStatusCompleted})
	return model.Actor{UserID: userID, Role: model.RoleCustomer}, id
}

func line(variantID int64, quantity int, price string) model.OrderItem {
	return model.OrderItem{VariantID: variantID, Quantity: quantity, UnitPrice: dec(price)}
}
