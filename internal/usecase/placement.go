package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// PlaceOrderItem is one requested order line.
type PlaceOrderItem struct {
	VariantID int64 `validate:"gt=0"`
	Quantity  int   `validate:"gt=0"`
}

// PlaceOrderCommand carries everything needed to turn cart lines into an order.
type PlaceOrderCommand struct {
	Notes             string              `validate:"max=1000"`
	ShippingAddressID int64               `validate:"gt=0"`
	PaymentMethod     model.PaymentMethod `validate:"required"`
	Items             []PlaceOrderItem    `validate:"required,min=1,dive"`
	VoucherCode       string              `validate:"max=64"`
}

// PlacementUseCase creates orders from carts.
type PlacementUseCase struct {
	uow      repository.UnitOfWork
	ledger   *InventoryLedger
	vouchers *VoucherUseCase
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewPlacementUseCase constructs PlacementUseCase.
func NewPlacementUseCase(
	uow repository.UnitOfWork,
	ledger *InventoryLedger,
	vouchers *VoucherUseCase,
	notifier Notifier,
	logger *zap.Logger,
) *PlacementUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacementUseCase{
		uow:      uow,
		ledger:   ledger,
		vouchers: vouchers,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// PlaceOrder reserves stock, applies the voucher, records payment and consumes
// cart lines in one transaction. Admins are notified after commit.
func (u *PlacementUseCase) PlaceOrder(ctx context.Context, actor model.Actor, cmd PlaceOrderCommand) (int64, error) {
	if err := u.validate(cmd); err != nil {
		return 0, err
	}

	var (
		placed   *model.Order
		adminIDs []int64
	)
	err := u.uow.Do(ctx, func(ctx context.Context, repos repository.Factory) error {
		order, admins, err := u.place(ctx, repos, actor, cmd)
		if err != nil {
			return err
		}
		placed, adminIDs = order, admins
		return nil
	})
	if err != nil {
		if domainErrors.KindOf(err) == domainErrors.KindInternal {
			u.logger.Error("order.place.failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		}
		return 0, err
	}

	u.logger.Info("order.placed",
		zap.Int64("order_id", placed.ID),
		zap.Int64("customer_id", placed.CustomerID),
		zap.String("total", placed.Total.StringFixed(2)),
	)
	u.notifyAdmins(ctx, placed, adminIDs)

	return placed.ID, nil
}

func (u *PlacementUseCase) validate(cmd PlaceOrderCommand) error {
	if err := validateCommand(cmd); err != nil {
		return err
	}
	if !cmd.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", domainErrors.ErrInvalidInput, cmd.PaymentMethod)
	}
	seen := make(map[int64]struct{}, len(cmd.Items))
	for _, item := range cmd.Items {
		if _, dup := seen[item.VariantID]; dup {
			return fmt.Errorf("%w: variant %d listed twice", domainErrors.ErrInvalidInput, item.VariantID)
		}
		seen[item.VariantID] = struct{}{}
	}
	return nil
}

func (u *PlacementUseCase) place(ctx context.Context, repos repository.Factory, actor model.Actor, cmd PlaceOrderCommand) (*model.Order, []int64, error) {
	customer, err := repos.Customers().GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, nil, mapCustomerError(err)
	}

	cart, err := repos.Carts().GetByUser(ctx, actor.UserID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil, nil, domainErrors.ErrEmptyCart
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, nil, domainErrors.ErrEmptyCart
	}

	now := u.now()
	order := &model.Order{
		CustomerID:        customer.ID,
		Status:            model.OrderStatusPending,
		Notes:             cmd.Notes,
		ShippingAddressID: cmd.ShippingAddressID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, line := range cmd.Items {
		idx := cart.Find(line.VariantID)
		if idx < 0 {
			return nil, nil, fmt.Errorf("%w: variant %d", domainErrors.ErrVariantNotInCart, line.VariantID)
		}
		if cart.Items[idx].Quantity < line.Quantity {
			return nil, nil, fmt.Errorf("%w: variant %d has %d in cart, requested %d",
				domainErrors.ErrQuantityExceedsCart, line.VariantID, cart.Items[idx].Quantity, line.Quantity)
		}

		variant, err := repos.Inventory().GetVariant(ctx, line.VariantID)
		if err != nil {
			return nil, nil, mapVariantError(err, line.VariantID)
		}
		if err := u.ledger.Reserve(ctx, repos.Inventory(), line.VariantID, line.Quantity); err != nil {
			return nil, nil, err
		}

		order.Items = append(order.Items, model.OrderItem{
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: variant.Price,
			Status:    model.OrderStatusPending,
		})
		cart.Take(line.VariantID, line.Quantity)
	}

	order.ApplyTotals(decimal.Zero)

	var voucher *model.Voucher
	if NormalizeVoucherCode(cmd.VoucherCode) != "" {
		validation, err := u.vouchers.Validate(ctx, repos.Vouchers(), cmd.VoucherCode, actor.UserID, order.Subtotal, true)
		if err != nil {
			return nil, nil, err
		}
		if !validation.Valid {
			return nil, nil, validation.Err(NormalizeVoucherCode(cmd.VoucherCode))
		}
		voucher = validation.Voucher

		discount, err := CalculateDiscount(voucher.DiscountType, voucher.DiscountValue, order.Subtotal)
		if err != nil {
			return nil, nil, err
		}
		order.VoucherID = valuePtr(voucher.ID)
		order.ApplyTotals(discount)
	}

	orderID, err := repos.Orders().Create(ctx, order)
	if err != nil {
		return nil, nil, fmt.Errorf("create order: %w", err)
	}
	order.ID = orderID

	if voucher != nil {
		if err := repos.Vouchers().RecordUsage(ctx, &model.VoucherUsage{
			VoucherID: voucher.ID,
			UserID:    actor.UserID,
			OrderID:   orderID,
			UsedAt:    now,
		}); err != nil {
			return nil, nil, fmt.Errorf("record voucher usage: %w", err)
		}
	}

	paymentStatus := model.PaymentStatusCompleted
	if cmd.PaymentMethod == model.PaymentMethodCashOnDelivery {
		paymentStatus = model.PaymentStatusPending
	}
	if err := repos.Payments().Create(ctx, &model.Payment{
		OrderID:   orderID,
		Method:    cmd.PaymentMethod,
		Amount:    order.Total,
		Status:    paymentStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return nil, nil, fmt.Errorf("create payment: %w", err)
	}

	if err := repos.Carts().Save(ctx, cart); err != nil {
		return nil, nil, fmt.Errorf("save cart: %w", err)
	}

	admins, err := repos.Users().ListIDsByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, nil, fmt.Errorf("list admins: %w", err)
	}

	return order, admins, nil
}

func (u *PlacementUseCase) notifyAdmins(ctx context.Context, order *model.Order, adminIDs []int64) {
	data := map[string]string{
		"type":     "order.placed",
		"order_id": strconv.FormatInt(order.ID, 10),
		"total":    order.Total.StringFixed(2),
	}
	body := fmt.Sprintf("Order #%d was placed, total %s", order.ID, order.Total.StringFixed(2))
	for _, id := range adminIDs {
		u.notifier.Notify(ctx, id, "New order", body, data)
	}
}
