package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// UpdateStatusCommand requests a status change of an existing order.
type UpdateStatusCommand struct {
	OrderID       int64             `validate:"gt=0"`
	Status        model.OrderStatus `validate:"required"`
	Reason        string            `validate:"max=500"`
	ShipperID     *int64            `validate:"omitempty,gt=0"`
	DeliveryImage string            `validate:"max=2048"`
}

// TransitionUseCase moves orders along the status graph and applies the
// compensating writes each move needs.
type TransitionUseCase struct {
	uow      repository.UnitOfWork
	machine  *OrderStateMachine
	ledger   *InventoryLedger
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewTransitionUseCase constructs TransitionUseCase.
func NewTransitionUseCase(
	uow repository.UnitOfWork,
	machine *OrderStateMachine,
	ledger *InventoryLedger,
	notifier Notifier,
	logger *zap.Logger,
) *TransitionUseCase {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransitionUseCase{
		uow:      uow,
		machine:  machine,
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// UpdateOrderStatus applies the requested transition. The customer owning the
// order is notified after commit.
func (u *TransitionUseCase) UpdateOrderStatus(ctx context.Context, actor model.Actor, cmd UpdateStatusCommand) (bool, error) {
	if err := validateCommand(cmd); err != nil {
		return false, err
	}

	var (
		updated     *model.Order
		ownerUserID int64
		from        model.OrderStatus
	)
	err := u.uow.Do(ctx, func(ctx context.Context, repos repository.Factory) error {
		order, err := repos.Orders().GetByID(ctx, cmd.OrderID)
		if err != nil {
			return mapOrderError(err, cmd.OrderID)
		}
		customer, err := repos.Customers().GetByID(ctx, order.CustomerID)
		if err != nil {
			return mapCustomerError(err)
		}

		now := u.now()
		effects, err := u.machine.Apply(order, actor, customer.UserID, TransitionRequest{
			Target:        cmd.Status,
			Reason:        cmd.Reason,
			ShipperID:     cmd.ShipperID,
			DeliveryImage: cmd.DeliveryImage,
		}, now)
		if err != nil {
			return err
		}

		if effects.RestoreStock {
			for _, item := range order.Items {
				if err := u.ledger.Restore(ctx, repos.Inventory(), item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if effects.PaymentStatus != nil {
			if err := u.syncPayment(ctx, repos.Payments(), order.ID, *effects.PaymentStatus, now); err != nil {
				return err
			}
		}

		if err := repos.Orders().Update(ctx, order); err != nil {
			return err
		}

		updated, ownerUserID, from = order, customer.UserID, effects.From
		return nil
	})
	if err != nil {
		switch domainErrors.KindOf(err) {
		case domainErrors.KindInternal:
			u.logger.Error("order.transition.failed", zap.Int64("order_id", cmd.OrderID), zap.Error(err))
		case domainErrors.KindConflict:
			u.logger.Warn("order.transition.conflict", zap.Int64("order_id", cmd.OrderID), zap.Error(err))
		}
		return false, err
	}

	u.logger.Info("order.status.changed",
		zap.Int64("order_id", updated.ID),
		zap.String("from", string(from)),
		zap.String("to", string(updated.Status)),
		zap.String("actor_role", string(actor.Role)),
	)
	u.notifier.Notify(ctx, ownerUserID, "Order status updated",
		fmt.Sprintf("Order #%d is now %s", updated.ID, updated.Status),
		map[string]string{
			"type":     "order.status_changed",
			"order_id": strconv.FormatInt(updated.ID, 10),
			"from":     string(from),
			"status":   string(updated.Status),
		})

	return true, nil
}

func (u *TransitionUseCase) syncPayment(ctx context.Context, payments repository.PaymentRepository, orderID int64, status model.PaymentStatus, now time.Time) error {
	payment, err := payments.GetByOrderID(ctx, orderID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load payment: %w", err)
	}
	if payment.Status == status {
		return nil
	}
	payment.Status = status
	payment.UpdatedAt = now
	if err := payments.Update(ctx, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}
