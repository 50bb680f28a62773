package usecase

import (
	"fmt"
	"slices"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:    {model.OrderStatusConfirmed, model.OrderStatusCanceled, model.OrderStatusProcessing},
	model.OrderStatusConfirmed:  {model.OrderStatusProcessing, model.OrderStatusCanceled},
	model.OrderStatusProcessing: {model.OrderStatusConfirmed, model.OrderStatusShipped},
	model.OrderStatusShipped:    {model.OrderStatusDelivered, model.OrderStatusCanceled, model.OrderStatusReturned},
	model.OrderStatusDelivered:  {model.OrderStatusReturned},
	model.OrderStatusReturned:   {model.OrderStatusRefunded},

	// Legacy rows only; nothing transitions into these.
	model.OrderStatusReceivered: {model.OrderStatusPending},
	model.OrderStatusSendered:   {model.OrderStatusPending},
}

// TransitionRequest is the target status with its transition specific payload.
type TransitionRequest struct {
	Target        model.OrderStatus
	Reason        string
	ShipperID     *int64
	DeliveryImage string
}

// TransitionEffects lists the compensating writes a transition needs outside the order row.
type TransitionEffects struct {
	From          model.OrderStatus
	RestoreStock  bool
	PaymentStatus *model.PaymentStatus
}

// OrderStateMachine validates and applies order status transitions.
type OrderStateMachine struct{}

// NewOrderStateMachine constructs OrderStateMachine.
func NewOrderStateMachine() *OrderStateMachine {
	return &OrderStateMachine{}
}

// CanTransition reports whether the table has an edge from -> to.
func (m *OrderStateMachine) CanTransition(from, to model.OrderStatus) bool {
	return slices.Contains(orderTransitions[from], to)
}

// AllowedTransitions returns the table edges leaving from.
func (m *OrderStateMachine) AllowedTransitions(from model.OrderStatus) []model.OrderStatus {
	return slices.Clone(orderTransitions[from])
}

// Authorize checks the actor role first and the transition table second.
// ownerUserID is the user owning the order's customer profile.
func (m *OrderStateMachine) Authorize(actor model.Actor, order *model.Order, ownerUserID int64, target model.OrderStatus) error {
	if !target.Valid() {
		return fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidInput, target)
	}

	switch actor.Role {
	case model.RoleShipper:
		if order.Status != model.OrderStatusShipped || target != model.OrderStatusDelivered {
			return fmt.Errorf("%w: shipper may only mark shipped orders delivered", domainErrors.ErrPermissionDenied)
		}
		return nil
	case model.RoleAdmin:
		if target == model.OrderStatusCanceled && !order.Status.Terminal() {
			return nil
		}
	case model.RoleCustomer:
		if ownerUserID != actor.UserID {
			return fmt.Errorf("%w: order %d belongs to another customer", domainErrors.ErrPermissionDenied, order.ID)
		}
	case model.RoleStaff:
	default:
		return fmt.Errorf("%w: unknown role %q", domainErrors.ErrPermissionDenied, actor.Role)
	}

	if !m.CanTransition(order.Status, target) {
		return &domainErrors.TransitionError{From: order.Status, To: target}
	}
	return nil
}

// Apply authorizes the move and writes it onto order. Nothing is mutated when
// an error is returned.
func (m *OrderStateMachine) Apply(order *model.Order, actor model.Actor, ownerUserID int64, req TransitionRequest, now time.Time) (TransitionEffects, error) {
	if err := m.Authorize(actor, order, ownerUserID, req.Target); err != nil {
		return TransitionEffects{}, err
	}

	reason := strings.TrimSpace(req.Reason)
	if req.Target == model.OrderStatusCanceled && reason == "" && actor.Role != model.RoleAdmin {
		return TransitionEffects{}, domainErrors.ErrCancelReasonRequired
	}

	effects := TransitionEffects{From: order.Status}

	switch req.Target {
	case model.OrderStatusConfirmed:
		order.ConfirmedAt = &now
	case model.OrderStatusProcessing:
		order.PreparingAt = &now
	case model.OrderStatusShipped:
		order.ShippedAt = &now
		switch {
		case req.ShipperID != nil:
			order.ShipperID = valuePtr(*req.ShipperID)
		case actor.Role == model.RoleShipper:
			order.ShipperID = valuePtr(actor.UserID)
		}
		if req.DeliveryImage != "" {
			order.DeliveryImage = req.DeliveryImage
		}
	case model.OrderStatusDelivered:
		order.DeliveredAt = &now
		if req.DeliveryImage != "" {
			order.DeliveryImage = req.DeliveryImage
		}
		effects.PaymentStatus = valuePtr(model.PaymentStatusCompleted)
	case model.OrderStatusCanceled:
		order.CanceledAt = &now
		order.CancelReason = reason
		effects.RestoreStock = stockReserved(order)
		effects.PaymentStatus = valuePtr(model.PaymentStatusRefunded)
	}

	order.SetStatus(req.Target)
	order.UpdatedAt = now
	return effects, nil
}

// stockReserved reports whether the order progressed to Confirmed or beyond.
func stockReserved(order *model.Order) bool {
	if order.ConfirmedAt != nil {
		return true
	}
	switch order.Status {
	case model.OrderStatusConfirmed,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
		model.OrderStatusReturned:
		return true
	default:
		return false
	}
}

func valuePtr[T any](v T) *T {
	return &v
}
