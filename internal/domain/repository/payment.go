package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentRepository manages order payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)
	// Update persists status and amount of an existing payment.
	Update(ctx context.Context, payment *model.Payment) error
}
