package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create inserts the order with its items and assigns their identifiers.
	Create(ctx context.Context, order *model.Order) (int64, error)
	// GetByID loads the order with all of its items.
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// Update persists the mutable order fields and item statuses when the stored
	// version still matches order.Version. The version is bumped on success.
	Update(ctx context.Context, order *model.Order) error
}
