package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// InventoryRepository mutates variant stock.
type InventoryRepository interface {
	GetVariant(ctx context.Context, variantID int64) (*model.ProductVariant, error)
	// Decrement subtracts quantity only when enough stock is left and reports
	// whether the row was changed.
	Decrement(ctx context.Context, variantID int64, quantity int) (bool, error)
	Increment(ctx context.Context, variantID int64, quantity int) error
}
