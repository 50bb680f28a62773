package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CartRepository loads and stores shopping carts.
type CartRepository interface {
	GetByUser(ctx context.Context, userID int64) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
}
