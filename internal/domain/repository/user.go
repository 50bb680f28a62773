package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// UserRepository describes persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	ListIDsByRole(ctx context.Context, role model.Role) ([]int64, error)
}

// CustomerRepository resolves buyer profiles.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Customer, error)
}
