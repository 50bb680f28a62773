package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	Vouchers() VoucherRepository
	Inventory() InventoryRepository
	Carts() CartRepository
	Payments() PaymentRepository
}

// UnitOfWork runs fn against repositories bound to a single transaction.
// A non-nil error from fn rolls every write back. Implementations may run fn
// more than once when the store reports a serialization conflict, so fn must
// not have side effects outside the repositories it is given.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Factory) error) error
}
