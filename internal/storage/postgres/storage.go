package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// querier is the subset of pgx.Tx used by repositories.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var serializable = pgx.TxOptions{IsoLevel: pgx.Serializable}

// Storage is the PostgreSQL unit of work.
type Storage struct {
	pool        pgxPool
	logger      *zap.Logger
	maxAttempts int
}

// New creates storage with schema initialization. maxAttempts bounds how many
// times a conflicting transaction is run.
func New(ctx context.Context, dsn string, maxAttempts int, logger *zap.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	storage := &Storage{pool: pool, logger: logger, maxAttempts: maxAttempts}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// HealthCheck pings the database.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            role TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS customers (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT UNIQUE NOT NULL REFERENCES users(id),
            name TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS product_variants (
            id BIGSERIAL PRIMARY KEY,
            product_id BIGINT NOT NULL,
            sku TEXT UNIQUE NOT NULL,
            price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
            stock_quantity INTEGER NOT NULL CHECK (stock_quantity >= 0),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS carts (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT UNIQUE NOT NULL REFERENCES users(id)
        )`,
		`CREATE TABLE IF NOT EXISTS cart_items (
            id BIGSERIAL PRIMARY KEY,
            cart_id BIGINT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
            variant_id BIGINT NOT NULL REFERENCES product_variants(id),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            UNIQUE (cart_id, variant_id)
        )`,
		`CREATE TABLE IF NOT EXISTS vouchers (
            id BIGSERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            discount_type TEXT NOT NULL,
            discount_value NUMERIC(12,2) NOT NULL CHECK (discount_value >= 0),
            min_order_value NUMERIC(12,2),
            max_usage INTEGER,
            max_usage_per_user INTEGER,
            start_date TIMESTAMPTZ NOT NULL,
            end_date TIMESTAMPTZ NOT NULL,
            is_public BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CHECK (end_date > start_date)
        )`,
		`CREATE TABLE IF NOT EXISTS user_vouchers (
            user_id BIGINT NOT NULL REFERENCES users(id),
            voucher_id BIGINT NOT NULL REFERENCES vouchers(id),
            granted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (user_id, voucher_id)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            customer_id BIGINT NOT NULL REFERENCES customers(id),
            status TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            shipping_address_id BIGINT NOT NULL,
            subtotal NUMERIC(12,2) NOT NULL,
            discount_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            total NUMERIC(12,2) NOT NULL CHECK (total >= 0),
            voucher_id BIGINT REFERENCES vouchers(id),
            shipper_id BIGINT REFERENCES users(id),
            delivery_image TEXT NOT NULL DEFAULT '',
            cancel_reason TEXT NOT NULL DEFAULT '',
            confirmed_at TIMESTAMPTZ,
            preparing_at TIMESTAMPTZ,
            shipped_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            canceled_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            version BIGINT NOT NULL DEFAULT 1
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            variant_id BIGINT NOT NULL REFERENCES product_variants(id),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_price NUMERIC(12,2) NOT NULL,
            status TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS voucher_usages (
            id BIGSERIAL PRIMARY KEY,
            voucher_id BIGINT NOT NULL REFERENCES vouchers(id),
            user_id BIGINT NOT NULL REFERENCES users(id),
            order_id BIGINT NOT NULL REFERENCES orders(id),
            used_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (voucher_id, order_id)
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT UNIQUE NOT NULL REFERENCES orders(id),
            method TEXT NOT NULL,
            amount NUMERIC(12,2) NOT NULL,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_voucher_usages_user ON voucher_usages(voucher_id, user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// Do runs fn inside a serializable transaction. Serialization failures,
// deadlocks and version conflicts reported by fn rerun the whole function
// until the attempt budget is spent.
func (s *Storage) Do(ctx context.Context, fn func(ctx context.Context, repos repository.Factory) error) error {
	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.WithinTransaction(ctx, func(tx pgx.Tx) error {
			return fn(ctx, newFactory(tx))
		})
		if err == nil || !retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("transaction conflict",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxAttempts),
			zap.Error(err),
		)
	}

	if errors.Is(err, domainErrors.ErrConcurrentUpdate) {
		return err
	}
	return fmt.Errorf("%w: %v", domainErrors.ErrConcurrentUpdate, err)
}

// WithinTransaction executes function inside a serializable transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, serializable)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

func retryable(err error) bool {
	if errors.Is(err, domainErrors.ErrConcurrentUpdate) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeSerializationFailure || pgErr.Code == codeDeadlockDetected
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	return err
}

type factory struct {
	q querier
}

func newFactory(q querier) repository.Factory {
	return &factory{q: q}
}

func (f *factory) Users() repository.UserRepository          { return &userRepository{q: f.q} }
func (f *factory) Customers() repository.CustomerRepository  { return &customerRepository{q: f.q} }
func (f *factory) Orders() repository.OrderRepository        { return &orderRepository{q: f.q} }
func (f *factory) Vouchers() repository.VoucherRepository    { return &voucherRepository{q: f.q} }
func (f *factory) Inventory() repository.InventoryRepository { return &inventoryRepository{q: f.q} }
func (f *factory) Carts() repository.CartRepository          { return &cartRepository{q: f.q} }
func (f *factory) Payments() repository.PaymentRepository    { return &paymentRepository{q: f.q} }
