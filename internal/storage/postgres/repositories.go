package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type userRepository struct {
	q querier
}

type customerRepository struct {
	q querier
}

type orderRepository struct {
	q querier
}

type voucherRepository struct {
	q querier
}

type inventoryRepository struct {
	q querier
}

type cartRepository struct {
	q querier
}

type paymentRepository struct {
	q querier
}

// --- UserRepository implementation ---

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, email, role, created_at FROM users WHERE id=$1`
	var u model.User
	if err := r.q.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Role, &u.CreatedAt); err != nil {
		return nil, mapNoRows(err)
	}
	return &u, nil
}

func (r *userRepository) ListIDsByRole(ctx context.Context, role model.Role) ([]int64, error) {
	const query = `SELECT id FROM users WHERE role=$1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// --- CustomerRepository implementation ---

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return r.get(ctx, `SELECT id, user_id, name FROM customers WHERE id=$1`, id)
}

func (r *customerRepository) GetByUserID(ctx context.Context, userID int64) (*model.Customer, error) {
	return r.get(ctx, `SELECT id, user_id, name FROM customers WHERE user_id=$1`, userID)
}

func (r *customerRepository) get(ctx context.Context, query string, arg int64) (*model.Customer, error) {
	var c model.Customer
	if err := r.q.QueryRow(ctx, query, arg).Scan(&c.ID, &c.UserID, &c.Name); err != nil {
		return nil, mapNoRows(err)
	}
	return &c, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (int64, error) {
	const insertOrder = `INSERT INTO orders (customer_id, status, notes, shipping_address_id, subtotal, discount_amount, total, voucher_id)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                         RETURNING id, created_at, updated_at, version`
	err := r.q.QueryRow(ctx, insertOrder,
		order.CustomerID, order.Status, order.Notes, order.ShippingAddressID,
		order.Subtotal, order.DiscountAmount, order.Total, order.VoucherID,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.Version)
	if err != nil {
		return 0, err
	}

	const insertItem = `INSERT INTO order_items (order_id, variant_id, quantity, unit_price, status)
                        VALUES ($1, $2, $3, $4, $5) RETURNING id`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := r.q.QueryRow(ctx, insertItem, order.ID, item.VariantID, item.Quantity, item.UnitPrice, item.Status).Scan(&item.ID); err != nil {
			return 0, err
		}
	}
	return order.ID, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT id, customer_id, status, notes, shipping_address_id, subtotal, discount_amount, total,
                          voucher_id, shipper_id, delivery_image, cancel_reason,
                          confirmed_at, preparing_at, shipped_at, delivered_at, canceled_at,
                          created_at, updated_at, version
                   FROM orders WHERE id=$1`
	var o model.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.Notes, &o.ShippingAddressID, &o.Subtotal, &o.DiscountAmount, &o.Total,
		&o.VoucherID, &o.ShipperID, &o.DeliveryImage, &o.CancelReason,
		&o.ConfirmedAt, &o.PreparingAt, &o.ShippedAt, &o.DeliveredAt, &o.CanceledAt,
		&o.CreatedAt, &o.UpdatedAt, &o.Version,
	)
	if err != nil {
		return nil, mapNoRows(err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *orderRepository) listItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	const query = `SELECT id, order_id, variant_id, quantity, unit_price, status
                   FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.Quantity, &item.UnitPrice, &item.Status); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	const updateOrder = `UPDATE orders
                         SET status=$1, subtotal=$2, discount_amount=$3, total=$4, voucher_id=$5, shipper_id=$6,
                             delivery_image=$7, cancel_reason=$8, confirmed_at=$9, preparing_at=$10,
                             shipped_at=$11, delivered_at=$12, canceled_at=$13,
                             updated_at=NOW(), version=version+1
                         WHERE id=$14 AND version=$15
                         RETURNING version, updated_at`
	err := r.q.QueryRow(ctx, updateOrder,
		order.Status, order.Subtotal, order.DiscountAmount, order.Total, order.VoucherID, order.ShipperID,
		order.DeliveryImage, order.CancelReason, order.ConfirmedAt, order.PreparingAt,
		order.ShippedAt, order.DeliveredAt, order.CanceledAt,
		order.ID, order.Version,
	).Scan(&order.Version, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainErrors.ErrConcurrentUpdate
		}
		return err
	}

	const updateItems = `UPDATE order_items SET status=$1 WHERE order_id=$2`
	if _, err := r.q.Exec(ctx, updateItems, order.Status, order.ID); err != nil {
		return err
	}
	return nil
}

// --- VoucherRepository implementation ---

const selectVoucher = `SELECT id, code, description, discount_type, discount_value, min_order_value,
                              max_usage, max_usage_per_user, start_date, end_date, is_public, created_at
                       FROM vouchers WHERE code=$1`

func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	return r.get(ctx, selectVoucher, code)
}

func (r *voucherRepository) GetByCodeForUpdate(ctx context.Context, code string) (*model.Voucher, error) {
	return r.get(ctx, selectVoucher+` FOR UPDATE`, code)
}

func (r *voucherRepository) get(ctx context.Context, query, code string) (*model.Voucher, error) {
	var (
		v        model.Voucher
		minOrder decimal.NullDecimal
	)
	err := r.q.QueryRow(ctx, query, code).Scan(
		&v.ID, &v.Code, &v.Description, &v.DiscountType, &v.DiscountValue, &minOrder,
		&v.MaxUsage, &v.MaxUsagePerUser, &v.StartDate, &v.EndDate, &v.IsPublic, &v.CreatedAt,
	)
	if err != nil {
		return nil, mapNoRows(err)
	}
	if minOrder.Valid {
		v.MinOrderValue = &minOrder.Decimal
	}
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("stored voucher %q: %w", v.Code, err)
	}
	return &v, nil
}

func (r *voucherRepository) CountUsage(ctx context.Context, voucherID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM voucher_usages WHERE voucher_id=$1`
	var n int
	if err := r.q.QueryRow(ctx, query, voucherID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *voucherRepository) CountUserUsage(ctx context.Context, voucherID, userID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM voucher_usages WHERE voucher_id=$1 AND user_id=$2`
	var n int
	if err := r.q.QueryRow(ctx, query, voucherID, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *voucherRepository) HasGrant(ctx context.Context, voucherID, userID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM user_vouchers WHERE voucher_id=$1 AND user_id=$2)`
	var ok bool
	if err := r.q.QueryRow(ctx, query, voucherID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *voucherRepository) RecordUsage(ctx context.Context, usage *model.VoucherUsage) error {
	const query = `INSERT INTO voucher_usages (voucher_id, user_id, order_id) VALUES ($1, $2, $3) RETURNING id, used_at`
	err := r.q.QueryRow(ctx, query, usage.VoucherID, usage.UserID, usage.OrderID).Scan(&usage.ID, &usage.UsedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// --- InventoryRepository implementation ---

func (r *inventoryRepository) GetVariant(ctx context.Context, variantID int64) (*model.ProductVariant, error) {
	const query = `SELECT id, product_id, sku, price, stock_quantity, updated_at FROM product_variants WHERE id=$1`
	var v model.ProductVariant
	err := r.q.QueryRow(ctx, query, variantID).Scan(&v.ID, &v.ProductID, &v.SKU, &v.Price, &v.StockQuantity, &v.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &v, nil
}

func (r *inventoryRepository) Decrement(ctx context.Context, variantID int64, quantity int) (bool, error) {
	const query = `UPDATE product_variants SET stock_quantity = stock_quantity - $2, updated_at=NOW()
                   WHERE id=$1 AND stock_quantity >= $2`
	tag, err := r.q.Exec(ctx, query, variantID, quantity)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *inventoryRepository) Increment(ctx context.Context, variantID int64, quantity int) error {
	const query = `UPDATE product_variants SET stock_quantity = stock_quantity + $2, updated_at=NOW() WHERE id=$1`
	tag, err := r.q.Exec(ctx, query, variantID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- CartRepository implementation ---

func (r *cartRepository) GetByUser(ctx context.Context, userID int64) (*model.Cart, error) {
	cart := model.Cart{UserID: userID}
	if err := r.q.QueryRow(ctx, `SELECT id FROM carts WHERE user_id=$1`, userID).Scan(&cart.ID); err != nil {
		return nil, mapNoRows(err)
	}

	rows, err := r.q.Query(ctx, `SELECT variant_id, quantity FROM cart_items WHERE cart_id=$1 ORDER BY id`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.VariantID, &item.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save replaces the stored cart lines with cart.Items.
func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) error {
	if cart.ID == 0 {
		const upsertCart = `INSERT INTO carts (user_id) VALUES ($1)
                            ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
                            RETURNING id`
		if err := r.q.QueryRow(ctx, upsertCart, cart.UserID).Scan(&cart.ID); err != nil {
			return err
		}
	}

	if _, err := r.q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cart.ID); err != nil {
		return err
	}

	const insertItem = `INSERT INTO cart_items (cart_id, variant_id, quantity) VALUES ($1, $2, $3)`
	for _, item := range cart.Items {
		if _, err := r.q.Exec(ctx, insertItem, cart.ID, item.VariantID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// --- PaymentRepository implementation ---

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	const query = `INSERT INTO payments (order_id, method, amount, status) VALUES ($1, $2, $3, $4)
                   RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, payment.OrderID, payment.Method, payment.Amount, payment.Status).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	const query = `SELECT id, order_id, method, amount, status, created_at, updated_at FROM payments WHERE order_id=$1`
	var p model.Payment
	err := r.q.QueryRow(ctx, query, orderID).Scan(&p.ID, &p.OrderID, &p.Method, &p.Amount, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapNoRows(err)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	const query = `UPDATE payments SET status=$1, amount=$2, updated_at=NOW() WHERE id=$3 RETURNING updated_at`
	if err := r.q.QueryRow(ctx, query, payment.Status, payment.Amount, payment.ID).Scan(&payment.UpdatedAt); err != nil {
		return mapNoRows(err)
	}
	return nil
}
