package test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

type grantKey struct {
	voucherID int64
	userID    int64
}

type storeData struct {
	users     map[int64]model.User
	customers map[int64]model.Customer
	orders    map[int64]model.Order
	vouchers  map[int64]model.Voucher
	usages    []model.VoucherUsage
	grants    map[grantKey]struct{}
	variants  map[int64]model.ProductVariant
	carts     map[int64]model.Cart
	payments  map[int64]model.Payment
	nextID    int64
}

func (d *storeData) clone() *storeData {
	c := &storeData{
		users:     make(map[int64]model.User, len(d.users)),
		customers: make(map[int64]model.Customer, len(d.customers)),
		orders:    make(map[int64]model.Order, len(d.orders)),
		vouchers:  make(map[int64]model.Voucher, len(d.vouchers)),
		usages:    slices.Clone(d.usages),
		grants:    make(map[grantKey]struct{}, len(d.grants)),
		variants:  make(map[int64]model.ProductVariant, len(d.variants)),
		carts:     make(map[int64]model.Cart, len(d.carts)),
		payments:  make(map[int64]model.Payment, len(d.payments)),
		nextID:    d.nextID,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.customers {
		c.customers[k] = v
	}
	for k, v := range d.orders {
		v.Items = slices.Clone(v.Items)
		c.orders[k] = v
	}
	for k, v := range d.vouchers {
		c.vouchers[k] = v
	}
	for k, v := range d.grants {
		c.grants[k] = v
	}
	for k, v := range d.variants {
		c.variants[k] = v
	}
	for k, v := range d.carts {
		v.Items = slices.Clone(v.Items)
		c.carts[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	return c
}

func (d *storeData) next() int64 {
	d.nextID++
	return d.nextID
}

// Store is an in-memory transactional store. Units of work run one at a time
// against a private copy that replaces the shared state only on success.
type Store struct {
	mu   sync.Mutex
	data *storeData

	// MaxAttempts bounds reruns of a unit of work that reported a conflict.
	MaxAttempts int
	// OrderUpdateConflicts makes the next N order updates fail with a version conflict.
	OrderUpdateConflicts int
	// Err, when set, is returned by every repository call.
	Err error

	Commits   int
	Rollbacks int
	Attempts  int

	voucherLocks map[string]int
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		data: &storeData{
			users:     map[int64]model.User{},
			customers: map[int64]model.Customer{},
			orders:    map[int64]model.Order{},
			vouchers:  map[int64]model.Voucher{},
			grants:    map[grantKey]struct{}{},
			variants:  map[int64]model.ProductVariant{},
			carts:     map[int64]model.Cart{},
			payments:  map[int64]model.Payment{},
		},
		MaxAttempts:  3,
		voucherLocks: map[string]int{},
	}
}

var _ repository.UnitOfWork = (*Store)(nil)

// Do runs fn inside a serialized transaction.
func (s *Store) Do(ctx context.Context, fn func(context.Context, repository.Factory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		s.Attempts++
		tx := &storeTx{store: s, data: s.data.clone()}
		err = fn(ctx, tx)
		if err == nil {
			s.data = tx.data
			s.Commits++
			return nil
		}
		s.Rollbacks++
		if !errors.Is(err, domainErrors.ErrConcurrentUpdate) {
			return err
		}
	}
	return err
}

// AddUser stores a user with the role and returns its identifier.
func (s *Store) AddUser(role model.Role) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.next()
	s.data.users[id] = model.User{ID: id, Role: role, Email: RandomEmail()}
	return id
}

// AddCustomer creates a customer user with its profile and returns both identifiers.
func (s *Store) AddCustomer() (userID, customerID int64) {
	userID = s.AddUser(model.RoleCustomer)
	s.mu.Lock()
	defer s.mu.Unlock()
	customerID = s.data.next()
	s.data.customers[customerID] = model.Customer{ID: customerID, UserID: userID, Name: "Customer " + RandomToken(5)}
	return userID, customerID
}

// AddVariant stores a variant with price and stock.
func (s *Store) AddVariant(price string, stock int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.data.next()
	s.data.variants[id] = model.ProductVariant{ID: id, SKU: RandomSKU(), Price: decimal.RequireFromString(price), StockQuantity: stock}
	return id
}

// SetCart replaces the cart of a user.
func (s *Store) SetCart(userID int64, items ...model.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.data.carts[userID]
	if !ok {
		cart = model.Cart{ID: s.data.next(), UserID: userID}
	}
	cart.Items = slices.Clone(items)
	s.data.carts[userID] = cart
}

// AddVoucher stores a voucher and returns its identifier.
func (s *Store) AddVoucher(v model.Voucher) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = s.data.next()
	s.data.vouchers[v.ID] = v
	return v.ID
}

// Grant gives a user access to a private voucher.
func (s *Store) Grant(voucherID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.grants[grantKey{voucherID, userID}] = struct{}{}
}

// PutOrder stores an order as is and returns its identifier.
func (s *Store) PutOrder(order model.Order) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		order.ID = s.data.next()
	}
	order.Items = slices.Clone(order.Items)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	s.data.orders[order.ID] = order
	return order.ID
}

// PutPayment stores a payment for its order.
func (s *Store) PutPayment(payment model.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment.ID = s.data.next()
	s.data.payments[payment.OrderID] = payment
}

// Variant returns the committed state of a variant.
func (s *Store) Variant(id int64) model.ProductVariant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.variants[id]
}

// Order returns the committed state of an order.
func (s *Store) Order(id int64) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.data.orders[id]
	order.Items = slices.Clone(order.Items)
	return order, ok
}

// OrderCount returns the number of committed orders.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.orders)
}

// Payment returns the committed payment of an order.
func (s *Store) Payment(orderID int64) (model.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.payments[orderID]
	return p, ok
}

// Cart returns the committed cart of a user.
func (s *Store) Cart(userID int64) model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.data.carts[userID]
	cart.Items = slices.Clone(cart.Items)
	return cart
}

// VoucherLocks reports how many row-locking reads hit the voucher code.
func (s *Store) VoucherLocks(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voucherLocks[code]
}

// Usages returns committed voucher usage rows of a voucher.
func (s *Store) Usages(voucherID int64) []model.VoucherUsage {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.VoucherUsage
	for _, u := range s.data.usages {
		if u.VoucherID == voucherID {
			out = append(out, u)
		}
	}
	return out
}

type storeTx struct {
	store *Store
	data  *storeData
}

func (t *storeTx) Users() repository.UserRepository { return txUsers{t} }
func (t *storeTx) Customers() repository.CustomerRepository { return txCustomers{t} }
func (t *storeTx) Orders() repository.OrderRepository { return txOrders{t} }
func (t *storeTx) Vouchers() repository.VoucherRepository { return txVouchers{t} }
func (t *storeTx) Inventory() repository.InventoryRepository { return txInventory{t} }
func (t *storeTx) Carts() repository.CartRepository { return txCarts{t} }
func (t *storeTx) Payments() repository.PaymentRepository { return txPayments{t} }

type txUsers struct{ tx *storeTx }

func (r txUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	user, ok := r.tx.data.users[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &user, nil
}

func (r txUsers) ListIDsByRole(_ context.Context, role model.Role) ([]int64, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	var ids []int64
	for id, user := range r.tx.data.users {
		if user.Role == role {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

type txCustomers struct{ tx *storeTx }

func (r txCustomers) GetByID(_ context.Context, id int64) (*model.Customer, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	customer, ok := r.tx.data.customers[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &customer, nil
}

func (r txCustomers) GetByUserID(_ context.Context, userID int64) (*model.Customer, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	for _, customer := range r.tx.data.customers {
		if customer.UserID == userID {
			c := customer
			return &c, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

type txOrders struct{ tx *storeTx }

func (r txOrders) Create(_ context.Context, order *model.Order) (int64, error) {
	if err := r.tx.store.Err; err != nil {
		return 0, err
	}
	order.ID = r.tx.data.next()
	order.Version = 1
	for i := range order.Items {
		order.Items[i].ID = r.tx.data.next()
		order.Items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = slices.Clone(order.Items)
	r.tx.data.orders[order.ID] = stored
	return order.ID, nil
}

func (r txOrders) GetByID(_ context.Context, id int64) (*model.Order, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	order, ok := r.tx.data.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	order.Items = slices.Clone(order.Items)
	return &order, nil
}

func (r txOrders) Update(_ context.Context, order *model.Order) error {
	if err := r.tx.store.Err; err != nil {
		return err
	}
	if r.tx.store.OrderUpdateConflicts > 0 {
		r.tx.store.OrderUpdateConflicts--
		return domainErrors.ErrConcurrentUpdate
	}
	stored, ok := r.tx.data.orders[order.ID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	if stored.Version != order.Version {
		return domainErrors.ErrConcurrentUpdate
	}
	order.Version++
	updated := *order
	updated.Items = slices.Clone(order.Items)
	r.tx.data.orders[order.ID] = updated
	return nil
}

type txVouchers struct{ tx *storeTx }

func (r txVouchers) GetByCode(_ context.Context, code string) (*model.Voucher, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	for _, v := range r.tx.data.vouchers {
		if v.Code == code {
			voucher := v
			return &voucher, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// GetByCodeForUpdate records the row lock. Units of work are already
// serialized by Store.Do.
func (r txVouchers) GetByCodeForUpdate(ctx context.Context, code string) (*model.Voucher, error) {
	r.tx.store.voucherLocks[code]++
	return r.GetByCode(ctx, code)
}

func (r txVouchers) CountUsage(_ context.Context, voucherID int64) (int, error) {
	if err := r.tx.store.Err; err != nil {
		return 0, err
	}
	n := 0
	for _, u := range r.tx.data.usages {
		if u.VoucherID == voucherID {
			n++
		}
	}
	return n, nil
}

func (r txVouchers) CountUserUsage(_ context.Context, voucherID, userID int64) (int, error) {
	if err := r.tx.store.Err; err != nil {
		return 0, err
	}
	n := 0
	for _, u := range r.tx.data.usages {
		if u.VoucherID == voucherID && u.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r txVouchers) HasGrant(_ context.Context, voucherID, userID int64) (bool, error) {
	if err := r.tx.store.Err; err != nil {
		return false, err
	}
	_, ok := r.tx.data.grants[grantKey{voucherID, userID}]
	return ok, nil
}

func (r txVouchers) RecordUsage(_ context.Context, usage *model.VoucherUsage) error {
	if err := r.tx.store.Err; err != nil {
		return err
	}
	usage.ID = r.tx.data.next()
	r.tx.data.usages = append(r.tx.data.usages, *usage)
	return nil
}

type txInventory struct{ tx *storeTx }

func (r txInventory) GetVariant(_ context.Context, variantID int64) (*model.ProductVariant, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	variant, ok := r.tx.data.variants[variantID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &variant, nil
}

func (r txInventory) Decrement(_ context.Context, variantID int64, quantity int) (bool, error) {
	if err := r.tx.store.Err; err != nil {
		return false, err
	}
	variant, ok := r.tx.data.variants[variantID]
	if !ok || variant.StockQuantity < quantity {
		return false, nil
	}
	variant.StockQuantity -= quantity
	r.tx.data.variants[variantID] = variant
	return true, nil
}

func (r txInventory) Increment(_ context.Context, variantID int64, quantity int) error {
	if err := r.tx.store.Err; err != nil {
		return err
	}
	variant, ok := r.tx.data.variants[variantID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	variant.StockQuantity += quantity
	r.tx.data.variants[variantID] = variant
	return nil
}

type txCarts struct{ tx *storeTx }

func (r txCarts) GetByUser(_ context.Context, userID int64) (*model.Cart, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	cart, ok := r.tx.data.carts[userID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	cart.Items = slices.Clone(cart.Items)
	return &cart, nil
}

func (r txCarts) Save(_ context.Context, cart *model.Cart) error {
	if err := r.tx.store.Err; err != nil {
		return err
	}
	stored := *cart
	stored.Items = slices.Clone(cart.Items)
	r.tx.data.carts[cart.UserID] = stored
	return nil
}

type txPayments struct{ tx *storeTx }

func (r txPayments) Create(_ context.Context, payment *model.Payment) error {
	if err := r.tx.store.Err; err != nil {
		return err
	}
	if _, exists := r.tx.data.payments[payment.OrderID]; exists {
		return domainErrors.ErrAlreadyExists
	}
	payment.ID = r.tx.data.next()
	r.tx.data.payments[payment.OrderID] = *payment
	return nil
}

func (r txPayments) GetByOrderID(_ context.Context, orderID int64) (*model.Payment, error) {
	if err := r.tx.store.Err; err != nil {
		return nil, err
	}
	payment, ok := r.tx.data.payments[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &payment, nil
}

func (r txPayments) Update(_ context.Context, payment *model.Payment) error {
	if err := r.tx.store.Err; err != nil {
		return err
	}
	if _, ok := r.tx.data.payments[payment.OrderID]; !ok {
		return domainErrors.ErrNotFound
	}
	r.tx.data.payments[payment.OrderID] = *payment
	return nil
}
