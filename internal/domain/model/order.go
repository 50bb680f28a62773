package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes order lifecycle position.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusConfirmed     OrderStatus = "CONFIRMED"
	OrderStatusProcessing    OrderStatus = "PROCESSING"
	OrderStatusShipped       OrderStatus = "SHIPPED"
	OrderStatusDelivered     OrderStatus = "DELIVERED"
	OrderStatusCanceled      OrderStatus = "CANCELED"
	OrderStatusReturned      OrderStatus = "RETURNED"
	OrderStatusRefunded      OrderStatus = "REFUNDED"
	OrderStatusRequestCancel OrderStatus = "REQUEST_CANCEL"
	OrderStatusRejectCancel  OrderStatus = "REJECT_CANCEL"

	// Deprecated: legacy values kept so old rows still load.
	OrderStatusReceivered OrderStatus = "RECEIVERED"
	// Deprecated: legacy values kept so old rows still load.
	OrderStatusSendered OrderStatus = "SENDERED"
)

var knownOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:       {},
	OrderStatusConfirmed:     {},
	OrderStatusProcessing:    {},
	OrderStatusShipped:       {},
	OrderStatusDelivered:     {},
	OrderStatusCanceled:      {},
	OrderStatusReturned:      {},
	OrderStatusRefunded:      {},
	OrderStatusRequestCancel: {},
	OrderStatusRejectCancel:  {},
	OrderStatusReceivered:    {},
	OrderStatusSendered:      {},
}

// Valid reports whether status is one of the declared values.
func (s OrderStatus) Valid() bool {
	_, ok := knownOrderStatuses[s]
	return ok
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCanceled || s == OrderStatusRefunded
}

// Order is the aggregate created by placement and mutated by status transitions.
type Order struct {
	ID                int64
	CustomerID        int64
	Items             []OrderItem
	Status            OrderStatus
	Notes             string
	ShippingAddressID int64
	Subtotal          decimal.Decimal
	DiscountAmount    decimal.Decimal
	Total             decimal.Decimal
	VoucherID         *int64
	ShipperID         *int64
	DeliveryImage     string
	CancelReason      string
	ConfirmedAt       *time.Time
	PreparingAt       *time.Time
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	CanceledAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
}

// OrderItem is a single line of an order. UnitPrice is captured at placement.
type OrderItem struct {
	ID        int64
	OrderID   int64
	VariantID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Status    OrderStatus
}

// LineTotal returns quantity multiplied by unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeSubtotal sums all item line totals.
func (o *Order) ComputeSubtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal.Round(2)
}

// ApplyTotals recomputes subtotal and total from items and the given discount.
// The discount is capped at the subtotal so the total never goes negative.
func (o *Order) ApplyTotals(discount decimal.Decimal) {
	o.Subtotal = o.ComputeSubtotal()
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(o.Subtotal) {
		discount = o.Subtotal
	}
	o.DiscountAmount = discount.Round(2)
	o.Total = o.Subtotal.Sub(o.DiscountAmount)
}

// SetStatus updates the order status and mirrors it onto every item.
func (o *Order) SetStatus(status OrderStatus) {
	o.Status = status
	for i := range o.Items {
		o.Items[i].Status = status
	}
}
