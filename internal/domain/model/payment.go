package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod describes how the customer pays.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "COD"
	PaymentMethodCard           PaymentMethod = "CARD"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
)

// Valid reports whether the method is supported.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCashOnDelivery, PaymentMethodCard, PaymentMethodBankTransfer:
		return true
	default:
		return false
	}
}

// PaymentStatus tracks settlement of an order payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// Payment is the single payment record of an order.
type Payment struct {
	ID        int64
	OrderID   int64
	Method    PaymentMethod
	Amount    decimal.Decimal
	Status    PaymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
