package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant is a sellable unit with its own price and stock.
type ProductVariant struct {
	ID            int64
	ProductID     int64
	SKU           string
	Price         decimal.Decimal
	StockQuantity int
	UpdatedAt     time.Time
}

// Cart holds the lines a user intends to buy.
type Cart struct {
	ID     int64
	UserID int64
	Items  []CartItem
}

// CartItem is a variant and quantity held in a cart.
type CartItem struct {
	VariantID int64
	Quantity  int
}

// Find returns the index of the cart line for variantID or -1.
func (c *Cart) Find(variantID int64) int {
	for i, item := range c.Items {
		if item.VariantID == variantID {
			return i
		}
	}
	return -1
}

// Take reduces the cart line for variantID by quantity, removing it when empty.
func (c *Cart) Take(variantID int64, quantity int) bool {
	idx := c.Find(variantID)
	if idx < 0 || c.Items[idx].Quantity < quantity {
		return false
	}
	c.Items[idx].Quantity -= quantity
	if c.Items[idx].Quantity == 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	}
	return true
}
