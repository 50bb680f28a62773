package usecase

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// InventoryLedger reserves and restores variant stock.
type InventoryLedger struct{}

// NewInventoryLedger constructs InventoryLedger.
func NewInventoryLedger() *InventoryLedger {
	return &InventoryLedger{}
}

// Reserve takes quantity units of the variant or fails naming the shortfall.
func (l *InventoryLedger) Reserve(ctx context.Context, inventory repository.InventoryRepository, variantID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domainErrors.ErrInvalidInput)
	}

	ok, err := inventory.Decrement(ctx, variantID, quantity)
	if err != nil {
		return mapVariantError(err, variantID)
	}
	if ok {
		return nil
	}

	variant, err := inventory.GetVariant(ctx, variantID)
	if err != nil {
		return mapVariantError(err, variantID)
	}
	return &domainErrors.InsufficientStockError{
		VariantID: variantID,
		Requested: quantity,
		Available: variant.StockQuantity,
	}
}

// Restore returns quantity units to the variant.
func (l *InventoryLedger) Restore(ctx context.Context, inventory repository.InventoryRepository, variantID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domainErrors.ErrInvalidInput)
	}
	if err := inventory.Increment(ctx, variantID, quantity); err != nil {
		return mapVariantError(err, variantID)
	}
	return nil
}

func mapVariantError(err error, variantID int64) error {
	if errors.Is(err, domainErrors.ErrNotFound) {
		return fmt.Errorf("%w: %d", domainErrors.ErrVariantNotFound, variantID)
	}
	return err
}
