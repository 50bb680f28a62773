package repository

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// VoucherRepository gives access to vouchers, grants and usage history.
type VoucherRepository interface {
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
	// GetByCodeForUpdate loads the voucher and holds its row until the
	// surrounding transaction ends.
	GetByCodeForUpdate(ctx context.Context, code string) (*model.Voucher, error)
	CountUsage(ctx context.Context, voucherID int64) (int, error)
	CountUserUsage(ctx context.Context, voucherID, userID int64) (int, error)
	HasGrant(ctx context.Context, voucherID, userID int64) (bool, error)
	RecordUsage(ctx context.Context, usage *model.VoucherUsage) error
}
