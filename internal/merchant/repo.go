package merchant

import (
	"context"

	"github.com/mkanatbekov/epay-gateway/internal/types/merchant"
)

type MerchantRepository interface {
	CreateMerchant(ctx context.Context, m *merchant.Merchant) error
	FindMerchantByLogin(ctx context.Context, login string) (*merchant.Merchant, error)
}
