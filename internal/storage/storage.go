package storage

import (
	"context"

	"github.com/mkanatbekov/epay-gateway/internal/merchant"
	"github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/stats"
)

// Storage bundles every repository the service needs. The postgres
// implementation provides per-order-id serialization of the mutating
// operations; workflow one-shot guards rely on it for cross-caller races.
type Storage interface {
	order.OrderRepository
	merchant.MerchantRepository
	stats.StatsRepository

	Ping(ctx context.Context) error
	Close() error
}
