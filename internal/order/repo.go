package order

import (
	"context"
	"errors"

	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository is the store contract the payment workflows rely on.
// SaveOrder is an upsert keyed on the order id and returns the canonical
// persisted copy. FindOrderByID returns ErrOrderNotFound when nothing
// matches.
type OrderRepository interface {
	SaveOrder(ctx context.Context, o *order.Order) (*order.Order, error)
	FindOrderByID(ctx context.Context, id string) (*order.Order, error)
}
