package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

// IDFactory issues unique order ids for callers that do not supply their own.
type IDFactory interface {
	GenerateOrderID() string
}

type UUIDFactory struct{}

func (UUIDFactory) GenerateOrderID() string {
	return uuid.NewString()
}

// registerItem validates an item, appends it to the order and accumulates
// the order amount.
func registerItem(o *order.Order, name string, cost decimal.Decimal, quantity int) error {
	if name == "" {
		return ErrEmptyProductName
	}
	if cost.IsZero() {
		return ErrZeroCost
	}
	if quantity == 0 {
		return ErrZeroQuantity
	}
	item := order.OrderItem{Name: name, Cost: cost, Quantity: quantity}
	o.Items = append(o.Items, item)
	o.Amount = o.Amount.Add(item.Total())
	return nil
}
