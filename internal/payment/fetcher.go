package payment

import (
	"context"
	"fmt"

	"github.com/mkanatbekov/epay-gateway/internal/ebill"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

// Fetcher projects an order's current state into an ebill. One-shot,
// performs no mutation.
type Fetcher struct {
	order    *order.Order
	composer Composer

	fetched bool
}

func NewFetcher(o *order.Order, composer Composer) *Fetcher {
	return &Fetcher{order: o, composer: composer}
}

// FindFetcher looks the order up by id and wraps it in a Fetcher.
func FindFetcher(ctx context.Context, repo ordersvc.OrderRepository, composer Composer, id string) (*Fetcher, error) {
	o, err := repo.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewFetcher(o, composer), nil
}

func (f *Fetcher) Order() *order.Order {
	return f.order
}

func (f *Fetcher) Fetch() (*ebill.Ebill, error) {
	if f.fetched {
		return nil, ErrAlreadyFetched
	}
	f.fetched = true

	var form *ebill.HTTPFormTemplate
	if f.order.Status == order.StatusNew {
		// a persisted NEW order always carries its documents
		built, err := f.composer.PaymentForm(f.order)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
		form = built
	}
	return ebill.New(f.order, form)
}
