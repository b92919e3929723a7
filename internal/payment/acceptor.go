package payment

import (
	"context"
	"fmt"

	"github.com/mkanatbekov/epay-gateway/internal/ebill"
	"github.com/mkanatbekov/epay-gateway/internal/notifier"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

// Acceptor performs the one-shot submission of a freshly built order:
// compose the gateway documents, persist, notify, project. The guard is
// per-instance; concurrent submissions of the same order id are serialized
// by the store.
type Acceptor struct {
	order    *order.Order
	composer Composer
	repo     ordersvc.OrderRepository
	notif    notifier.Notifier

	accepted bool
}

func NewAcceptor(o *order.Order, composer Composer, repo ordersvc.OrderRepository, notif notifier.Notifier) *Acceptor {
	return &Acceptor{order: o, composer: composer, repo: repo, notif: notif}
}

func (a *Acceptor) Accept(ctx context.Context) (*ebill.Ebill, error) {
	if a.accepted {
		return nil, ErrAlreadyAccepted
	}

	if err := a.composer.ComposeCart(a.order); err != nil {
		return nil, fmt.Errorf("compose cart: %w", err)
	}
	if err := a.composer.ComposeRequest(a.order); err != nil {
		return nil, fmt.Errorf("compose request: %w", err)
	}

	saved, err := a.repo.SaveOrder(ctx, a.order)
	if err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	a.accepted = true

	a.notif.Notify(ctx, notifier.ChannelEmail, notifier.RecipientRequester, notifier.StagePaymentLink, saved)

	return NewFetcher(saved, a.composer).Fetch()
}
