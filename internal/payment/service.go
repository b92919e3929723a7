package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mkanatbekov/epay-gateway/internal/ebill"
	"github.com/mkanatbekov/epay-gateway/internal/notifier"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

// Service wires the one-shot workflows together for the HTTP layer. A fresh
// workflow object is constructed per call; the Service itself holds no
// per-request state.
type Service struct {
	repo  ordersvc.OrderRepository
	ids   ordersvc.IDFactory
	gw    Gateway
	notif notifier.Notifier
}

func NewService(repo ordersvc.OrderRepository, ids ordersvc.IDFactory, gw Gateway, notif notifier.Notifier) *Service {
	return &Service{repo: repo, ids: ids, gw: gw, notif: notif}
}

type CreateItem struct {
	Name     string          `json:"name"`
	Cost     decimal.Decimal `json:"cost"`
	Quantity int             `json:"quantity"`
}

type CreateRequest struct {
	OrderID          string       `json:"order_id,omitempty"`
	ExternalID       string       `json:"external_id,omitempty"`
	Currency         string       `json:"currency,omitempty"`
	ConsumerEmail    string       `json:"consumer_email"`
	ConsumerName     string       `json:"consumer_name"`
	ConsumerLanguage string       `json:"consumer_language"`
	Items            []CreateItem `json:"items"`
}

// CreatePayment builds a new order for the merchant and submits it.
func (s *Service) CreatePayment(ctx context.Context, merchantID int64, req CreateRequest) (*ebill.Ebill, error) {
	b := ordersvc.NewBuilder(s.ids).
		WithMerchant(merchantID).
		WithConsumer(req.ConsumerEmail, order.Language(req.ConsumerLanguage), req.ConsumerName)

	if req.OrderID != "" {
		b.WithID(req.OrderID)
	} else {
		b.WithGeneratedID()
	}
	if req.Currency != "" {
		b.WithCurrency(order.Currency(req.Currency))
	} else {
		b.WithDefaultCurrency()
	}
	if req.ExternalID != "" {
		b.WithExternalID(req.ExternalID)
	}
	for _, it := range req.Items {
		b.WithItem(it.Name, it.Cost, it.Quantity)
	}

	o, err := b.Build()
	if err != nil {
		return nil, err
	}
	return NewAcceptor(o, s.gw, s.repo, s.notif).Accept(ctx)
}

// GetPayment projects the merchant's order into its current ebill.
func (s *Service) GetPayment(ctx context.Context, merchantID int64, id string) (*ebill.Ebill, error) {
	f, err := FindFetcher(ctx, s.repo, s.gw, id)
	if err != nil {
		return nil, err
	}
	if f.Order().MerchantID != merchantID {
		// another merchant's order is indistinguishable from a missing one
		return nil, ordersvc.ErrOrderNotFound
	}
	return f.Fetch()
}

// HandleResponse validates a bank callback and settles the matched order.
func (s *Service) HandleResponse(ctx context.Context, raw string) (*ebill.Ebill, error) {
	h, err := BuildResponseHandler(ctx, raw, s.gw, s.repo, s.notif)
	if err != nil {
		return nil, err
	}
	return h.Handle(ctx)
}
