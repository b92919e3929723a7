package payment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/mkanatbekov/epay-gateway/internal/ebill"
	"github.com/mkanatbekov/epay-gateway/internal/notifier"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

// ResponseHandler is a validated settlement response bound to its order.
// Building it runs the whole validation pipeline without mutating anything;
// Handle is the one-shot state transition.
type ResponseHandler struct {
	raw       string
	doc       *order.Document
	order     *order.Order
	validator ResponseValidator
	composer  Composer
	repo      ordersvc.OrderRepository
	notif     notifier.Notifier

	handled bool
}

// BuildResponseHandler validates an inbound payload stage by stage: ingest,
// format, signature, order correlation, prior-request check, business
// validation. Each stage short-circuits; no state is changed on any path.
func BuildResponseHandler(ctx context.Context, raw string, gw Gateway, repo ordersvc.OrderRepository, notif notifier.Notifier) (*ResponseHandler, error) {
	if raw == "" {
		return nil, ErrEmptyResponse
	}
	doc := &order.Document{
		ContentB64: base64.StdEncoding.EncodeToString([]byte(raw)),
		CreatedAt:  time.Now().UTC(),
	}

	if err := gw.ValidateFormat(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if err := gw.ValidateSignature(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	id, err := gw.ParseOrderID(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	o, err := repo.FindOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, ordersvc.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOrder, id)
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	if o.LastRequest == nil {
		return nil, fmt.Errorf("%w: order %s has a response but no prior request", ErrInconsistent, id)
	}

	if err := gw.ValidateAgainstOrder(o, raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	return &ResponseHandler{
		raw:       raw,
		doc:       doc,
		order:     o,
		validator: gw,
		composer:  gw,
		repo:      repo,
		notif:     notif,
	}, nil
}

func (h *ResponseHandler) Order() *order.Order {
	return h.order
}

// Handle attaches the response, settles the order, persists it and notifies
// the requester. The returned ebill is projected from the in-memory order.
func (h *ResponseHandler) Handle(ctx context.Context) (*ebill.Ebill, error) {
	if h.handled {
		return nil, ErrAlreadyHandled
	}

	h.order.LastResponse = h.doc
	h.order.Status = order.StatusAuthorizationPass

	paidAt, err := h.validator.ParsePaymentTimestamp(h.raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}
	reference, err := h.validator.ParsePaymentReference(h.raw)
	if err != nil || reference == "" {
		return nil, fmt.Errorf("%w: missing payment reference", ErrInconsistent)
	}
	h.order.PaidAt = &paidAt
	h.order.PaymentReference = reference

	saved, err := h.repo.SaveOrder(ctx, h.order)
	if err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	h.handled = true

	h.notif.Notify(ctx, notifier.ChannelEmail, notifier.RecipientRequester, notifier.StagePaymentSuccess, saved)

	return NewFetcher(h.order, h.composer).Fetch()
}
