package ebill

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

type EbillStatus string

const (
	StatusReady    EbillStatus = "READY"
	StatusCanceled EbillStatus = "CANCELED"
	StatusPaid     EbillStatus = "PAID"
	StatusFailed   EbillStatus = "FAILED"
)

// These represent broken invariants, not bad input: an order reached
// projection in a shape the state machine must never produce.
var (
	ErrUnknownOrderStatus    = errors.New("order status has no ebill mapping")
	ErrMissingPaymentForm    = errors.New("ready ebill requires a payment form")
	ErrMissingPaymentDetails = errors.New("paid ebill requires paid timestamp and payment reference")
)

// FormParam is a single ordered field of the payment form.
type FormParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HTTPFormTemplate describes the form the consumer's browser submits to the
// gateway. Built fresh per projection, never shared across orders.
type HTTPFormTemplate struct {
	URL    string      `json:"url"`
	Method string      `json:"method"`
	Params []FormParam `json:"params"`
}

type EbillItem struct {
	Name     string          `json:"name"`
	Cost     decimal.Decimal `json:"cost"`
	Quantity int             `json:"quantity"`
}

// Ebill is the read-only payer-facing projection of an order. Form is set
// only for READY bills; PaidAt and Reference only for PAID ones.
type Ebill struct {
	ID               string          `json:"id"`
	ExternalID       string          `json:"external_id,omitempty"`
	Status           EbillStatus     `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	Amount           decimal.Decimal `json:"amount"`
	ConsumerEmail    string          `json:"consumer_email"`
	ConsumerName     string          `json:"consumer_name"`
	ConsumerLanguage order.Language  `json:"consumer_language"`
	Items            []EbillItem     `json:"items"`

	Form *HTTPFormTemplate `json:"form,omitempty"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	Reference string     `json:"reference,omitempty"`
}

// ProjectStatus maps the internal order status onto the external ebill
// status. The switch is exhaustive over the status set; anything else is a
// broken invariant.
func ProjectStatus(s order.OrderStatus) (EbillStatus, error) {
	switch s {
	case order.StatusNew:
		return StatusReady, nil
	case order.StatusAuthorizationFailed:
		return StatusFailed, nil
	case order.StatusCanceled:
		return StatusCanceled, nil
	case order.StatusCompleted, order.StatusAuthorizationPass, order.StatusEnrolled:
		return StatusPaid, nil
	default:
		return "", ErrUnknownOrderStatus
	}
}

// New projects an order into an ebill, enforcing the status/payload pairing:
// READY carries the form and nothing else, PAID carries the paid timestamp
// and reference and no form.
func New(o *order.Order, form *HTTPFormTemplate) (*Ebill, error) {
	status, err := ProjectStatus(o.Status)
	if err != nil {
		return nil, err
	}

	e := &Ebill{
		ID:               o.ID,
		ExternalID:       o.ExternalID,
		Status:           status,
		CreatedAt:        o.CreatedAt,
		Amount:           o.Amount,
		ConsumerEmail:    o.ConsumerEmail,
		ConsumerName:     o.ConsumerName,
		ConsumerLanguage: o.ConsumerLanguage,
	}
	for _, it := range o.Items {
		e.Items = append(e.Items, EbillItem{Name: it.Name, Cost: it.Cost, Quantity: it.Quantity})
	}

	switch status {
	case StatusReady:
		if form == nil {
			return nil, ErrMissingPaymentForm
		}
		e.Form = form
	case StatusPaid:
		if o.PaidAt == nil || o.PaymentReference == "" {
			return nil, ErrMissingPaymentDetails
		}
		paid := *o.PaidAt
		e.PaidAt = &paid
		e.Reference = o.PaymentReference
	}
	return e, nil
}
