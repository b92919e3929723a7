// Package payment implements the order lifecycle workflows: one-shot
// submission of a new order to the bank gateway, read-only fetching of its
// payer-facing state, and settlement of a signed bank response.
package payment

import (
	"errors"
	"time"

	"github.com/mkanatbekov/epay-gateway/internal/ebill"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

var (
	ErrAlreadyAccepted = errors.New("payment already accepted")
	ErrAlreadyFetched  = errors.New("ebill already fetched")
	ErrAlreadyHandled  = errors.New("response already handled")
	ErrEmptyResponse   = errors.New("response payload is empty")
	ErrInvalidResponse = errors.New("invalid settlement response")
	ErrUnknownOrder    = errors.New("response references unknown order")

	// ErrInconsistent marks a broken internal invariant: a response for an
	// order that was never submitted, or a settled order missing its payment
	// fields. Not recoverable by the caller.
	ErrInconsistent = errors.New("payment state inconsistent")
)

// Composer produces the signed gateway documents and the browser payment
// form for an order.
type Composer interface {
	ComposeCart(o *order.Order) error
	ComposeRequest(o *order.Order) error
	PaymentForm(o *order.Order) (*ebill.HTTPFormTemplate, error)
}

// ResponseValidator validates and parses inbound settlement payloads.
type ResponseValidator interface {
	ValidateFormat(payload string) error
	ValidateSignature(payload string) error
	ParseOrderID(payload string) (string, error)
	ValidateAgainstOrder(o *order.Order, payload string) error
	ParsePaymentTimestamp(payload string) (time.Time, error)
	ParsePaymentReference(payload string) (string, error)
}

// Gateway is the full document/response collaborator contract.
type Gateway interface {
	Composer
	ResponseValidator
}
