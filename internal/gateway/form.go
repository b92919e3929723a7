package gateway

import (
	"errors"

	"github.com/mkanatbekov/epay-gateway/internal/ebill"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

// ErrNoRequestDocument means a form was requested for an order that was
// never submitted; persisted NEW orders always carry a request document.
var ErrNoRequestDocument = errors.New("order has no composed request document")

// PaymentForm assembles the browser auto-submit form for a pending order.
// Field order matches what the gateway's payment page expects.
func (s *Service) PaymentForm(o *order.Order) (*ebill.HTTPFormTemplate, error) {
	if o.LastRequest == nil || o.LastCart == nil {
		return nil, ErrNoRequestDocument
	}
	return &ebill.HTTPFormTemplate{
		URL:    s.epayURL,
		Method: "POST",
		Params: []ebill.FormParam{
			{Name: "Signed_Order_B64", Value: o.LastRequest.ContentB64},
			{Name: "template", Value: s.template},
			{Name: "email", Value: o.ConsumerEmail},
			{Name: "PostLink", Value: s.postbackURL},
			{Name: "Language", Value: string(o.ConsumerLanguage)},
			{Name: "appendix", Value: o.LastCart.ContentB64},
			{Name: "BackLink", Value: s.backLink},
		},
	}, nil
}
