package ebill

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

func testOrder(status order.OrderStatus) *order.Order {
	return &order.Order{
		ID:               "ORD-1",
		Status:           status,
		Currency:         order.CurrencyKZT,
		Amount:           decimal.NewFromInt(20),
		ConsumerEmail:    "a@b.com",
		ConsumerName:     "Alice",
		ConsumerLanguage: order.LanguageEnglish,
		Items:            []order.OrderItem{{Name: "Widget", Cost: decimal.NewFromInt(10), Quantity: 2}},
		CreatedAt:        time.Now().UTC(),
	}
}

func testForm() *HTTPFormTemplate {
	return &HTTPFormTemplate{
		URL:    "https://epay.example.kz/jsp/process/logon.jsp",
		Method: "POST",
		Params: []FormParam{{Name: "Signed_Order_B64", Value: "abc"}},
	}
}

func TestProjectStatusMapping(t *testing.T) {
	tests := []struct {
		in   order.OrderStatus
		want EbillStatus
	}{
		{order.StatusNew, StatusReady},
		{order.StatusAuthorizationFailed, StatusFailed},
		{order.StatusCanceled, StatusCanceled},
		{order.StatusCompleted, StatusPaid},
		{order.StatusAuthorizationPass, StatusPaid},
		{order.StatusEnrolled, StatusPaid},
	}
	for _, tt := range tests {
		got, err := ProjectStatus(tt.in)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestProjectStatusUnknown(t *testing.T) {
	_, err := ProjectStatus(order.OrderStatus("BOGUS"))
	assert.ErrorIs(t, err, ErrUnknownOrderStatus)
}

func TestNewReadyEbill(t *testing.T) {
	e, err := New(testOrder(order.StatusNew), testForm())
	assert.NoError(t, err)
	assert.Equal(t, StatusReady, e.Status)
	assert.NotNil(t, e.Form)
	assert.Nil(t, e.PaidAt)
	assert.Empty(t, e.Reference)
	assert.Len(t, e.Items, 1)
	assert.True(t, e.Amount.Equal(decimal.NewFromInt(20)))
}

func TestNewReadyEbillRequiresForm(t *testing.T) {
	_, err := New(testOrder(order.StatusNew), nil)
	assert.ErrorIs(t, err, ErrMissingPaymentForm)
}

func TestNewPaidEbill(t *testing.T) {
	o := testOrder(order.StatusAuthorizationPass)
	paid := time.Now().UTC()
	o.PaidAt = &paid
	o.PaymentReference = "REF-42"

	e, err := New(o, nil)
	assert.NoError(t, err)
	assert.Equal(t, StatusPaid, e.Status)
	assert.Nil(t, e.Form)
	assert.Equal(t, "REF-42", e.Reference)
	assert.Equal(t, paid, *e.PaidAt)
}

func TestNewPaidEbillRequiresPaymentDetails(t *testing.T) {
	o := testOrder(order.StatusCompleted)
	_, err := New(o, nil)
	assert.ErrorIs(t, err, ErrMissingPaymentDetails)

	paid := time.Now().UTC()
	o.PaidAt = &paid
	_, err = New(o, nil)
	assert.ErrorIs(t, err, ErrMissingPaymentDetails)
}

func TestNewCanceledAndFailedCarryNoPayload(t *testing.T) {
	for _, status := range []order.OrderStatus{order.StatusCanceled, order.StatusAuthorizationFailed} {
		e, err := New(testOrder(status), nil)
		assert.NoError(t, err)
		assert.Nil(t, e.Form)
		assert.Nil(t, e.PaidAt)
	}
}
