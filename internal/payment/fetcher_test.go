package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkanatbekov/epay-gateway/internal/ebill"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

func TestFetchReadyOrderCarriesForm(t *testing.T) {
	f := NewFetcher(submittedOrder(), &mockGateway{})

	bill, err := f.Fetch()
	require.NoError(t, err)
	assert.Equal(t, ebill.StatusReady, bill.Status)
	assert.NotNil(t, bill.Form)
}

func TestFetchPaidOrderCarriesNoForm(t *testing.T) {
	o := submittedOrder()
	o.Status = order.StatusAuthorizationPass
	paid := time.Now().UTC()
	o.PaidAt = &paid
	o.PaymentReference = "REF-42"

	bill, err := NewFetcher(o, &mockGateway{}).Fetch()
	require.NoError(t, err)
	assert.Equal(t, ebill.StatusPaid, bill.Status)
	assert.Nil(t, bill.Form)
	assert.Equal(t, "REF-42", bill.Reference)
}

func TestFetchTwice(t *testing.T) {
	f := NewFetcher(submittedOrder(), &mockGateway{})

	_, err := f.Fetch()
	require.NoError(t, err)

	_, err = f.Fetch()
	assert.ErrorIs(t, err, ErrAlreadyFetched)
}

func TestFetchNewOrderWithoutDocumentsIsInconsistent(t *testing.T) {
	// a NEW order can only be persisted with its documents attached
	f := NewFetcher(builtOrder(), &mockGateway{})

	_, err := f.Fetch()
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestFindFetcherUnknownID(t *testing.T) {
	repo := &mockRepo{}
	_, err := FindFetcher(context.Background(), repo, &mockGateway{}, "nope")
	assert.ErrorIs(t, err, ordersvc.ErrOrderNotFound)
}

func TestFindFetcherLoadsOrder(t *testing.T) {
	stored := submittedOrder()
	repo := &mockRepo{
		findOrderFn: func(ctx context.Context, id string) (*order.Order, error) {
			assert.Equal(t, "ORD-1", id)
			return stored, nil
		},
	}

	f, err := FindFetcher(context.Background(), repo, &mockGateway{}, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, stored, f.Order())
}
