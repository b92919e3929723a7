package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

func validBuilder() *Builder {
	return NewBuilder(UUIDFactory{}).
		WithID("ORD-1").
		WithDefaultCurrency().
		WithConsumer("a@b.com", order.LanguageEnglish, "Alice").
		WithItem("Widget", decimal.NewFromFloat(10.0), 2)
}

func TestBuildNewOrder(t *testing.T) {
	o, err := validBuilder().Build()
	assert.NoError(t, err)
	assert.Equal(t, "ORD-1", o.ID)
	assert.Equal(t, order.StatusNew, o.Status)
	assert.Equal(t, order.CurrencyKZT, o.Currency)
	assert.True(t, o.Amount.Equal(decimal.NewFromFloat(20.0)))
	assert.Len(t, o.Items, 1)
	assert.False(t, o.CreatedAt.IsZero())
}

func TestBuildSumsAmountOverItems(t *testing.T) {
	o, err := validBuilder().
		WithItem("Gadget", decimal.NewFromFloat(2.5), 4).
		Build()
	assert.NoError(t, err)
	assert.True(t, o.Amount.Equal(decimal.NewFromFloat(30.0)))
}

func TestBuildGeneratedID(t *testing.T) {
	o, err := NewBuilder(UUIDFactory{}).
		WithGeneratedID().
		WithDefaultCurrency().
		WithConsumer("a@b.com", order.LanguageRussian, "Alice").
		WithItem("Widget", decimal.NewFromFloat(1), 1).
		Build()
	assert.NoError(t, err)
	assert.NotEmpty(t, o.ID)
}

func TestBuildMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		builder *Builder
		wantErr error
	}{
		{
			name:    "no id",
			builder: NewBuilder(UUIDFactory{}).WithDefaultCurrency().WithConsumer("a@b.com", order.LanguageEnglish, "Alice").WithItem("W", decimal.NewFromInt(1), 1),
			wantErr: ErrNoOrderID,
		},
		{
			name:    "no email",
			builder: NewBuilder(UUIDFactory{}).WithID("O-1").WithDefaultCurrency().WithConsumer("", order.LanguageEnglish, "Alice").WithItem("W", decimal.NewFromInt(1), 1),
			wantErr: ErrNoConsumerEmail,
		},
		{
			name:    "no name",
			builder: NewBuilder(UUIDFactory{}).WithID("O-1").WithDefaultCurrency().WithConsumer("a@b.com", order.LanguageEnglish, "").WithItem("W", decimal.NewFromInt(1), 1),
			wantErr: ErrNoConsumerName,
		},
		{
			name:    "no language",
			builder: NewBuilder(UUIDFactory{}).WithID("O-1").WithDefaultCurrency().WithConsumer("a@b.com", "", "Alice").WithItem("W", decimal.NewFromInt(1), 1),
			wantErr: ErrNoLanguage,
		},
		{
			name:    "no currency",
			builder: NewBuilder(UUIDFactory{}).WithID("O-1").WithConsumer("a@b.com", order.LanguageEnglish, "Alice").WithItem("W", decimal.NewFromInt(1), 1),
			wantErr: ErrNoCurrency,
		},
		{
			name:    "no items",
			builder: NewBuilder(UUIDFactory{}).WithID("O-1").WithDefaultCurrency().WithConsumer("a@b.com", order.LanguageEnglish, "Alice"),
			wantErr: ErrNoItems,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestBuildInvalidItems(t *testing.T) {
	_, err := validBuilder().WithItem("", decimal.NewFromInt(1), 1).Build()
	assert.ErrorIs(t, err, ErrEmptyProductName)

	_, err = validBuilder().WithItem("Widget", decimal.Zero, 1).Build()
	assert.ErrorIs(t, err, ErrZeroCost)

	_, err = validBuilder().WithItem("Widget", decimal.NewFromInt(1), 0).Build()
	assert.ErrorIs(t, err, ErrZeroQuantity)
}
