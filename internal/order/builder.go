package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

var (
	ErrNoOrderID        = errors.New("order id is required")
	ErrNoConsumerEmail  = errors.New("consumer email is required")
	ErrNoConsumerName   = errors.New("consumer name is required")
	ErrNoLanguage       = errors.New("consumer language is required")
	ErrNoCurrency       = errors.New("currency is required")
	ErrNoItems          = errors.New("order must contain at least one item")
	ErrEmptyProductName = errors.New("item product name is empty")
	ErrZeroCost         = errors.New("item cost is zero")
	ErrZeroQuantity     = errors.New("item quantity is zero")
)

type builderItem struct {
	name     string
	cost     decimal.Decimal
	quantity int
}

// Builder assembles a new order in status NEW. It is single-use: after a
// successful Build the caller must request a fresh builder.
type Builder struct {
	ids IDFactory

	id         string
	externalID string
	merchantID int64
	email      string
	name       string
	language   order.Language
	currency   order.Currency
	items      []builderItem
}

func NewBuilder(ids IDFactory) *Builder {
	return &Builder{ids: ids}
}

func (b *Builder) WithID(id string) *Builder {
	b.id = id
	return b
}

func (b *Builder) WithGeneratedID() *Builder {
	b.id = b.ids.GenerateOrderID()
	return b
}

func (b *Builder) WithExternalID(externalID string) *Builder {
	b.externalID = externalID
	return b
}

func (b *Builder) WithMerchant(merchantID int64) *Builder {
	b.merchantID = merchantID
	return b
}

func (b *Builder) WithCurrency(currency order.Currency) *Builder {
	b.currency = currency
	return b
}

func (b *Builder) WithDefaultCurrency() *Builder {
	b.currency = order.CurrencyKZT
	return b
}

func (b *Builder) WithConsumer(email string, language order.Language, name string) *Builder {
	b.email = email
	b.language = language
	b.name = name
	return b
}

func (b *Builder) WithItem(name string, cost decimal.Decimal, quantity int) *Builder {
	b.items = append(b.items, builderItem{name: name, cost: cost, quantity: quantity})
	return b
}

// Build validates every accumulated field and returns a NEW order with its
// amount summed over the items.
func (b *Builder) Build() (*order.Order, error) {
	switch {
	case b.id == "":
		return nil, ErrNoOrderID
	case b.email == "":
		return nil, ErrNoConsumerEmail
	case b.name == "":
		return nil, ErrNoConsumerName
	case b.language == "":
		return nil, ErrNoLanguage
	case b.currency == "":
		return nil, ErrNoCurrency
	case len(b.items) == 0:
		return nil, ErrNoItems
	}

	o := &order.Order{
		ID:               b.id,
		ExternalID:       b.externalID,
		MerchantID:       b.merchantID,
		Status:           order.StatusNew,
		Currency:         b.currency,
		ConsumerEmail:    b.email,
		ConsumerName:     b.name,
		ConsumerLanguage: b.language,
		CreatedAt:        time.Now().UTC(),
	}
	for _, it := range b.items {
		if err := registerItem(o, it.name, it.cost, it.quantity); err != nil {
			return nil, err
		}
	}
	return o, nil
}
