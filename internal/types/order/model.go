package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusNew                 OrderStatus = "NEW"
	StatusAuthorizationPass   OrderStatus = "AUTHORIZATION_PASS"
	StatusAuthorizationFailed OrderStatus = "AUTHORIZATION_FAILED"
	StatusCanceled            OrderStatus = "CANCELED"
	StatusCompleted           OrderStatus = "COMPLETED"
	StatusEnrolled            OrderStatus = "ENROLLED"
)

type Currency string

const CurrencyKZT Currency = "KZT"

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
	LanguageKazakh  Language = "kk"
)

// Document is an opaque signed payload attached to an order: the composed
// payment request, the cart appendix, or the bank's settlement response.
type Document struct {
	ContentB64 string    `db:"content_b64" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type OrderItem struct {
	ID       int64           `db:"id" json:"-"`
	Name     string          `db:"name" json:"name"`
	Cost     decimal.Decimal `db:"cost" json:"cost"`
	Quantity int             `db:"quantity" json:"quantity"`
}

// Total is the item's contribution to the order amount.
func (i OrderItem) Total() decimal.Decimal {
	return i.Cost.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID               string          `db:"id" json:"id"`
	ExternalID       string          `db:"external_id" json:"external_id,omitempty"`
	MerchantID       int64           `db:"merchant_id" json:"-"`
	Status           OrderStatus     `db:"status" json:"status"`
	Currency         Currency        `db:"currency" json:"currency"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	ConsumerEmail    string          `db:"consumer_email" json:"consumer_email"`
	ConsumerName     string          `db:"consumer_name" json:"consumer_name"`
	ConsumerLanguage Language        `db:"consumer_language" json:"consumer_language"`
	Items            []OrderItem     `json:"items"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`

	LastRequest  *Document `json:"-"`
	LastCart     *Document `json:"-"`
	LastResponse *Document `json:"-"`

	PaidAt           *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	PaymentReference string     `db:"payment_reference" json:"payment_reference,omitempty"`
}
