package gateway

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

var (
	ErrBadFormat      = errors.New("malformed response document")
	ErrWrongSignature = errors.New("response signature verification failed")
	ErrOrderMismatch  = errors.New("response does not match the order")
	ErrNoPaymentField = errors.New("response payment field is missing")
)

const paymentTimestampLayout = "2006-01-02 15:04:05"

// Service composes signed order documents for the bank gateway and
// validates the signed settlement responses it sends back.
type Service struct {
	merchantName string
	key          *rsa.PrivateKey
	bankKey      *rsa.PublicKey
	epayURL      string
	template     string
	postbackURL  string
	backLink     string
}

func New(merchantName string, key *rsa.PrivateKey, bankKey *rsa.PublicKey, epayURL, template, postbackURL, backLink string) *Service {
	return &Service{
		merchantName: merchantName,
		key:          key,
		bankKey:      bankKey,
		epayURL:      epayURL,
		template:     template,
		postbackURL:  postbackURL,
		backLink:     backLink,
	}
}

type signatureXML struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type orderXML struct {
	ID       string `xml:"order_id,attr"`
	Amount   string `xml:"amount,attr"`
	Currency string `xml:"currency,attr"`
}

// XMLName pins the element name so the bytes signed in ComposeRequest are
// the same <merchant> rendering that ends up embedded in the document.
type merchantXML struct {
	XMLName xml.Name `xml:"merchant"`
	Name    string   `xml:"name,attr"`
	Order   orderXML `xml:"order"`
}

type requestDocument struct {
	XMLName  xml.Name     `xml:"document"`
	Merchant merchantXML  `xml:"merchant"`
	Sign     signatureXML `xml:"merchant_sign"`
}

type cartItemXML struct {
	Name     string `xml:"name,attr"`
	Cost     string `xml:"cost,attr"`
	Quantity int    `xml:"quantity,attr"`
}

type cartDocument struct {
	XMLName xml.Name      `xml:"document"`
	Items   []cartItemXML `xml:"cart>item"`
}

type paymentXML struct {
	Timestamp string `xml:"timestamp,attr"`
	Reference string `xml:"reference,attr"`
	Code      string `xml:"response_code,attr"`
}

type bankXML struct {
	Name     string      `xml:"name,attr"`
	Merchant merchantXML `xml:"merchant"`
	Payment  paymentXML  `xml:"payment"`
}

type responseDocument struct {
	XMLName xml.Name     `xml:"document"`
	Bank    bankXML      `xml:"bank"`
	Sign    signatureXML `xml:"bank_sign"`
}

// ComposeRequest builds the signed order document and attaches it to the
// order as the last request.
func (s *Service) ComposeRequest(o *order.Order) error {
	m := merchantXML{
		Name: s.merchantName,
		Order: orderXML{
			ID:       o.ID,
			Amount:   o.Amount.String(),
			Currency: string(o.Currency),
		},
	}
	inner, err := xml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal merchant element: %w", err)
	}
	sig, err := s.sign(inner)
	if err != nil {
		return fmt.Errorf("sign request: %w", err)
	}
	doc, err := xml.Marshal(requestDocument{
		Merchant: m,
		Sign:     signatureXML{Type: "RSA", Value: sig},
	})
	if err != nil {
		return fmt.Errorf("marshal request document: %w", err)
	}
	o.LastRequest = &order.Document{
		ContentB64: base64.StdEncoding.EncodeToString(doc),
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

// ComposeCart builds the cart appendix document and attaches it to the order.
func (s *Service) ComposeCart(o *order.Order) error {
	cart := cartDocument{}
	for _, it := range o.Items {
		cart.Items = append(cart.Items, cartItemXML{
			Name:     it.Name,
			Cost:     it.Cost.String(),
			Quantity: it.Quantity,
		})
	}
	doc, err := xml.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart document: %w", err)
	}
	o.LastCart = &order.Document{
		ContentB64: base64.StdEncoding.EncodeToString(doc),
		CreatedAt:  time.Now().UTC(),
	}
	return nil
}

func (s *Service) sign(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, sum[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// ValidateFormat checks that the payload parses as a settlement response
// document with the bank and order elements in place.
func (s *Service) ValidateFormat(payload string) error {
	doc, err := parseResponse(payload)
	if err != nil {
		return err
	}
	if doc.Bank.Name == "" || doc.Bank.Merchant.Order.ID == "" || doc.Sign.Value == "" {
		return fmt.Errorf("%w: required element missing", ErrBadFormat)
	}
	return nil
}

// ValidateSignature verifies the bank signature over the <bank> element of
// the payload.
func (s *Service) ValidateSignature(payload string) error {
	doc, err := parseResponse(payload)
	if err != nil {
		return err
	}
	signed, err := bankElement(payload)
	if err != nil {
		return err
	}
	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(doc.Sign.Value))
	if err != nil {
		return fmt.Errorf("%w: signature is not base64", ErrWrongSignature)
	}
	sum := sha256.Sum256(signed)
	if err := rsa.VerifyPKCS1v15(s.bankKey, crypto.SHA256, sum[:], sig); err != nil {
		return fmt.Errorf("%w: %v", ErrWrongSignature, err)
	}
	return nil
}

// ParseOrderID extracts the order id the response refers to.
func (s *Service) ParseOrderID(payload string) (string, error) {
	doc, err := parseResponse(payload)
	if err != nil {
		return "", err
	}
	if doc.Bank.Merchant.Order.ID == "" {
		return "", fmt.Errorf("%w: order id missing", ErrBadFormat)
	}
	return doc.Bank.Merchant.Order.ID, nil
}

// ValidateAgainstOrder checks the response content against the matched
// order: id, amount and currency must agree.
func (s *Service) ValidateAgainstOrder(o *order.Order, payload string) error {
	doc, err := parseResponse(payload)
	if err != nil {
		return err
	}
	ro := doc.Bank.Merchant.Order
	if ro.ID != o.ID {
		return fmt.Errorf("%w: order id %q", ErrOrderMismatch, ro.ID)
	}
	amount, err := decimal.NewFromString(ro.Amount)
	if err != nil || !amount.Equal(o.Amount) {
		return fmt.Errorf("%w: amount %q", ErrOrderMismatch, ro.Amount)
	}
	if ro.Currency != string(o.Currency) {
		return fmt.Errorf("%w: currency %q", ErrOrderMismatch, ro.Currency)
	}
	return nil
}

// ParsePaymentTimestamp extracts the bank's settlement timestamp.
func (s *Service) ParsePaymentTimestamp(payload string) (time.Time, error) {
	doc, err := parseResponse(payload)
	if err != nil {
		return time.Time{}, err
	}
	if doc.Bank.Payment.Timestamp == "" {
		return time.Time{}, fmt.Errorf("%w: timestamp", ErrNoPaymentField)
	}
	ts, err := time.Parse(paymentTimestampLayout, doc.Bank.Payment.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrNoPaymentField, doc.Bank.Payment.Timestamp)
	}
	return ts.UTC(), nil
}

// ParsePaymentReference extracts the bank's payment reference.
func (s *Service) ParsePaymentReference(payload string) (string, error) {
	doc, err := parseResponse(payload)
	if err != nil {
		return "", err
	}
	if doc.Bank.Payment.Reference == "" {
		return "", fmt.Errorf("%w: reference", ErrNoPaymentField)
	}
	return doc.Bank.Payment.Reference, nil
}

func parseResponse(payload string) (*responseDocument, error) {
	var doc responseDocument
	if err := xml.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return &doc, nil
}

// bankElement returns the raw <bank>...</bank> slice of the payload, the
// exact bytes the bank signs. The open tag may carry any whitespace after
// the name; <bank_sign> must not match.
func bankElement(payload string) ([]byte, error) {
	start := strings.Index(payload, "<bank")
	for start >= 0 {
		rest := start + len("<bank")
		if rest < len(payload) && strings.IndexByte("> \t\r\n", payload[rest]) >= 0 {
			break
		}
		n := strings.Index(payload[rest:], "<bank")
		if n < 0 {
			start = -1
			break
		}
		start = rest + n
	}
	end := strings.Index(payload, "</bank>")
	if start < 0 || end < 0 || end < start {
		return nil, fmt.Errorf("%w: bank element missing", ErrBadFormat)
	}
	return []byte(payload[start : end+len("</bank>")]), nil
}
