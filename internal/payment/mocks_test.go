package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkanatbekov/epay-gateway/internal/ebill"
	"github.com/mkanatbekov/epay-gateway/internal/notifier"
	ordersvc "github.com/mkanatbekov/epay-gateway/internal/order"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

type mockRepo struct {
	mu          sync.Mutex
	saveCount   int
	saveOrderFn func(ctx context.Context, o *order.Order) (*order.Order, error)
	findOrderFn func(ctx context.Context, id string) (*order.Order, error)
}

func (m *mockRepo) SaveOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	m.mu.Lock()
	m.saveCount++
	m.mu.Unlock()
	if m.saveOrderFn != nil {
		return m.saveOrderFn(ctx, o)
	}
	return o, nil
}

func (m *mockRepo) FindOrderByID(ctx context.Context, id string) (*order.Order, error) {
	if m.findOrderFn != nil {
		return m.findOrderFn(ctx, id)
	}
	return nil, ordersvc.ErrOrderNotFound
}

func (m *mockRepo) saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCount
}

// memRepo is an in-memory order store for end-to-end scenarios.
type memRepo struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	saves  int
}

func newMemRepo() *memRepo {
	return &memRepo{orders: make(map[string]*order.Order)}
}

func (m *memRepo) SaveOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	cp := *o
	m.orders[o.ID] = &cp
	return &cp, nil
}

func (m *memRepo) FindOrderByID(ctx context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ordersvc.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

type mockGateway struct {
	composeCartFn     func(o *order.Order) error
	composeRequestFn  func(o *order.Order) error
	paymentFormFn     func(o *order.Order) (*ebill.HTTPFormTemplate, error)
	validateFormatFn  func(payload string) error
	validateSigFn     func(payload string) error
	parseOrderIDFn    func(payload string) (string, error)
	validateAgainstFn func(o *order.Order, payload string) error
	parseTimestampFn  func(payload string) (time.Time, error)
	parseReferenceFn  func(payload string) (string, error)
}

func (g *mockGateway) ComposeCart(o *order.Order) error {
	if g.composeCartFn != nil {
		return g.composeCartFn(o)
	}
	o.LastCart = &order.Document{ContentB64: "Y2FydA==", CreatedAt: time.Now().UTC()}
	return nil
}

func (g *mockGateway) ComposeRequest(o *order.Order) error {
	if g.composeRequestFn != nil {
		return g.composeRequestFn(o)
	}
	o.LastRequest = &order.Document{ContentB64: "cmVxdWVzdA==", CreatedAt: time.Now().UTC()}
	return nil
}

func (g *mockGateway) PaymentForm(o *order.Order) (*ebill.HTTPFormTemplate, error) {
	if g.paymentFormFn != nil {
		return g.paymentFormFn(o)
	}
	if o.LastRequest == nil || o.LastCart == nil {
		return nil, errDocsMissing
	}
	return &ebill.HTTPFormTemplate{
		URL:    "https://epay.test/logon",
		Method: "POST",
		Params: []ebill.FormParam{{Name: "Signed_Order_B64", Value: o.LastRequest.ContentB64}},
	}, nil
}

func (g *mockGateway) ValidateFormat(payload string) error {
	if g.validateFormatFn != nil {
		return g.validateFormatFn(payload)
	}
	return nil
}

func (g *mockGateway) ValidateSignature(payload string) error {
	if g.validateSigFn != nil {
		return g.validateSigFn(payload)
	}
	return nil
}

func (g *mockGateway) ParseOrderID(payload string) (string, error) {
	if g.parseOrderIDFn != nil {
		return g.parseOrderIDFn(payload)
	}
	return "ORD-1", nil
}

func (g *mockGateway) ValidateAgainstOrder(o *order.Order, payload string) error {
	if g.validateAgainstFn != nil {
		return g.validateAgainstFn(o, payload)
	}
	return nil
}

func (g *mockGateway) ParsePaymentTimestamp(payload string) (time.Time, error) {
	if g.parseTimestampFn != nil {
		return g.parseTimestampFn(payload)
	}
	return time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC), nil
}

func (g *mockGateway) ParsePaymentReference(payload string) (string, error) {
	if g.parseReferenceFn != nil {
		return g.parseReferenceFn(payload)
	}
	return "REF-42", nil
}

type sentNotification struct {
	stage notifier.Stage
	order *order.Order
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (m *mockNotifier) Notify(_ context.Context, _ notifier.Channel, _ notifier.RecipientType, stage notifier.Stage, o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentNotification{stage: stage, order: o})
}

func (m *mockNotifier) notifications() []sentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentNotification(nil), m.sent...)
}

var errDocsMissing = errors.New("order documents missing")

func builtOrder() *order.Order {
	o, err := ordersvc.NewBuilder(ordersvc.UUIDFactory{}).
		WithID("ORD-1").
		WithDefaultCurrency().
		WithConsumer("a@b.com", order.LanguageEnglish, "Alice").
		WithItem("Widget", decimal.NewFromFloat(10.0), 2).
		Build()
	if err != nil {
		panic(err)
	}
	return o
}

func submittedOrder() *order.Order {
	o := builtOrder()
	o.LastCart = &order.Document{ContentB64: "Y2FydA==", CreatedAt: time.Now().UTC()}
	o.LastRequest = &order.Document{ContentB64: "cmVxdWVzdA==", CreatedAt: time.Now().UTC()}
	return o
}
