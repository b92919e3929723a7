package notifier

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkanatbekov/epay-gateway/internal/logger"
	"github.com/mkanatbekov/epay-gateway/internal/types/order"
)

type Channel string

const ChannelEmail Channel = "EMAIL"

type RecipientType string

const RecipientRequester RecipientType = "REQUESTER"

type Stage string

const (
	StagePaymentLink    Stage = "PAYMENT_LINK"
	StagePaymentSuccess Stage = "PAYMENT_SUCCESS"
)

type Notification struct {
	Channel   Channel
	Recipient RecipientType
	Stage     Stage
	Order     *order.Order
}

// Notifier dispatches order notifications. Delivery is best-effort: a failed
// or dropped notification never affects the order's persisted state.
type Notifier interface {
	Notify(ctx context.Context, channel Channel, recipient RecipientType, stage Stage, o *order.Order)
}

// MailSender delivers a single message. Implementations own retries.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// EmailNotifier queues notifications on a buffered channel and delivers them
// from a worker pool.
type EmailNotifier struct {
	sender MailSender
	jobs   chan Notification
}

func NewEmailNotifier(sender MailSender, buffer int) *EmailNotifier {
	return &EmailNotifier{
		sender: sender,
		jobs:   make(chan Notification, buffer),
	}
}

// Notify enqueues without blocking; when the queue is full the notification
// is dropped and logged.
func (n *EmailNotifier) Notify(_ context.Context, channel Channel, recipient RecipientType, stage Stage, o *order.Order) {
	select {
	case n.jobs <- Notification{Channel: channel, Recipient: recipient, Stage: stage, Order: o}:
	default:
		logger.Log.Warn("notification queue full, dropping",
			zap.String("order_id", o.ID),
			zap.String("stage", string(stage)))
	}
}

// Run starts the delivery workers and blocks until ctx is canceled. The
// queue is never closed so a late Notify only drops, never panics.
func (n *EmailNotifier) Run(ctx context.Context, workers int) {
	for i := 1; i <= workers; i++ {
		go n.workerLoop(ctx, i)
	}
	<-ctx.Done()
}

func (n *EmailNotifier) workerLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-n.jobs:
			if job.Channel != ChannelEmail {
				logger.Log.Warn("unsupported notification channel",
					zap.String("channel", string(job.Channel)),
					zap.String("order_id", job.Order.ID))
				continue
			}
			subject, body := compose(job.Stage, job.Order)
			if err := n.sender.Send(ctx, job.Order.ConsumerEmail, subject, body); err != nil {
				logger.Log.Error("notification delivery failed",
					zap.Int("worker", id),
					zap.String("order_id", job.Order.ID),
					zap.String("stage", string(job.Stage)),
					zap.Error(err))
				continue
			}
			logger.Log.Info("notification sent",
				zap.Int("worker", id),
				zap.String("order_id", job.Order.ID),
				zap.String("stage", string(job.Stage)))
		}
	}
}

func compose(stage Stage, o *order.Order) (subject, body string) {
	switch stage {
	case StagePaymentSuccess:
		subject = fmt.Sprintf("Payment received for order %s", o.ID)
		body = fmt.Sprintf("Dear %s,\n\nyour payment of %s %s for order %s has been received.\nReference: %s\n",
			o.ConsumerName, o.Amount.String(), o.Currency, o.ID, o.PaymentReference)
	default:
		subject = fmt.Sprintf("Payment link for order %s", o.ID)
		body = fmt.Sprintf("Dear %s,\n\nyour order %s for %s %s is awaiting payment.\n",
			o.ConsumerName, o.ID, o.Amount.String(), o.Currency)
	}
	return subject, body
}
