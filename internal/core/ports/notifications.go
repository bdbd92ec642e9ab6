package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type EmailMessage struct {
	To      []string
	Subject string
	HTML    string
}

// EmailSender delivers already rendered e-mail.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// Invoice is the content of the customer receipt.
type Invoice struct {
	OrderID       int64
	LegacyOrderID int64
	ReceiptID     string
	CustomerName  string
	Email         string
	Lines         []order.BasketLine
	Subtotal      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
	IsDelivery    bool
	Address       string
	PlacedAt      time.Time
}

// InvoiceMailer renders and sends the customer invoice.
type InvoiceMailer interface {
	SendInvoice(ctx context.Context, invoice Invoice) error
}

// ChatSender posts plain text to the operations chat.
type ChatSender interface {
	SendChatMessage(ctx context.Context, text string) error
}

type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// PushSender delivers a push notification and returns the provider message id.
type PushSender interface {
	SendPush(ctx context.Context, msg PushMessage) (string, error)
}

// OperatorAlert carries the context operations needs to reconcile a failure.
// OrderID is 0 when no order exists yet.
type OperatorAlert struct {
	Subject string
	OrderID int64
	Context any
	Err     error
}

// Alerter notifies operations. It never fails the caller.
type Alerter interface {
	Alert(ctx context.Context, alert OperatorAlert)
}
