package notify

import (
	"context"

	"orderflow/internal/core/ports"
)

// Disabled channels. Used when the integration has no credentials configured.

type NoopEmail struct{}

func (NoopEmail) SendEmail(context.Context, ports.EmailMessage) error { return nil }

type NoopInvoices struct{}

func (NoopInvoices) SendInvoice(context.Context, ports.Invoice) error { return nil }

type NoopChat struct{}

func (NoopChat) SendChatMessage(context.Context, string) error { return nil }

type NoopPush struct{}

func (NoopPush) SendPush(context.Context, ports.PushMessage) (string, error) { return "", nil }
