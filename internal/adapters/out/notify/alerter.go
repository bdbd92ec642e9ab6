package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"time"

	"orderflow/internal/core/ports"
)

const (
	alertTimeout   = 10 * time.Second
	chatAlertLimit = 500
)

// OpsAlerter sends operator alerts by e-mail and chat. Either channel may be nil.
type OpsAlerter struct {
	email  ports.EmailSender
	to     []string
	chat   ports.ChatSender
	logger *slog.Logger
	now    func() time.Time
}

func NewOpsAlerter(email ports.EmailSender, to []string, chat ports.ChatSender, logger *slog.Logger) *OpsAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpsAlerter{
		email:  email,
		to:     to,
		chat:   chat,
		logger: logger.With("component", "alerts"),
		now:    time.Now,
	}
}

type alertPayload struct {
	Subject string `json:"subject"`
	OrderID int64  `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
	Context any    `json:"context,omitempty"`
	At      string `json:"at"`
}

// Alert never fails. Channel errors are logged.
func (a *OpsAlerter) Alert(ctx context.Context, alert ports.OperatorAlert) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)
	defer cancel()

	payload := alertPayload{
		Subject: alert.Subject,
		OrderID: alert.OrderID,
		Context: alert.Context,
		At:      a.now().UTC().Format(time.RFC3339),
	}
	if alert.Err != nil {
		payload.Error = alert.Err.Error()
	}

	log := a.logger.With("subject", alert.Subject, "order_id", alert.OrderID)
	log.WarnContext(ctx, "operator alert", "error", payload.Error)

	if a.email != nil && len(a.to) > 0 {
		if err := a.email.SendEmail(ctx, alertEmail(a.to, payload)); err != nil {
			log.ErrorContext(ctx, "alert email failed", "error", err)
		}
	}

	if a.chat != nil {
		if err := a.chat.SendChatMessage(ctx, alertChatText(payload)); err != nil {
			log.ErrorContext(ctx, "alert chat failed", "error", err)
		}
	}
}

func alertEmail(to []string, p alertPayload) ports.EmailMessage {
	pretty, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		pretty = []byte(fmt.Sprintf("%+v", p))
	}
	return ports.EmailMessage{
		To:      to,
		Subject: "[ORDERFLOW][SOS] " + p.Subject,
		HTML: `<pre style="font-family:ui-monospace,Menlo,Consolas">` +
			html.EscapeString(string(pretty)) + `</pre>`,
	}
}

func alertChatText(p alertPayload) string {
	compact, err := json.Marshal(p)
	if err != nil {
		compact = []byte(fmt.Sprintf("%+v", p))
	}
	return "[SOS] " + p.Subject + "\n" + shorten(string(compact), chatAlertLimit)
}

func shorten(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "…"
}
