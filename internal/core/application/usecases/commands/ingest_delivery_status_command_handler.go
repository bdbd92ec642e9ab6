package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/tracking"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/metrics"
)

// IngestDeliveryStatusResult is the webhook acknowledgement.
type IngestDeliveryStatusResult struct {
	Changed      bool
	Ignored      bool
	Stale        bool
	StatusCode   order.StatusCode
	Key          string
	OrderID      int64
	RowsAffected int64
}

// IngestDeliveryStatusCommandHandler applies courier status webhooks to the order
// row, the tracking document and the customer's device.
//
// Rules:
//   - unknown status text is acknowledged and ignored
//   - a status older than the tracking document or the order row is acknowledged as stale
//   - the order row only moves forward unless the webhook is a correction
//   - the tracking document is rewritten and the customer notified only on change
//   - push goes out for in_transit and delivered
type IngestDeliveryStatusCommandHandler struct {
	statuses      ports.StatusRepository
	store         ports.TrackingStore
	push          ports.PushSender
	fallbackToken string
	now           func() time.Time
	logger        *slog.Logger
}

// NewIngestDeliveryStatusCommandHandler creates the handler. fallbackToken is used
// when the order carries no push token and may be empty.
func NewIngestDeliveryStatusCommandHandler(
	statuses ports.StatusRepository,
	store ports.TrackingStore,
	push ports.PushSender,
	fallbackToken string,
	logger *slog.Logger,
) (*IngestDeliveryStatusCommandHandler, error) {
	if statuses == nil {
		return nil, errs.NewValueIsRequiredError("statuses")
	}
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}
	if push == nil {
		return nil, errs.NewValueIsRequiredError("push")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &IngestDeliveryStatusCommandHandler{
		statuses:      statuses,
		store:         store,
		push:          push,
		fallbackToken: fallbackToken,
		now:           time.Now,
		logger:        logger.With("component", "delivery_status"),
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (h *IngestDeliveryStatusCommandHandler) WithClock(now func() time.Time) *IngestDeliveryStatusCommandHandler {
	h.now = now
	return h
}

// Handle applies one webhook. Only a storage failure on the order row is returned
// as an error; tracking and push failures are logged.
func (h *IngestDeliveryStatusCommandHandler) Handle(
	ctx context.Context,
	cmd IngestDeliveryStatusCommand,
) (IngestDeliveryStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return IngestDeliveryStatusResult{}, err
	}

	code := order.ParseStatusText(cmd.Status())
	ref := refForKey(cmd.Key())
	result := IngestDeliveryStatusResult{
		StatusCode: code,
		Key:        cmd.Key(),
		OrderID:    ref.OrderID,
	}
	log := h.logger.With("key", cmd.Key(), "status", cmd.Status())

	if !code.IsRecognized() {
		log.InfoContext(ctx, "unrecognised courier status ignored")
		metrics.WebhookResults.WithLabelValues("ignored").Inc()
		result.Ignored = true
		return result, nil
	}

	previous, hasPrevious := h.loadPrevious(ctx, log, cmd.Key())
	if hasPrevious && !cmd.Correction() && code.IsRegressionFrom(previous.Status) {
		log.InfoContext(ctx, "stale courier status ignored", "stored", previous.Status.String())
		metrics.WebhookResults.WithLabelValues("stale").Inc()
		result.Stale = true
		return result, nil
	}

	rows, err := h.statuses.UpdateStatus(ctx, ref, code, cmd.Correction())
	if err != nil {
		metrics.WebhookResults.WithLabelValues("error").Inc()
		return result, fmt.Errorf("update delivery status: %w", err)
	}
	result.RowsAffected = rows

	notify := rows > 0
	if rows == 0 {
		if hasPrevious && previous.Status == code {
			metrics.WebhookResults.WithLabelValues("unchanged").Inc()
			return result, nil
		}

		stored, known := h.storedStatus(ctx, log, ref)
		if known && !cmd.Correction() && code.IsRegressionFrom(stored) {
			log.InfoContext(ctx, "stale courier status ignored", "stored", stored.String())
			metrics.WebhookResults.WithLabelValues("stale").Inc()
			result.Stale = true
			return result, nil
		}
		// A known row already holds code, so only the tracking document is behind.
		notify = !known
	}

	result.Changed = true
	metrics.WebhookResults.WithLabelValues("changed").Inc()

	h.saveDocument(ctx, log, cmd, code)
	if notify && code.NotifiesCustomer() {
		h.notifyCustomer(ctx, log, ref, code)
	}

	log.InfoContext(ctx, "delivery status applied", "code", int(code), "rows", rows)
	return result, nil
}

func (h *IngestDeliveryStatusCommandHandler) loadPrevious(
	ctx context.Context,
	log *slog.Logger,
	key string,
) (tracking.Document, bool) {
	doc, err := h.store.Load(ctx, key)
	if err == nil {
		return doc, true
	}
	if !errors.Is(err, errs.ErrObjectNotFound) {
		log.WarnContext(ctx, "tracking document unreadable", "error", err)
	}
	return tracking.Document{}, false
}

// storedStatus reads the code on the order row. known is false when the order
// cannot be found or read.
func (h *IngestDeliveryStatusCommandHandler) storedStatus(
	ctx context.Context,
	log *slog.Logger,
	ref ports.OrderRef,
) (order.StatusCode, bool) {
	target, err := h.statuses.ResolvePushTarget(ctx, ref)
	if err != nil {
		if !errors.Is(err, errs.ErrObjectNotFound) {
			log.WarnContext(ctx, "stored status not read", "error", err)
		}
		return order.StatusUnrecognized, false
	}
	return target.Status, true
}

func (h *IngestDeliveryStatusCommandHandler) saveDocument(
	ctx context.Context,
	log *slog.Logger,
	cmd IngestDeliveryStatusCommand,
	code order.StatusCode,
) {
	doc, err := tracking.NewDocument(cmd.Key(), code, cmd.Status(), cmd.Driver(), cmd.ETA(), h.now())
	if err == nil {
		err = h.store.Save(ctx, doc)
	}
	if err != nil {
		log.ErrorContext(ctx, "tracking document not written", "error", err)
	}
}

func (h *IngestDeliveryStatusCommandHandler) notifyCustomer(
	ctx context.Context,
	log *slog.Logger,
	ref ports.OrderRef,
	code order.StatusCode,
) {
	target, err := h.statuses.ResolvePushTarget(ctx, ref)
	if err != nil {
		log.WarnContext(ctx, "push target not resolved", "error", err)
		target = ports.PushTarget{OrderID: ref.OrderID}
	}

	token := target.Token
	if token == "" {
		token = h.fallbackToken
	}
	if token == "" {
		log.InfoContext(ctx, "no push token for order")
		return
	}

	orderID := ref.DeliveryID
	if target.OrderID > 0 {
		orderID = strconv.FormatInt(target.OrderID, 10)
	}

	messageID, err := h.push.SendPush(ctx, StatusPushMessage(token, orderID, code))
	if err != nil {
		log.ErrorContext(ctx, "push notification failed", "error", err)
		return
	}
	log.InfoContext(ctx, "push notification sent", "message_id", messageID)
}

// StatusPushMessage builds the customer notification for in_transit and delivered.
func StatusPushMessage(token, orderID string, code order.StatusCode) ports.PushMessage {
	msg := ports.PushMessage{
		Token: token,
		Data: map[string]string{
			"orderId": orderID,
			"status":  code.String(),
		},
	}
	if code == order.StatusDelivered {
		msg.Title = "Order delivered ✅"
		msg.Body = fmt.Sprintf("Order #%s has been delivered", orderID)
	} else {
		msg.Title = "Your order is on the way 🚚"
		msg.Body = fmt.Sprintf("Order #%s is out for delivery", orderID)
	}
	return msg
}

// refForKey treats an all-digit key as an internal order id and anything else as a
// courier delivery id.
func refForKey(key string) ports.OrderRef {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > 0 {
		return ports.OrderRef{OrderID: id}
	}
	return ports.OrderRef{DeliveryID: key}
}
