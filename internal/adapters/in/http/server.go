package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/tracking"
	"orderflow/internal/generated/servers"

	"github.com/labstack/echo/v4"
)

type SubmitOrderHandler interface {
	Handle(ctx context.Context, cmd commands.SubmitOrderCommand) (commands.SubmitOrderResult, error)
}

type IngestDeliveryStatusHandler interface {
	Handle(ctx context.Context, cmd commands.IngestDeliveryStatusCommand) (commands.IngestDeliveryStatusResult, error)
}

type CancelDeliveryHandler interface {
	Handle(ctx context.Context, cmd commands.CancelDeliveryCommand) (commands.CancelDeliveryResult, error)
}

type GetOrderDeliveryHandler interface {
	Handle(ctx context.Context, query queries.GetOrderDeliveryQuery) (queries.GetOrderDeliveryQueryResponse, error)
}

type GetTrackingDocumentHandler interface {
	Handle(ctx context.Context, query queries.GetTrackingDocumentQuery) ([]byte, error)
}

// Server implements servers.ServerInterface.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	submitOrderHandler    SubmitOrderHandler
	ingestStatusHandler   IngestDeliveryStatusHandler
	cancelDeliveryHandler CancelDeliveryHandler

	// Query handlers
	getOrderDeliveryHandler GetOrderDeliveryHandler
	getTrackingHandler      GetTrackingDocumentHandler

	logger *slog.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	submitOrderHandler SubmitOrderHandler,
	ingestStatusHandler IngestDeliveryStatusHandler,
	cancelDeliveryHandler CancelDeliveryHandler,
	getOrderDeliveryHandler GetOrderDeliveryHandler,
	getTrackingHandler GetTrackingDocumentHandler,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		submitOrderHandler:      submitOrderHandler,
		ingestStatusHandler:     ingestStatusHandler,
		cancelDeliveryHandler:   cancelDeliveryHandler,
		getOrderDeliveryHandler: getOrderDeliveryHandler,
		getTrackingHandler:      getTrackingHandler,
		logger:                  logger.With("component", "http"),
	}
}

// SubmitOrder handles POST /api/v1/orders.
func (s *Server) SubmitOrder(ctx echo.Context, params servers.SubmitOrderParams) error {
	var body servers.SubmitOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	if err := ctx.Validate(&body); err != nil {
		return badRequest(ctx, "Invalid order: "+err.Error())
	}

	cmd, err := commands.NewSubmitOrderCommand(submitParams(body, params))
	if err != nil {
		return badRequest(ctx, "Invalid order: "+err.Error())
	}

	result, err := s.submitOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err, "Failed to submit order")
	}

	return ctx.JSON(http.StatusOK, submitResponse(result))
}

// IngestDeliveryStatus handles POST /api/v1/webhooks/delivery-status.
func (s *Server) IngestDeliveryStatus(ctx echo.Context) error {
	var body servers.DeliveryStatusWebhook
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	key := firstOf(body.OrderId, body.DeliveryId, body.ExternalId)
	if key == "" {
		return badRequest(ctx, "orderId is required")
	}

	cmd, err := commands.NewIngestDeliveryStatusCommand(
		key,
		firstOf(body.Status, body.DeliveryStatus),
		body.Correction != nil && *body.Correction,
		driverFromBody(body.Driver),
		etaFromBody(body.Eta),
	)
	if err != nil {
		return badRequest(ctx, "Invalid status update: "+err.Error())
	}

	result, err := s.ingestStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err, "Failed to apply status update")
	}

	ack := servers.DeliveryStatusAck{
		Ok:         true,
		Changed:    result.Changed,
		StatusCode: int(result.StatusCode),
		DeliveryId: &key,
	}
	if result.Ignored {
		ack.Ignored = &result.Ignored
	}
	if result.Stale {
		ack.Stale = &result.Stale
	}
	if result.OrderID > 0 {
		ack.OrderId = &result.OrderID
	}
	if !result.Ignored && !result.Stale {
		ack.RowsAffected = &result.RowsAffected
	}
	return ctx.JSON(http.StatusOK, ack)
}

// GetOrderTracking handles GET /api/v1/orders/{orderId}/tracking. The stored
// document is returned byte for byte.
func (s *Server) GetOrderTracking(ctx echo.Context, orderID string) error {
	query, err := queries.NewGetTrackingDocumentQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order key: "+err.Error())
	}

	raw, err := s.getTrackingHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to read tracking document")
	}

	return ctx.Blob(http.StatusOK, echo.MIMEApplicationJSON, raw)
}

// GetOrderDelivery handles GET /api/v1/orders/{orderId}/delivery.
func (s *Server) GetOrderDelivery(ctx echo.Context, orderID servers.OrderID) error {
	query, err := queries.NewGetOrderDeliveryQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	view, err := s.getOrderDeliveryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "Failed to retrieve delivery")
	}

	response := servers.OrderDelivery{
		OrderId:        view.OrderID,
		Provider:       view.Provider,
		Status:         view.Status,
		StatusCode:     view.StatusCode,
		DispatchStatus: view.DispatchStatus,
	}
	if view.DeliveryID != "" {
		response.DeliveryId = &view.DeliveryID
	}
	if view.DispatchAttempts > 0 {
		response.DispatchAttempts = &view.DispatchAttempts
	}
	if view.LastError != "" {
		response.LastError = &view.LastError
	}
	return ctx.JSON(http.StatusOK, response)
}

// CancelOrderDelivery handles POST /api/v1/orders/{orderId}/delivery/cancel.
func (s *Server) CancelOrderDelivery(ctx echo.Context, orderID servers.OrderID) error {
	cmd, err := commands.NewCancelDeliveryCommand(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid order id: "+err.Error())
	}

	result, err := s.cancelDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err, "Failed to cancel delivery")
	}

	return ctx.JSON(http.StatusOK, servers.CancelDeliveryResponse{
		OrderId:        result.OrderID,
		Provider:       result.Provider,
		DeliveryId:     result.DeliveryID,
		DispatchStatus: order.DispatchCancelled,
	})
}

func submitParams(body servers.SubmitOrderRequest, params servers.SubmitOrderParams) commands.SubmitOrderParams {
	p := commands.SubmitOrderParams{
		CustomerUUID:    deref(body.Customer.Uuid),
		Email:           body.Customer.Email,
		Name:            deref(body.Customer.Name),
		Phone:           deref(body.Customer.Phone),
		Basket:          make([]order.BasketLine, 0, len(body.Basket)),
		Total:           body.Total,
		PaymentMethod:   deref(body.Payment.Method),
		PaymentIntentID: strings.TrimSpace(body.Payment.PaymentIntentId),
		PushToken:       deref(body.PushToken),
		CorrelationID:   deref(params.XRequestId),
		IdempotencyKey:  deref(params.IdempotencyKey),
	}
	for _, line := range body.Basket {
		p.Basket = append(p.Basket, order.BasketLine{
			ProductID: line.ProductId,
			Name:      deref(line.Name),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	if d := body.Delivery; d != nil {
		p.Delivery = order.DeliveryDetails{
			IsDelivery:     d.IsDelivery,
			Address:        strings.TrimSpace(deref(d.Address)),
			Postcode:       strings.TrimSpace(deref(d.Postcode)),
			RecipientName:  deref(d.RecipientName),
			RecipientPhone: deref(d.RecipientPhone),
			ScheduledFor:   deref(d.ScheduledFor),
			PickupTime:     d.PickupTime,
			Notes:          deref(d.Notes),
		}
		if d.Lat != nil {
			p.Delivery.Lat = *d.Lat
		}
		if d.Lng != nil {
			p.Delivery.Lng = *d.Lng
		}
	}
	return p
}

func submitResponse(r commands.SubmitOrderResult) servers.SubmitOrderResponse {
	response := servers.SubmitOrderResponse{
		OrderId:       r.OrderID,
		CustomerId:    r.CustomerID,
		Payment:       r.Payment,
		Dispatch:      servers.SubmitOrderResponseDispatch(r.Dispatch),
		ReceiptId:     r.ReceiptID,
		CorrelationId: r.CorrelationID,
		Steps:         make([]servers.StepOutcome, 0, len(r.Steps)),
	}
	if r.Delivery != nil {
		response.Delivery = &servers.DeliveryRef{Provider: r.Delivery.Provider, DeliveryId: r.Delivery.DeliveryID}
	}
	if r.LegacyOrderID > 0 {
		response.LegacyOrderId = &r.LegacyOrderID
	}
	if r.Error != "" {
		response.Error = &r.Error
	}
	for _, step := range r.Steps {
		out := servers.StepOutcome{Name: step.Name, Ok: step.OK}
		if step.Skipped {
			out.Skipped = &step.Skipped
		}
		if step.Error != "" {
			out.Error = &step.Error
		}
		response.Steps = append(response.Steps, out)
	}
	return response
}

func driverFromBody(d *servers.Driver) *tracking.Driver {
	if d == nil {
		return nil
	}
	driver := &tracking.Driver{Name: deref(d.Name), Phone: deref(d.Phone)}
	if loc := d.Location; loc != nil && loc.Lat != nil && loc.Long != nil {
		lat, latErr := loc.Lat.Float64()
		long, longErr := loc.Long.Float64()
		if latErr == nil && longErr == nil {
			driver.Location = &tracking.Location{Lat: lat, Long: long}
		}
	}
	return driver
}

func etaFromBody(e *servers.ETA) *tracking.ETA {
	if e == nil {
		return nil
	}
	return &tracking.ETA{Pickup: deref(e.Pickup), Dropoff: deref(e.Dropoff)}
}

func firstOf(values ...*string) string {
	for _, v := range values {
		if s := strings.TrimSpace(deref(v)); s != "" {
			return s
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
