package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/metrics"
	"orderflow/internal/pkg/retry"
)

const (
	PaymentSucceeded = "succeeded"

	// SoftSuccessError is reported when the payment went through but the order
	// could not be stored. Operations reconcile it from the alert.
	SoftSuccessError = "saved_later"

	// UnknownReceiptID is the receipt reported when neither payment id is known.
	UnknownReceiptID = "PI_UNKNOWN"

	defaultAnalyticsTimeout = 5 * time.Second
)

const (
	StepOpsChat          = "ops_chat"
	StepInvoiceEmail     = "invoice_email"
	StepMerchantTransfer = "merchant_transfer"
	StepLegacyMirror     = "legacy_mirror"
	StepDeliveryDispatch = "delivery_dispatch"
	StepLegacyCourierIDs = "legacy_courier_ids"
)

var (
	// ErrPaymentNotSucceeded rejects submissions whose payment intent is not settled.
	ErrPaymentNotSucceeded = errors.New("payment has not succeeded")

	// ErrPaymentVerificationFailed is returned when the payment processor cannot be asked.
	ErrPaymentVerificationFailed = errors.New("payment verification failed")

	// ErrSubmissionInProgress is returned for a repeated idempotency key whose
	// first submission has not finished.
	ErrSubmissionInProgress = errors.New("submission with this idempotency key is in progress")

	errStepSkipped = errors.New("step skipped")
)

// PaymentNotSucceededError carries the processor's status for the rejected intent.
type PaymentNotSucceededError struct {
	Status string
}

func (e *PaymentNotSucceededError) Error() string {
	return fmt.Sprintf("%s: status %q", ErrPaymentNotSucceeded, e.Status)
}

func (e *PaymentNotSucceededError) Unwrap() error {
	return ErrPaymentNotSucceeded
}

// DeliveryOutcome identifies the courier job created for the order.
type DeliveryOutcome struct {
	Provider   string `json:"provider"`
	DeliveryID string `json:"deliveryId"`
}

// StepOutcome reports one best-effort step of the submission pipeline.
type StepOutcome struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SubmitOrderResult is returned to the storefront and stored for idempotent replay.
type SubmitOrderResult struct {
	OrderID       int64            `json:"orderId"`
	CustomerID    int64            `json:"customerId"`
	Payment       string           `json:"payment"`
	Dispatch      string           `json:"dispatch"`
	Delivery      *DeliveryOutcome `json:"delivery"`
	ReceiptID     string           `json:"receiptId"`
	LegacyOrderID int64            `json:"legacyOrderId,omitempty"`
	CorrelationID string           `json:"correlationId"`
	Error         string           `json:"error,omitempty"`
	Steps         []StepOutcome    `json:"steps"`

	// Replayed is set when the result came from the submission ledger.
	Replayed bool `json:"-"`
}

// SubmitOrderDependencies are the collaborators of the submission pipeline.
// Every field is required; disabled integrations are wired as no-op adapters.
type SubmitOrderDependencies struct {
	UoWFactory      UoWFactory
	Payments        ports.PaymentGateway
	Dispatcher      *DeliveryDispatcher
	Ledger          ports.SubmissionLedger
	Chat            ports.ChatSender
	Invoices        ports.InvoiceMailer
	Legacy          ports.LegacyMirror
	Analytics       ports.AnalyticsSink
	Alerter         ports.Alerter
	Retry           *retry.Executor
	Split           services.TransferSplit
	MerchantAccount string
	Currency        string
	Logger          *slog.Logger
}

// SubmitOrderCommandHandler turns a paid checkout into a persisted order and
// then drives the side effects around it.
//
// Pipeline:
//  1. Claim the idempotency key (replay a finished submission, reject one in flight)
//  2. Verify the payment intent succeeded and look up its charge
//  3. Upsert the customer and insert the order in one transaction, with retries
//  4. Run the best-effort steps: ops chat, invoice, merchant transfer, legacy mirror
//  5. Book a courier for delivery orders
//  6. Emit analytics in the background
//
// Only steps 1 to 3 can fail the request. When storage fails after payment the
// caller still gets a success-shaped answer with Error "saved_later" and
// operations are alerted.
//
// Example:
//
//	h, _ := NewSubmitOrderCommandHandler(deps)
//	res, err := h.Handle(ctx, cmd)
//	if errors.Is(err, ErrPaymentNotSucceeded) {
//	    // 402
//	}
type SubmitOrderCommandHandler struct {
	uowFactory       UoWFactory
	payments         ports.PaymentGateway
	dispatcher       *DeliveryDispatcher
	ledger           ports.SubmissionLedger
	chat             ports.ChatSender
	invoices         ports.InvoiceMailer
	legacy           ports.LegacyMirror
	analytics        ports.AnalyticsSink
	alerter          ports.Alerter
	retry            *retry.Executor
	split            services.TransferSplit
	merchantAccount  string
	currency         string
	analyticsTimeout time.Duration
	now              func() time.Time
	logger           *slog.Logger

	background sync.WaitGroup
}

// NewSubmitOrderCommandHandler checks that every collaborator is present.
func NewSubmitOrderCommandHandler(deps SubmitOrderDependencies) (*SubmitOrderCommandHandler, error) {
	var missing []error
	for name, dep := range map[string]any{
		"uow factory": deps.UoWFactory,
		"payments":    deps.Payments,
		"ledger":      deps.Ledger,
		"chat":        deps.Chat,
		"invoices":    deps.Invoices,
		"legacy":      deps.Legacy,
		"analytics":   deps.Analytics,
		"alerter":     deps.Alerter,
	} {
		if dep == nil {
			missing = append(missing, errs.NewValueIsRequiredError(name))
		}
	}
	if deps.Dispatcher == nil {
		missing = append(missing, errs.NewValueIsRequiredError("dispatcher"))
	}
	if deps.Retry == nil {
		missing = append(missing, errs.NewValueIsRequiredError("retry executor"))
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}
	if err := deps.Split.Validate(); err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	currency := deps.Currency
	if currency == "" {
		currency = "gbp"
	}

	return &SubmitOrderCommandHandler{
		uowFactory:       deps.UoWFactory,
		payments:         deps.Payments,
		dispatcher:       deps.Dispatcher,
		ledger:           deps.Ledger,
		chat:             deps.Chat,
		invoices:         deps.Invoices,
		legacy:           deps.Legacy,
		analytics:        deps.Analytics,
		alerter:          deps.Alerter,
		retry:            deps.Retry,
		split:            deps.Split,
		merchantAccount:  deps.MerchantAccount,
		currency:         currency,
		analyticsTimeout: defaultAnalyticsTimeout,
		now:              time.Now,
		logger:           logger.With("component", "submit_order"),
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (h *SubmitOrderCommandHandler) WithClock(now func() time.Time) *SubmitOrderCommandHandler {
	h.now = now
	return h
}

// submission is the state shared by the pipeline steps of one request.
type submission struct {
	cmd      SubmitOrderCommand
	customer *customer.Customer
	order    *order.Order
	chargeID string
	delivery *delivery.JobResult
}

type stepFunc func(ctx context.Context, s *submission) error

// Handle runs the pipeline for one submission.
func (h *SubmitOrderCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) (SubmitOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return SubmitOrderResult{}, err
	}

	log := h.logger.With("correlation_id", cmd.CorrelationID())

	replay, err := h.reserve(ctx, log, cmd)
	if err != nil {
		return SubmitOrderResult{}, err
	}
	if replay != nil {
		log.InfoContext(ctx, "replaying stored submission", "order_id", replay.OrderID)
		return *replay, nil
	}

	result, err := h.submit(ctx, log, cmd)
	if err != nil {
		h.release(ctx, log, cmd)
		return SubmitOrderResult{}, err
	}

	h.complete(ctx, log, cmd, result)
	return result, nil
}

func (h *SubmitOrderCommandHandler) submit(
	ctx context.Context,
	log *slog.Logger,
	cmd SubmitOrderCommand,
) (SubmitOrderResult, error) {
	paymentIntentID := cmd.Payment().PaymentIntentID

	status, err := h.payments.VerifySucceeded(ctx, paymentIntentID)
	if err != nil {
		return SubmitOrderResult{}, fmt.Errorf("%w: %w", ErrPaymentVerificationFailed, err)
	}
	if !status.Succeeded {
		log.WarnContext(ctx, "payment not succeeded", "payment_intent", paymentIntentID, "status", status.Status)
		return SubmitOrderResult{}, &PaymentNotSucceededError{Status: status.Status}
	}

	chargeID, err := h.payments.FindCharge(ctx, paymentIntentID)
	if err != nil {
		log.WarnContext(ctx, "charge lookup failed", "payment_intent", paymentIntentID, "error", err)
		chargeID = ""
	}

	s := &submission{cmd: cmd, chargeID: chargeID}
	if err = h.persist(ctx, s); err != nil {
		log.ErrorContext(ctx, "order not persisted after payment", "payment_intent", paymentIntentID, "error", err)
		h.alerter.Alert(ctx, ports.OperatorAlert{
			Subject: "Order not saved after successful payment",
			Context: cmd.view(),
			Err:     err,
		})
		return softSuccess(cmd, chargeID), nil
	}
	log = log.With("order_id", s.order.ID())

	steps := make([]StepOutcome, 0, 6)
	for _, step := range []struct {
		name   string
		action stepFunc
	}{
		{StepOpsChat, h.notifyOperators},
		{StepInvoiceEmail, h.sendInvoice},
		{StepMerchantTransfer, h.transferToMerchant},
		{StepLegacyMirror, h.mirrorToLegacy},
	} {
		steps = append(steps, h.attempt(ctx, log, s, step.name, step.action))
	}

	dispatch := order.DispatchSkipped
	if s.order.Metadata().Delivery.RequestsDispatch() {
		steps = append(steps, h.attempt(ctx, log, s, StepDeliveryDispatch, h.dispatch))
		dispatch = s.order.DispatchStatus()
		if s.delivery != nil && s.order.Metadata().LegacyOrderID > 0 {
			steps = append(steps, h.attempt(ctx, log, s, StepLegacyCourierIDs, h.updateLegacyCourierIDs))
		}
	}

	h.trackPurchase(ctx, log, s)

	result := SubmitOrderResult{
		OrderID:       s.order.ID(),
		CustomerID:    s.customer.ID(),
		Payment:       PaymentSucceeded,
		Dispatch:      dispatch,
		ReceiptID:     receiptID(paymentIntentID, chargeID),
		LegacyOrderID: s.order.Metadata().LegacyOrderID,
		CorrelationID: cmd.CorrelationID(),
		Steps:         steps,
	}
	if s.delivery != nil {
		result.Delivery = &DeliveryOutcome{Provider: s.delivery.Provider, DeliveryID: s.delivery.DeliveryID}
	}

	log.InfoContext(ctx, "order submitted", "customer_id", result.CustomerID, "dispatch", result.Dispatch)
	return result, nil
}

// persist upserts the customer and inserts the order in one transaction.
// Each retry starts from fresh aggregates because storage assigns ids.
func (h *SubmitOrderCommandHandler) persist(ctx context.Context, s *submission) error {
	type persisted struct {
		customer *customer.Customer
		order    *order.Order
	}

	p, err := retry.Do(ctx, h.retry, "persist_order", func(ctx context.Context) (persisted, error) {
		c, o, err := h.saveSubmission(ctx, s.cmd, s.chargeID)
		return persisted{customer: c, order: o}, err
	})
	if err != nil {
		return err
	}

	s.customer = p.customer
	s.order = p.order
	return nil
}

func (h *SubmitOrderCommandHandler) saveSubmission(
	ctx context.Context,
	cmd SubmitOrderCommand,
	chargeID string,
) (*customer.Customer, *order.Order, error) {
	c, err := customer.NewCustomer(cmd.CustomerUUID(), cmd.Email(), cmd.Name(), cmd.Phone())
	if err != nil {
		return nil, nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.CustomerRepository().Upsert(ctx, c); err != nil {
		return nil, nil, err
	}

	o, err := order.NewOrder(c.ID(), cmd.Total(), cmd.Metadata(), h.now())
	if err != nil {
		return nil, nil, err
	}
	if chargeID != "" {
		o.RecordCharge(chargeID)
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}

	return c, o, nil
}

// attempt runs one best-effort step. A failure is logged, counted and sent to
// operations but never stops the pipeline.
func (h *SubmitOrderCommandHandler) attempt(
	ctx context.Context,
	log *slog.Logger,
	s *submission,
	name string,
	action stepFunc,
) (outcome StepOutcome) {
	outcome = StepOutcome{Name: name}

	defer func() {
		if r := recover(); r != nil {
			outcome = h.stepFailed(ctx, log, s, name, fmt.Errorf("panic: %v", r))
		}
	}()

	err := action(ctx, s)
	switch {
	case err == nil:
		outcome.OK = true
		metrics.OrchestrationSteps.WithLabelValues(name, "ok").Inc()
	case errors.Is(err, errStepSkipped):
		outcome.OK = true
		outcome.Skipped = true
		metrics.OrchestrationSteps.WithLabelValues(name, "skipped").Inc()
	default:
		outcome = h.stepFailed(ctx, log, s, name, err)
	}
	return outcome
}

func (h *SubmitOrderCommandHandler) stepFailed(
	ctx context.Context,
	log *slog.Logger,
	s *submission,
	name string,
	err error,
) StepOutcome {
	metrics.OrchestrationSteps.WithLabelValues(name, "failed").Inc()
	log.ErrorContext(ctx, "submission step failed", "step", name, "error", err)

	alertContext := map[string]any{
		"step":     name,
		"request":  s.cmd.view(),
		"dispatch": s.order.Metadata().Dispatch,
	}
	if s.delivery != nil {
		alertContext["delivery"] = s.delivery
	}
	h.alerter.Alert(ctx, ports.OperatorAlert{
		Subject: "Order step failed: " + name,
		OrderID: s.order.ID(),
		Context: alertContext,
		Err:     err,
	})

	return StepOutcome{Name: name, Error: err.Error()}
}

func (h *SubmitOrderCommandHandler) notifyOperators(ctx context.Context, s *submission) error {
	return h.chat.SendChatMessage(ctx, OrderSummaryText(s.order, s.cmd.Name(), s.cmd.Phone()))
}

func (h *SubmitOrderCommandHandler) sendInvoice(ctx context.Context, s *submission) error {
	md := s.order.Metadata()
	return h.invoices.SendInvoice(ctx, ports.Invoice{
		OrderID:       s.order.ID(),
		LegacyOrderID: md.LegacyOrderID,
		ReceiptID:     receiptID(md.Payment.PaymentIntentID, md.Payment.ChargeID),
		CustomerName:  s.cmd.Name(),
		Email:         s.cmd.Email(),
		Lines:         md.Basket,
		Subtotal:      s.order.Subtotal(),
		DeliveryFee:   s.order.DeliveryFee(),
		Total:         s.order.Total(),
		IsDelivery:    md.Delivery.IsDelivery,
		Address:       md.Delivery.Address,
		PlacedAt:      s.order.CreatedAt(),
	})
}

func (h *SubmitOrderCommandHandler) transferToMerchant(ctx context.Context, s *submission) error {
	if h.merchantAccount == "" {
		return errStepSkipped
	}

	amount := h.split.AmountMinor(s.order.Subtotal())
	if amount <= 0 {
		return errStepSkipped
	}

	orderID := strconv.FormatInt(s.order.ID(), 10)
	receipt, err := h.payments.Transfer(ctx, ports.TransferRequest{
		AmountMinor:    amount,
		Currency:       h.currency,
		Destination:    h.merchantAccount,
		SourceChargeID: s.chargeID,
		TransferGroup:  "order_" + orderID,
		Metadata: map[string]string{
			"orderId":         orderID,
			"paymentIntentId": s.cmd.Payment().PaymentIntentID,
		},
	})
	if err != nil {
		return err
	}

	if err = s.order.RecordTransfer(order.TransferRef{
		ID:                   receipt.TransferID,
		DestinationPaymentID: receipt.DestinationPaymentID,
		SplitPercent:         h.split.Percent(),
		AmountMinor:          amount,
	}); err != nil {
		return err
	}
	return h.saveOrder(ctx, s.order)
}

func (h *SubmitOrderCommandHandler) mirrorToLegacy(ctx context.Context, s *submission) error {
	md := s.order.Metadata()
	legacyID, err := h.legacy.Mirror(ctx, ports.LegacyOrderSnapshot{
		OrderID:         s.order.ID(),
		CustomerUUID:    md.CustomerUUID,
		Email:           s.cmd.Email(),
		Name:            s.cmd.Name(),
		Phone:           s.cmd.Phone(),
		Basket:          md.Basket,
		Delivery:        md.Delivery,
		Subtotal:        s.order.Subtotal(),
		DeliveryFee:     s.order.DeliveryFee(),
		Total:           s.order.Total(),
		PaymentIntentID: md.Payment.PaymentIntentID,
		PlacedAt:        s.order.CreatedAt(),
	})
	if err != nil {
		return err
	}
	if legacyID <= 0 {
		return errStepSkipped
	}

	if err = s.order.RecordLegacyOrderID(legacyID); err != nil {
		return err
	}
	return h.saveOrder(ctx, s.order)
}

func (h *SubmitOrderCommandHandler) dispatch(ctx context.Context, s *submission) error {
	result, dispatchErr := h.dispatcher.DispatchOrder(ctx, s.order)
	if dispatchErr == nil {
		s.delivery = &result
	}

	if err := h.saveOrder(ctx, s.order); err != nil {
		return errors.Join(dispatchErr, fmt.Errorf("record dispatch: %w", err))
	}
	return dispatchErr
}

func (h *SubmitOrderCommandHandler) updateLegacyCourierIDs(ctx context.Context, s *submission) error {
	return h.legacy.UpdateCourierIDs(ctx, s.order.Metadata().LegacyOrderID, *s.delivery)
}

// saveOrder records a step's metadata. The retry executor covers the initial
// persistence only; a failed update here surfaces through the step's alert.
func (h *SubmitOrderCommandHandler) saveOrder(ctx context.Context, o *order.Order) error {
	return h.uowFactory.Create().OrderRepository().Update(ctx, o)
}

// trackPurchase reports the purchase without holding up the response.
func (h *SubmitOrderCommandHandler) trackPurchase(ctx context.Context, log *slog.Logger, s *submission) {
	event := ports.PurchaseEvent{
		OrderID:       s.order.ID(),
		ClientID:      s.order.Metadata().CustomerUUID,
		CorrelationID: s.cmd.CorrelationID(),
		Currency:      h.currency,
		Value:         s.order.Total(),
		Shipping:      s.order.DeliveryFee(),
		Items:         s.order.Metadata().Basket,
		OccurredAt:    s.order.CreatedAt(),
	}

	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.analyticsTimeout)
	h.background.Add(1)
	go func() {
		defer h.background.Done()
		defer cancel()
		if err := h.analytics.TrackPurchase(bg, event); err != nil {
			log.WarnContext(bg, "analytics not recorded", "error", err)
		}
	}()
}

// Wait blocks until reports started by earlier submissions have finished or
// ctx is done.
func (h *SubmitOrderCommandHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *SubmitOrderCommandHandler) reserve(
	ctx context.Context,
	log *slog.Logger,
	cmd SubmitOrderCommand,
) (*SubmitOrderResult, error) {
	key := cmd.IdempotencyKey()
	if key == "" {
		return nil, nil
	}

	entry, err := h.ledger.Reserve(ctx, key)
	if err != nil {
		log.WarnContext(ctx, "submission ledger unavailable", "error", err)
		return nil, nil
	}
	if entry == nil {
		return nil, nil
	}

	if entry.State == ports.LedgerCompleted && len(entry.Response) > 0 {
		var stored SubmitOrderResult
		if err = json.Unmarshal(entry.Response, &stored); err == nil {
			stored.Replayed = true
			return &stored, nil
		}
		log.WarnContext(ctx, "stored submission unreadable", "error", err)
	}
	return nil, ErrSubmissionInProgress
}

func (h *SubmitOrderCommandHandler) complete(
	ctx context.Context,
	log *slog.Logger,
	cmd SubmitOrderCommand,
	result SubmitOrderResult,
) {
	if cmd.IdempotencyKey() == "" {
		return
	}
	body, err := json.Marshal(result)
	if err == nil {
		err = h.ledger.Complete(ctx, cmd.IdempotencyKey(), body)
	}
	if err != nil {
		log.WarnContext(ctx, "submission not recorded in ledger", "error", err)
	}
}

func (h *SubmitOrderCommandHandler) release(ctx context.Context, log *slog.Logger, cmd SubmitOrderCommand) {
	if cmd.IdempotencyKey() == "" {
		return
	}
	if err := h.ledger.Release(ctx, cmd.IdempotencyKey()); err != nil {
		log.WarnContext(ctx, "submission ledger release failed", "error", err)
	}
}

func softSuccess(cmd SubmitOrderCommand, chargeID string) SubmitOrderResult {
	return SubmitOrderResult{
		Payment:       PaymentSucceeded,
		Dispatch:      order.DispatchPending,
		ReceiptID:     receiptID(cmd.Payment().PaymentIntentID, chargeID),
		CorrelationID: cmd.CorrelationID(),
		Error:         SoftSuccessError,
		Steps:         []StepOutcome{},
	}
}

func receiptID(paymentIntentID, chargeID string) string {
	switch {
	case paymentIntentID != "":
		return paymentIntentID
	case chargeID != "":
		return chargeID
	default:
		return UnknownReceiptID
	}
}
