package commands

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

// RetryPendingDispatchResult counts what one sweep did.
type RetryPendingDispatchResult struct {
	Scanned    int
	Dispatched int
	Failed     int
	Released   int
}

// RetryPendingDispatchCommandHandler books couriers for orders whose dispatch
// failed at submission time. Orders are claimed in storage before any courier
// call, so an order still inside its submission or held by another sweep is
// never dispatched twice.
//
// Example:
//
//	handler := NewRetryPendingDispatchCommandHandler(uowFactory, dispatcher, legacy, alerter, logger)
//	cmd, _ := NewRetryPendingDispatchCommand(5, 20, 5*time.Minute)
//	res, err := handler.Handle(ctx, cmd)
type RetryPendingDispatchCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher *DeliveryDispatcher
	legacy     ports.LegacyMirror
	alerter    ports.Alerter
	now        func() time.Time
	logger     *slog.Logger
}

func NewRetryPendingDispatchCommandHandler(
	uowFactory OrderUoWFactory,
	dispatcher *DeliveryDispatcher,
	legacy ports.LegacyMirror,
	alerter ports.Alerter,
	logger *slog.Logger,
) *RetryPendingDispatchCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryPendingDispatchCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		legacy:     legacy,
		alerter:    alerter,
		now:        time.Now,
		logger:     logger.With("component", "pending_dispatch"),
	}
}

// WithClock replaces the time source. Used by tests.
func (h *RetryPendingDispatchCommandHandler) WithClock(now func() time.Time) *RetryPendingDispatchCommandHandler {
	h.now = now
	return h
}

// Handle sweeps one batch. Each order is dispatched and saved on its own; a failure
// on one order does not stop the others.
func (h *RetryPendingDispatchCommandHandler) Handle(
	ctx context.Context,
	cmd RetryPendingDispatchCommand,
) (RetryPendingDispatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return RetryPendingDispatchResult{}, err
	}

	now := h.now()
	repo := h.uowFactory.Create().OrderRepository()
	pending, err := repo.ClaimAwaitingDispatch(ctx, ports.DispatchClaim{
		MaxAttempts: cmd.MaxAttempts(),
		IdleSince:   now.Add(-cmd.IdleFor()),
		ClaimedAt:   now,
		Limit:       cmd.BatchSize(),
	})
	if err != nil {
		return RetryPendingDispatchResult{}, err
	}

	result := RetryPendingDispatchResult{Scanned: len(pending)}
	for i, o := range pending {
		if ctx.Err() != nil {
			result.Released += h.release(ctx, pending[i:])
			break
		}
		log := h.logger.With("order_id", o.ID())

		job, dispatchErr := h.dispatcher.DispatchOrder(ctx, o)
		if err = repo.Update(ctx, o); err != nil {
			log.ErrorContext(ctx, "dispatch outcome not saved", "error", err, "delivery_id", job.DeliveryID)
			h.alerter.Alert(ctx, ports.OperatorAlert{
				Subject: "Dispatch retry not saved",
				OrderID: o.ID(),
				Context: map[string]any{"delivery": job, "dispatchError": errString(dispatchErr)},
				Err:     err,
			})
			result.Failed++
			continue
		}

		if dispatchErr != nil {
			result.Failed++
			log.WarnContext(ctx, "dispatch retry failed", "attempts", o.DispatchAttempts(), "error", dispatchErr)
			if o.DispatchAttempts() >= cmd.MaxAttempts() {
				h.alerter.Alert(ctx, ports.OperatorAlert{
					Subject: "Delivery dispatch abandoned",
					OrderID: o.ID(),
					Context: o.Metadata().Dispatch,
					Err:     dispatchErr,
				})
			}
			continue
		}

		result.Dispatched++
		log.InfoContext(ctx, "order dispatched on retry", "provider", job.Provider, "delivery_id", job.DeliveryID)

		if legacyID := o.Metadata().LegacyOrderID; legacyID > 0 {
			if err = h.legacy.UpdateCourierIDs(ctx, legacyID, job); err != nil {
				log.WarnContext(ctx, "legacy courier ids not updated", "error", err)
			}
		}
	}

	return result, nil
}

// release hands unprocessed claims back so the next sweep can pick them up.
func (h *RetryPendingDispatchCommandHandler) release(ctx context.Context, orders []*order.Order) int {
	saveCtx := context.WithoutCancel(ctx)
	repo := h.uowFactory.Create().OrderRepository()

	released := 0
	for _, o := range orders {
		o.ReleaseDispatchClaim(h.now())
		if err := repo.Update(saveCtx, o); err != nil {
			h.logger.ErrorContext(saveCtx, "dispatch claim not released", "order_id", o.ID(), "error", err)
			continue
		}
		released++
	}
	return released
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
