package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/order"
)

// ErrCancelFailed wraps the courier's refusal to cancel a job.
var ErrCancelFailed = errors.New("delivery cancellation failed")

type CancelDeliveryResult struct {
	OrderID    int64
	Provider   string
	DeliveryID string
}

// CancelDeliveryCommandHandler asks the courier holding the job to cancel it and
// marks the order's dispatch as cancelled.
type CancelDeliveryCommandHandler struct {
	uowFactory OrderUoWFactory
	dispatcher *DeliveryDispatcher
	now        func() time.Time
}

func NewCancelDeliveryCommandHandler(uowFactory OrderUoWFactory, dispatcher *DeliveryDispatcher) *CancelDeliveryCommandHandler {
	return &CancelDeliveryCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Handle returns order.ErrNoDeliveryAttached when the order has no courier job and
// ErrCancelFailed when the courier refused. Cancelling twice is a no-op.
func (h *CancelDeliveryCommandHandler) Handle(ctx context.Context, cmd CancelDeliveryCommand) (CancelDeliveryResult, error) {
	if err := cmd.Validate(); err != nil {
		return CancelDeliveryResult{}, err
	}

	repo := h.uowFactory.Create().OrderRepository()
	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return CancelDeliveryResult{}, err
	}
	if !o.HasDelivery() {
		return CancelDeliveryResult{}, order.ErrNoDeliveryAttached
	}

	if o.DispatchStatus() == order.DispatchCancelled {
		return CancelDeliveryResult{OrderID: o.ID(), Provider: o.Provider(), DeliveryID: o.DeliveryID()}, nil
	}

	provider, ok := h.dispatcher.Provider(o.Provider())
	if !ok {
		return CancelDeliveryResult{}, fmt.Errorf("%w: %s", ErrUnknownProvider, o.Provider())
	}

	if err = provider.Cancel(ctx, o.DeliveryID()); err != nil {
		return CancelDeliveryResult{}, fmt.Errorf("%w: %w", ErrCancelFailed, err)
	}

	if err = o.MarkDispatchCancelled(h.now()); err != nil {
		return CancelDeliveryResult{}, err
	}
	if err = repo.Update(ctx, o); err != nil {
		return CancelDeliveryResult{}, err
	}

	return CancelDeliveryResult{
		OrderID:    o.ID(),
		Provider:   o.Provider(),
		DeliveryID: o.DeliveryID(),
	}, nil
}
