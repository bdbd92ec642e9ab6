package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// OrderRef addresses an order either by internal id or by courier delivery id.
type OrderRef struct {
	OrderID    int64
	DeliveryID string
}

// ByOrderID reports whether the reference uses the internal id.
func (r OrderRef) ByOrderID() bool {
	return r.OrderID > 0
}

// PushTarget is the device a status notification goes to, together with the
// status code currently stored on the order.
type PushTarget struct {
	OrderID int64
	Token   string
	Status  order.StatusCode
}

// StatusRepository is the persistence gateway for delivery status.
type StatusRepository interface {
	// UpdateStatus writes code when it differs from the stored code and returns
	// the number of rows changed. Unless correction is set, the stored code only
	// moves forward. Delivery id references match the dedicated column and the
	// courier job id inside the metadata document.
	UpdateStatus(ctx context.Context, ref OrderRef, code order.StatusCode, correction bool) (int64, error)

	// ResolvePushTarget finds the order, its stored push token and status code.
	// Returns errs.ErrObjectNotFound when no order matches.
	ResolvePushTarget(ctx context.Context, ref OrderRef) (PushTarget, error)
}
