package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type PurchaseEvent struct {
	OrderID       int64
	ClientID      string
	CorrelationID string
	Currency      string
	Value         decimal.Decimal
	Shipping      decimal.Decimal
	Items         []order.BasketLine
	OccurredAt    time.Time
}

// AnalyticsSink records purchases. Calls are fire-and-forget for the caller.
type AnalyticsSink interface {
	TrackPurchase(ctx context.Context, event PurchaseEvent) error
}
