package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// LegacyOrderSnapshot is everything the legacy store records about an order.
type LegacyOrderSnapshot struct {
	OrderID         int64
	CustomerUUID    string
	Email           string
	Name            string
	Phone           string
	Basket          []order.BasketLine
	Delivery        order.DeliveryDetails
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	PaymentIntentID string
	PlacedAt        time.Time
}

// LegacyMirror copies orders into the secondary store used by the shop's older tools.
type LegacyMirror interface {
	// Mirror stores the snapshot and returns the secondary order id.
	Mirror(ctx context.Context, snapshot LegacyOrderSnapshot) (int64, error)

	// UpdateCourierIDs attaches the courier job to the mirrored order.
	UpdateCourierIDs(ctx context.Context, legacyOrderID int64, result delivery.JobResult) error
}
