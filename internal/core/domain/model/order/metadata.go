package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetadataVersion is the current shape of Metadata. Stored documents with a lower
// version are migrated by the persistence layer on read.
const MetadataVersion = 1

// Dispatch states recorded in Metadata.Dispatch.Status.
const (
	DispatchDispatched = "dispatched"
	DispatchPending    = "pending"
	DispatchSkipped    = "skipped"
	DispatchCancelled  = "cancelled"

	// DispatchClaimed marks an order taken by a dispatch retry sweep. Only the
	// sweep that claimed it may book a courier or release it.
	DispatchClaimed = "dispatching"
)

// ProviderPending is the provider recorded on an order that has no delivery job.
const ProviderPending = "pending"

// Metadata is the typed side-channel document accumulated on an order while the
// submission pipeline runs. It is persisted as a single JSON document.
type Metadata struct {
	Version       int             `json:"version"`
	CustomerUUID  string          `json:"uuid"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Basket        []BasketLine    `json:"basket"`
	Delivery      DeliveryDetails `json:"delivery"`
	Payment       PaymentRef      `json:"payment"`
	Transfer      *TransferRef    `json:"transfer,omitempty"`
	Dispatch      DispatchRef     `json:"dispatch"`
	LegacyOrderID int64           `json:"legacyOrderId,omitempty"`
	Notifications Notifications   `json:"notifications"`
}

// BasketLine is one purchased product.
type BasketLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// LineTotal is UnitPrice x Quantity.
func (l BasketLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// DeliveryDetails is the drop-off half of the submission.
type DeliveryDetails struct {
	IsDelivery     bool       `json:"isDelivery"`
	Address        string     `json:"address,omitempty"`
	Postcode       string     `json:"postcode,omitempty"`
	Lat            float64    `json:"lat,omitempty"`
	Lng            float64    `json:"lng,omitempty"`
	RecipientName  string     `json:"recipientName,omitempty"`
	RecipientPhone string     `json:"recipientPhone,omitempty"`
	ScheduledFor   string     `json:"scheduledFor,omitempty"`
	PickupTime     *time.Time `json:"pickupTime,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// RequestsDispatch reports whether a courier should be booked.
func (d DeliveryDetails) RequestsDispatch() bool {
	return d.IsDelivery && d.Address != ""
}

type PaymentRef struct {
	Method          string `json:"method,omitempty"`
	PaymentIntentID string `json:"stripePaymentIntentId,omitempty"`
	ChargeID        string `json:"stripeChargeId,omitempty"`
}

type TransferRef struct {
	ID                   string          `json:"id"`
	DestinationPaymentID string          `json:"destinationPaymentId,omitempty"`
	SplitPercent         decimal.Decimal `json:"splitPercent"`
	AmountMinor          int64           `json:"amountMinor"`
}

// DispatchRef is the courier job attached to the order, if any.
type DispatchRef struct {
	Provider  string    `json:"provider"`
	ID        string    `json:"id,omitempty"`
	Status    string    `json:"status"`
	Attempts  int       `json:"attempts,omitempty"`
	LastError string    `json:"lastError,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

type Notifications struct {
	PushToken string `json:"pushToken,omitempty"`
}

func (m Metadata) clone() Metadata {
	c := m
	c.Basket = append([]BasketLine(nil), m.Basket...)
	if m.Transfer != nil {
		t := *m.Transfer
		c.Transfer = &t
	}
	if m.Delivery.PickupTime != nil {
		p := *m.Delivery.PickupTime
		c.Delivery.PickupTime = &p
	}
	return c
}
