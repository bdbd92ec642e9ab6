package order

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrOrderIDAlreadyAssigned is returned when AssignID is called twice.
	ErrOrderIDAlreadyAssigned = errors.New("order ID is already assigned")

	// ErrDeliveryAlreadyAttached enforces at most one delivery job per order.
	ErrDeliveryAlreadyAttached = errors.New("order already has a delivery job attached")

	// ErrNoDeliveryAttached is returned when cancelling an order without a delivery job.
	ErrNoDeliveryAttached = errors.New("order has no delivery job attached")
)

// Order is the persisted record of a paid submission and the aggregate root for
// everything the pipeline learns afterwards: payment references, the merchant
// transfer, the legacy mirror id, the courier job and the delivery status.
//
// Order follows these invariants:
//   - Basket is not empty and every line has a positive quantity
//   - Total is never below the basket subtotal; DeliveryFee = Total - Subtotal
//   - At most one delivery job is attached; without one the provider is "pending"
//   - Metadata is only ever enriched, never cleared
//
// The identifier is assigned by storage on insert, so a new Order has ID 0
// until AssignID is called.
type Order struct {
	id          int64
	customerID  int64
	total       decimal.Decimal
	subtotal    decimal.Decimal
	deliveryFee decimal.Decimal
	status      StatusCode
	metadata    Metadata
	createdAt   time.Time

	isConstructed bool
}

// NewOrder creates an Order in StatusReceived for a persisted customer.
//
// Parameters:
//   - customerID: storage identifier of the customer (must be positive)
//   - total: amount charged, including the delivery fee
//   - metadata: submission details; the basket drives the subtotal
//   - createdAt: creation time
//
// Example:
//
//	md := order.Metadata{
//	    Basket:   []order.BasketLine{{ProductID: "bagel", Name: "Salt beef bagel", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}},
//	    Delivery: order.DeliveryDetails{IsDelivery: true, Address: "1 High St"},
//	}
//	o, err := order.NewOrder(customerID, decimal.RequireFromString("25.00"), md, time.Now())
//	// o.Subtotal() == 20.00, o.DeliveryFee() == 5.00
func NewOrder(customerID int64, total decimal.Decimal, metadata Metadata, createdAt time.Time) (*Order, error) {
	o := &Order{
		status:        StatusReceived,
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setCustomerID(customerID),
		o.setBasket(metadata.Basket),
	); err != nil {
		return nil, err
	}

	subtotal := Subtotal(metadata.Basket)
	if err := o.setTotals(total, subtotal); err != nil {
		return nil, err
	}

	o.metadata = metadata.clone()
	o.metadata.Version = MetadataVersion
	o.metadata.Dispatch = DispatchRef{Provider: ProviderPending, Status: DispatchPending}
	if !metadata.Delivery.RequestsDispatch() {
		o.metadata.Dispatch.Status = DispatchSkipped
	}

	return o, nil
}

// RestoreOrder rebuilds an Order from storage without re-deriving totals.
func RestoreOrder(
	id int64,
	customerID int64,
	total, subtotal, deliveryFee decimal.Decimal,
	status StatusCode,
	metadata Metadata,
	createdAt time.Time,
) (*Order, error) {
	if id <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("id", id, 1, "max int64")
	}
	if err := status.Validate(); err != nil {
		return nil, err
	}

	return &Order{
		id:            id,
		customerID:    customerID,
		total:         total,
		subtotal:      subtotal,
		deliveryFee:   deliveryFee,
		status:        status,
		metadata:      metadata.clone(),
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

// Subtotal sums the basket line totals.
func Subtotal(basket []BasketLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range basket {
		sum = sum.Add(line.LineTotal())
	}
	return sum
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the storage identifier, or 0 before insertion.
func (o *Order) ID() int64 {
	return o.id
}

// AssignID records the identifier produced by storage. It can be called once.
func (o *Order) AssignID(id int64) error {
	if o.id != 0 {
		return ErrOrderIDAlreadyAssigned
	}
	if id <= 0 {
		return errs.NewValueIsOutOfRangeError("id", id, 1, "max int64")
	}
	o.id = id
	return nil
}

func (o *Order) CustomerID() int64 {
	return o.customerID
}

func (o *Order) Total() decimal.Decimal {
	return o.total
}

func (o *Order) Subtotal() decimal.Decimal {
	return o.subtotal
}

func (o *Order) DeliveryFee() decimal.Decimal {
	return o.deliveryFee
}

func (o *Order) Status() StatusCode {
	return o.status
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// Metadata returns a copy of the metadata document.
func (o *Order) Metadata() Metadata {
	return o.metadata.clone()
}

// Provider returns the courier that holds the delivery job, or "pending".
func (o *Order) Provider() string {
	if o.metadata.Dispatch.Provider == "" {
		return ProviderPending
	}
	return o.metadata.Dispatch.Provider
}

// DeliveryID returns the courier's job identifier, or "" when none is attached.
func (o *Order) DeliveryID() string {
	return o.metadata.Dispatch.ID
}

// HasDelivery reports whether a courier job is attached.
func (o *Order) HasDelivery() bool {
	return o.metadata.Dispatch.ID != "" && o.Provider() != ProviderPending
}

// DispatchStatus returns dispatched, pending, skipped or cancelled.
func (o *Order) DispatchStatus() string {
	return o.metadata.Dispatch.Status
}

// DispatchAttempts counts failed dispatch attempts so far.
func (o *Order) DispatchAttempts() int {
	return o.metadata.Dispatch.Attempts
}

// NeedsDispatch reports whether the order asked for delivery and still has no courier job.
func (o *Order) NeedsDispatch() bool {
	return o.metadata.Delivery.RequestsDispatch() &&
		!o.HasDelivery() &&
		o.metadata.Dispatch.Status == DispatchPending
}

// CourierReference is the identifier couriers see: the legacy order id when the
// mirror produced one, otherwise the internal order id.
func (o *Order) CourierReference() string {
	if o.metadata.LegacyOrderID > 0 {
		return strconv.FormatInt(o.metadata.LegacyOrderID, 10)
	}
	return strconv.FormatInt(o.id, 10)
}

// RecordCharge stores the charge that settled the payment intent.
func (o *Order) RecordCharge(chargeID string) {
	o.metadata.Payment.ChargeID = chargeID
}

// RecordTransfer stores the merchant split transfer.
func (o *Order) RecordTransfer(ref TransferRef) error {
	if ref.ID == "" {
		return errs.NewValueIsRequiredError("transfer id")
	}
	o.metadata.Transfer = &ref
	return nil
}

// RecordLegacyOrderID stores the identifier produced by the legacy mirror.
func (o *Order) RecordLegacyOrderID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsOutOfRangeError("legacy order id", id, 1, "max int64")
	}
	o.metadata.LegacyOrderID = id
	return nil
}

// AttachDelivery records the courier job created for this order.
//
// Returns ErrDeliveryAlreadyAttached if a job is already attached.
//
// Example:
//
//	if err := o.AttachDelivery("gophr", "job_123", time.Now()); err != nil {
//	    return err
//	}
//	o.DispatchStatus() // "dispatched"
func (o *Order) AttachDelivery(provider, deliveryID string, at time.Time) error {
	if o.HasDelivery() {
		return ErrDeliveryAlreadyAttached
	}
	if provider == "" || provider == ProviderPending {
		return errs.NewValueIsInvalidError("provider")
	}
	if deliveryID == "" {
		return errs.NewValueIsRequiredError("delivery id")
	}

	o.metadata.Dispatch.Provider = provider
	o.metadata.Dispatch.ID = deliveryID
	o.metadata.Dispatch.Status = DispatchDispatched
	o.metadata.Dispatch.LastError = ""
	o.metadata.Dispatch.UpdatedAt = at.UTC()
	return nil
}

// MarkDispatchFailed leaves the order with provider "pending" and counts the attempt.
func (o *Order) MarkDispatchFailed(reason string, at time.Time) {
	o.metadata.Dispatch.Provider = ProviderPending
	o.metadata.Dispatch.ID = ""
	o.metadata.Dispatch.Status = DispatchPending
	o.metadata.Dispatch.Attempts++
	o.metadata.Dispatch.LastError = reason
	o.metadata.Dispatch.UpdatedAt = at.UTC()
}

// ReleaseDispatchClaim returns a claimed order to the pending state without
// counting an attempt. Orders in any other state are left alone.
func (o *Order) ReleaseDispatchClaim(at time.Time) {
	if o.metadata.Dispatch.Status != DispatchClaimed {
		return
	}
	o.metadata.Dispatch.Status = DispatchPending
	o.metadata.Dispatch.UpdatedAt = at.UTC()
}

// MarkDispatchCancelled records that the courier job was cancelled. The provider
// and job id are kept so later webhooks still correlate.
func (o *Order) MarkDispatchCancelled(at time.Time) error {
	if !o.HasDelivery() {
		return ErrNoDeliveryAttached
	}
	o.metadata.Dispatch.Status = DispatchCancelled
	o.metadata.Dispatch.UpdatedAt = at.UTC()
	return nil
}

func (o *Order) setCustomerID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsOutOfRangeError("customer id", id, 1, "max int64")
	}
	o.customerID = id
	return nil
}

func (o *Order) setBasket(basket []BasketLine) error {
	if len(basket) == 0 {
		return errs.NewValueIsRequiredError("basket")
	}
	for i, line := range basket {
		if line.Quantity <= 0 {
			return errs.NewValueIsInvalidErrorWithCause(
				"basket quantity",
				fmt.Errorf("line %d: %d is not greater than 0", i, line.Quantity),
			)
		}
		if line.UnitPrice.IsNegative() {
			return errs.NewValueIsInvalidErrorWithCause(
				"basket price",
				fmt.Errorf("line %d: %s is negative", i, line.UnitPrice),
			)
		}
	}
	return nil
}

func (o *Order) setTotals(total, subtotal decimal.Decimal) error {
	if total.LessThan(subtotal) {
		return errs.NewValueIsOutOfRangeError("total", total.StringFixed(2), subtotal.StringFixed(2), "unbounded")
	}
	o.total = total
	o.subtotal = subtotal
	o.deliveryFee = total.Sub(subtotal)
	return nil
}
