package commands

import (
	"errors"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrSubmitOrderCommandIsNotConstructed = errors.New(
		"SubmitOrderCommand must be created via NewSubmitOrderCommand constructor",
	)
	ErrPaymentReferenceRequired = errors.New("payment intent id is required")
	ErrBasketIsEmpty            = errors.New("basket must contain at least one item")
	ErrTotalBelowSubtotal       = errors.New("total is below the basket subtotal")
	ErrDeliveryAddressRequired  = errors.New("delivery address is required for delivery orders")
)

// SubmitOrderParams is the checkout payload as received from the storefront.
type SubmitOrderParams struct {
	CustomerUUID    string
	Email           string
	Name            string
	Phone           string
	Basket          []order.BasketLine
	Total           decimal.Decimal
	PaymentMethod   string
	PaymentIntentID string
	Delivery        order.DeliveryDetails
	PushToken       string
	CorrelationID   string
	IdempotencyKey  string
}

// SubmitOrderCommand is a validated checkout submission.
//
// Example:
//
//	cmd, err := NewSubmitOrderCommand(SubmitOrderParams{
//	    Email:           "sam@example.com",
//	    Basket:          []order.BasketLine{{ProductID: "bagel", Quantity: 2, UnitPrice: decimal.RequireFromString("10")}},
//	    Total:           decimal.RequireFromString("25"),
//	    PaymentIntentID: "pi_123",
//	    Delivery:        order.DeliveryDetails{IsDelivery: true, Address: "1 High St"},
//	})
type SubmitOrderCommand struct { //nolint:recvcheck //using for validation
	customerUUID   kernel.UUID
	email          string
	name           string
	phone          string
	basket         []order.BasketLine
	total          decimal.Decimal
	payment        order.PaymentRef
	delivery       order.DeliveryDetails
	pushToken      string
	correlationID  string
	idempotencyKey string
	receivedAt     time.Time

	guard guard.ConstructorGuard
}

// NewSubmitOrderCommand validates the payload. All failures are returned at once.
// A missing customer UUID is derived from the e-mail, and a missing correlation id
// falls back to the idempotency key and then to a new UUID.
func NewSubmitOrderCommand(p SubmitOrderParams) (SubmitOrderCommand, error) {
	cmd := SubmitOrderCommand{
		name:           strings.TrimSpace(p.Name),
		phone:          strings.TrimSpace(p.Phone),
		pushToken:      strings.TrimSpace(p.PushToken),
		idempotencyKey: strings.TrimSpace(p.IdempotencyKey),
		receivedAt:     time.Now().UTC(),
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setEmail(p.Email),
		cmd.setCustomerUUID(p.CustomerUUID),
		cmd.setBasket(p.Basket, p.Total),
		cmd.setPayment(p.PaymentMethod, p.PaymentIntentID),
		cmd.setDelivery(p.Delivery),
	); err != nil {
		return SubmitOrderCommand{}, err
	}
	cmd.setCorrelationID(p.CorrelationID)

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitOrderCommand) Validate() error {
	return c.guard.Validate(ErrSubmitOrderCommandIsNotConstructed)
}

func (c SubmitOrderCommand) CustomerUUID() kernel.UUID {
	return c.customerUUID
}

func (c SubmitOrderCommand) Email() string {
	return c.email
}

func (c SubmitOrderCommand) Name() string {
	return c.name
}

func (c SubmitOrderCommand) Phone() string {
	return c.phone
}

// Basket returns a copy of the basket lines.
func (c SubmitOrderCommand) Basket() []order.BasketLine {
	return append([]order.BasketLine(nil), c.basket...)
}

func (c SubmitOrderCommand) Total() decimal.Decimal {
	return c.total
}

func (c SubmitOrderCommand) Payment() order.PaymentRef {
	return c.payment
}

// Delivery returns the drop-off details with the recipient defaulted to the customer.
func (c SubmitOrderCommand) Delivery() order.DeliveryDetails {
	d := c.delivery
	if d.RecipientName == "" {
		d.RecipientName = c.name
	}
	if d.RecipientPhone == "" {
		d.RecipientPhone = c.phone
	}
	return d
}

func (c SubmitOrderCommand) PushToken() string {
	return c.pushToken
}

func (c SubmitOrderCommand) CorrelationID() string {
	return c.correlationID
}

// IdempotencyKey is empty when the client did not send one.
func (c SubmitOrderCommand) IdempotencyKey() string {
	return c.idempotencyKey
}

func (c SubmitOrderCommand) ReceivedAt() time.Time {
	return c.receivedAt
}

// Metadata is the initial order metadata for this submission.
func (c SubmitOrderCommand) Metadata() order.Metadata {
	return order.Metadata{
		CustomerUUID:  c.customerUUID.String(),
		CorrelationID: c.correlationID,
		Basket:        c.Basket(),
		Delivery:      c.Delivery(),
		Payment:       c.payment,
		Notifications: order.Notifications{PushToken: c.pushToken},
	}
}

// submissionView is the request as shown in operator alerts.
type submissionView struct {
	CorrelationID   string                `json:"correlationId"`
	CustomerUUID    string                `json:"customerUuid"`
	Email           string                `json:"email"`
	Name            string                `json:"name,omitempty"`
	Phone           string                `json:"phone,omitempty"`
	Basket          []order.BasketLine    `json:"basket"`
	Total           string                `json:"total"`
	PaymentIntentID string                `json:"paymentIntentId"`
	Delivery        order.DeliveryDetails `json:"delivery"`
}

func (c SubmitOrderCommand) view() submissionView {
	return submissionView{
		CorrelationID:   c.correlationID,
		CustomerUUID:    c.customerUUID.String(),
		Email:           c.email,
		Name:            c.name,
		Phone:           c.phone,
		Basket:          c.basket,
		Total:           c.total.StringFixed(2),
		PaymentIntentID: c.payment.PaymentIntentID,
		Delivery:        c.delivery,
	}
}

func (c *SubmitOrderCommand) setEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errs.NewValueIsRequiredError("email")
	}
	if !strings.Contains(email, "@") {
		return errs.NewValueIsInvalidError("email")
	}
	c.email = email
	return nil
}

func (c *SubmitOrderCommand) setCustomerUUID(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if c.email == "" {
			return nil
		}
		c.customerUUID = kernel.UUIDFromName(c.email)
		return nil
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return err
	}
	c.customerUUID = id
	return nil
}

func (c *SubmitOrderCommand) setBasket(basket []order.BasketLine, total decimal.Decimal) error {
	if len(basket) == 0 {
		return ErrBasketIsEmpty
	}
	basket = append([]order.BasketLine(nil), basket...)
	for i, line := range basket {
		if line.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError("basket quantity", line.Quantity, 1, "unbounded")
		}
		if line.UnitPrice.IsNegative() {
			return errs.NewValueIsInvalidError("basket price")
		}
		if strings.TrimSpace(line.ProductID) == "" && strings.TrimSpace(line.Name) == "" {
			return errs.NewValueIsRequiredError("basket product")
		}
		basket[i].Name = strings.TrimSpace(line.Name)
	}
	if total.LessThan(order.Subtotal(basket)) {
		return ErrTotalBelowSubtotal
	}

	c.basket = basket
	c.total = total
	return nil
}

func (c *SubmitOrderCommand) setPayment(method, paymentIntentID string) error {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		return ErrPaymentReferenceRequired
	}
	c.payment = order.PaymentRef{
		Method:          strings.TrimSpace(method),
		PaymentIntentID: paymentIntentID,
	}
	return nil
}

func (c *SubmitOrderCommand) setDelivery(d order.DeliveryDetails) error {
	d.Address = strings.TrimSpace(d.Address)
	d.Postcode = strings.TrimSpace(d.Postcode)
	if d.IsDelivery && d.Address == "" {
		return ErrDeliveryAddressRequired
	}
	c.delivery = d
	return nil
}

func (c *SubmitOrderCommand) setCorrelationID(id string) {
	switch {
	case strings.TrimSpace(id) != "":
		c.correlationID = strings.TrimSpace(id)
	case c.idempotencyKey != "":
		c.correlationID = c.idempotencyKey
	default:
		c.correlationID = kernel.NewUUID().String()
	}
}
