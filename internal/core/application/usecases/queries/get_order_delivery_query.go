package queries

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderDeliveryQueryIsNotConstructed = errors.New(
	"GetOrderDeliveryQuery must be created via NewGetOrderDeliveryQuery constructor",
)

// GetOrderDeliveryQuery reads the courier job and delivery status of one order.
type GetOrderDeliveryQuery struct {
	orderID int64

	guard guard.ConstructorGuard
}

func NewGetOrderDeliveryQuery(orderID int64) (GetOrderDeliveryQuery, error) {
	if orderID <= 0 {
		return GetOrderDeliveryQuery{}, errs.NewValueIsOutOfRangeError("order id", orderID, 1, "max int64")
	}
	return GetOrderDeliveryQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderDeliveryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderDeliveryQueryIsNotConstructed)
}

func (q GetOrderDeliveryQuery) OrderID() int64 {
	return q.orderID
}

// GetOrderDeliveryQueryResponse is the delivery view of an order.
type GetOrderDeliveryQueryResponse struct {
	OrderID          int64
	StatusCode       int
	Status           string
	Provider         string
	DeliveryID       string
	DispatchStatus   string
	DispatchAttempts int
	LastError        string
}
