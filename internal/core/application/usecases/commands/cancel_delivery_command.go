package commands

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCancelDeliveryCommandIsNotConstructed = errors.New(
	"CancelDeliveryCommand must be created via NewCancelDeliveryCommand constructor",
)

// CancelDeliveryCommand cancels the courier job attached to an order.
type CancelDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID int64

	guard guard.ConstructorGuard
}

func NewCancelDeliveryCommand(orderID int64) (CancelDeliveryCommand, error) {
	if orderID <= 0 {
		return CancelDeliveryCommand{}, errs.NewValueIsOutOfRangeError("order id", orderID, 1, "max int64")
	}
	return CancelDeliveryCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCancelDeliveryCommandIsNotConstructed)
}

func (c CancelDeliveryCommand) OrderID() int64 {
	return c.orderID
}
