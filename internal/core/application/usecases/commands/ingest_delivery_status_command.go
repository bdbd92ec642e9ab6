package commands

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/tracking"
	"orderflow/internal/pkg/guard"
)

var ErrIngestDeliveryStatusCommandIsNotConstructed = errors.New(
	"IngestDeliveryStatusCommand must be created via NewIngestDeliveryStatusCommand constructor",
)

// IngestDeliveryStatusCommand is one courier status webhook. The key is either an
// internal order id (all digits) or a courier delivery id.
//
// Example:
//
//	cmd, err := NewIngestDeliveryStatusCommand("42", "in_transit", false, &tracking.Driver{Name: "Ali"}, nil)
type IngestDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	key        string
	status     string
	correction bool
	driver     *tracking.Driver
	eta        *tracking.ETA

	guard guard.ConstructorGuard
}

// NewIngestDeliveryStatusCommand rejects keys that are empty or unsafe as a file name.
// Unknown status text is accepted here and acknowledged as ignored by the handler.
func NewIngestDeliveryStatusCommand(
	key string,
	status string,
	correction bool,
	driver *tracking.Driver,
	eta *tracking.ETA,
) (IngestDeliveryStatusCommand, error) {
	key = strings.TrimSpace(key)
	if err := tracking.ValidateKey(key); err != nil {
		return IngestDeliveryStatusCommand{}, err
	}

	return IngestDeliveryStatusCommand{
		key:        key,
		status:     strings.TrimSpace(status),
		correction: correction,
		driver:     driver,
		eta:        eta,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c IngestDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrIngestDeliveryStatusCommandIsNotConstructed)
}

func (c IngestDeliveryStatusCommand) Key() string {
	return c.key
}

// Status is the raw courier status text.
func (c IngestDeliveryStatusCommand) Status() string {
	return c.status
}

// Correction allows the stored status to move backwards.
func (c IngestDeliveryStatusCommand) Correction() bool {
	return c.correction
}

func (c IngestDeliveryStatusCommand) Driver() *tracking.Driver {
	return c.driver
}

func (c IngestDeliveryStatusCommand) ETA() *tracking.ETA {
	return c.eta
}
