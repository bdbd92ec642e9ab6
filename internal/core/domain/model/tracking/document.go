// Package tracking models the per-order delivery tracking document: the last
// known courier status, driver and ETA for one webhook key.
package tracking

import (
	"regexp"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

const maxKeyLength = 128

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

type Location struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type Driver struct {
	Name     string    `json:"name,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Location *Location `json:"location,omitempty"`
}

type ETA struct {
	Pickup  string `json:"pickup,omitempty"`
	Dropoff string `json:"dropoff,omitempty"`
}

// Document is the projection stored per webhook key. OrderID holds the key the
// courier sent, whether that was an internal order id or a courier delivery id.
type Document struct {
	OrderID        string           `json:"orderId"`
	Status         order.StatusCode `json:"status"`
	DeliveryStatus string           `json:"deliveryStatus"`
	Driver         *Driver          `json:"driver,omitempty"`
	ETA            *ETA             `json:"eta,omitempty"`
	UpdatedAtUTC   time.Time        `json:"updatedAtUtc"`
}

// NewDocument builds the document for a recognised status.
func NewDocument(key string, status order.StatusCode, rawStatus string, driver *Driver, eta *ETA, now time.Time) (Document, error) {
	if err := ValidateKey(key); err != nil {
		return Document{}, err
	}
	if !status.IsRecognized() {
		return Document{}, errs.NewValueIsInvalidError("status")
	}

	return Document{
		OrderID:        key,
		Status:         status,
		DeliveryStatus: rawStatus,
		Driver:         driver,
		ETA:            eta,
		UpdatedAtUTC:   now.UTC(),
	}, nil
}

// ValidateKey accepts keys that are safe to use as a file name component.
func ValidateKey(key string) error {
	if key == "" {
		return errs.NewValueIsRequiredError("order key")
	}
	if len(key) > maxKeyLength || !keyPattern.MatchString(key) {
		return errs.NewValueIsInvalidError("order key")
	}
	return nil
}
