package order

import (
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

// StatusCode is the ordered delivery progress of an order as stored in the
// orders table. Higher codes are further along the delivery.
//
// Progression:
//
//	Received(0) ─> Queued(1) ─> EnRouteToPickup(2) ─> AtPickup(3) ─> InTransit(4) ─> Delivered(5)
//
// StatusUnrecognized (-1) is never stored. It marks courier status text that the
// service acknowledges but does not act on.
type StatusCode int

const (
	// StatusUnrecognized is the result of parsing unknown courier status text.
	StatusUnrecognized StatusCode = -1

	// StatusReceived is assigned when the order row is first inserted.
	StatusReceived StatusCode = 0

	// StatusQueued means the courier is looking for a driver.
	StatusQueued StatusCode = 1

	// StatusEnRouteToPickup means a driver accepted the job and is heading to the shop.
	StatusEnRouteToPickup StatusCode = 2

	// StatusAtPickup means the driver is at the shop.
	StatusAtPickup StatusCode = 3

	// StatusInTransit covers the trip to the customer, including arrival at drop-off.
	StatusInTransit StatusCode = 4

	// StatusDelivered is the final state.
	StatusDelivered StatusCode = 5
)

// statusTable maps normalised courier status text to codes. Both courier
// vocabularies plus a few plain-English aliases are accepted.
var statusTable = map[string]StatusCode{
	"pending":                   StatusQueued,
	"queued":                    StatusQueued,
	"looking_for_driver":        StatusQueued,
	"driver_en_route_to_pickup": StatusEnRouteToPickup,
	"en_route_to_pickup":        StatusEnRouteToPickup,
	"driver_at_pickup":          StatusAtPickup,
	"at_pickup":                 StatusAtPickup,
	"in_transit":                StatusInTransit,
	"driver_at_dropoff":         StatusInTransit,
	"at_dropoff":                StatusInTransit,
	"success":                   StatusDelivered,
	"delivered":                 StatusDelivered,
}

var statusNames = map[StatusCode]string{
	StatusUnrecognized:    "unrecognized",
	StatusReceived:        "received",
	StatusQueued:          "queued",
	StatusEnRouteToPickup: "en_route_to_pickup",
	StatusAtPickup:        "at_pickup",
	StatusInTransit:       "in_transit",
	StatusDelivered:       "delivered",
}

var statusTextNormalizer = strings.NewReplacer("-", "_", " ", "_")

// ParseStatusText normalises courier status text (trimmed, lower-cased, with
// hyphens and spaces turned into underscores) and looks it up in the status table.
// Unknown text yields StatusUnrecognized.
//
// Example:
//
//	order.ParseStatusText("Driver-At-Pickup") // StatusAtPickup
//	order.ParseStatusText("cancelled")        // StatusUnrecognized
func ParseStatusText(text string) StatusCode {
	key := statusTextNormalizer.Replace(strings.ToLower(strings.TrimSpace(text)))
	if code, ok := statusTable[key]; ok {
		return code
	}
	return StatusUnrecognized
}

// Validate accepts the codes that may be stored on an order (Received..Delivered).
func (s StatusCode) Validate() error {
	if s < StatusReceived || s > StatusDelivered {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsRecognized reports whether the code came from a known courier status.
func (s StatusCode) IsRecognized() bool {
	return s >= StatusQueued && s <= StatusDelivered
}

// NotifiesCustomer reports whether reaching this code sends the customer a push.
func (s StatusCode) NotifiesCustomer() bool {
	return s == StatusInTransit || s == StatusDelivered
}

// IsRegressionFrom reports whether moving from current to s goes backwards.
func (s StatusCode) IsRegressionFrom(current StatusCode) bool {
	return s < current
}

// String returns the snake_case name used in push payloads and logs.
func (s StatusCode) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unrecognized"
}
