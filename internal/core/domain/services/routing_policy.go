package services

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/pkg/errs"
)

const (
	DefaultDayStartHour = 7
	DefaultDayEndHour   = 18
)

// ErrRoutingPolicyIsNotConstructed is returned for a zero RoutingPolicy.
var ErrRoutingPolicyIsNotConstructed = errors.New("RoutingPolicy must be created via NewRoutingPolicy constructor")

// RoutingPolicy maps a pickup time to a courier shift using the shop-local hour.
// The daytime window [dayStartHour, dayEndHour] is inclusive at both ends; a
// start after the end describes a window that wraps past midnight.
//
// Example:
//
//	policy, _ := services.NewRoutingPolicy(7, 18, london)
//	policy.ShiftFor(time.Date(2026, 6, 1, 18, 59, 0, 0, london)) // delivery.Daytime
//	policy.ShiftFor(time.Date(2026, 6, 1, 19, 0, 0, 0, london))  // delivery.Nighttime
type RoutingPolicy struct {
	dayStartHour int
	dayEndHour   int
	location     *time.Location
}

// NewRoutingPolicy validates hours in [0, 23] and requires a location.
func NewRoutingPolicy(dayStartHour, dayEndHour int, location *time.Location) (RoutingPolicy, error) {
	var errStart, errEnd, errLoc error
	if dayStartHour < 0 || dayStartHour > 23 {
		errStart = errs.NewValueIsOutOfRangeError("day start hour", dayStartHour, 0, 23)
	}
	if dayEndHour < 0 || dayEndHour > 23 {
		errEnd = errs.NewValueIsOutOfRangeError("day end hour", dayEndHour, 0, 23)
	}
	if location == nil {
		errLoc = errs.NewValueIsRequiredError("location")
	}
	if err := errors.Join(errStart, errEnd, errLoc); err != nil {
		return RoutingPolicy{}, err
	}

	return RoutingPolicy{
		dayStartHour: dayStartHour,
		dayEndHour:   dayEndHour,
		location:     location,
	}, nil
}

// Validate ensures the policy came from NewRoutingPolicy.
func (p RoutingPolicy) Validate() error {
	if p.location == nil {
		return ErrRoutingPolicyIsNotConstructed
	}
	return nil
}

// ShiftFor returns the shift for a pickup instant. Urgency never changes the result.
func (p RoutingPolicy) ShiftFor(pickup time.Time) delivery.Shift {
	if p.IsDaytimeHour(pickup.In(p.location).Hour()) {
		return delivery.Daytime
	}
	return delivery.Nighttime
}

// IsDaytimeHour reports whether a local hour falls in the daytime window.
func (p RoutingPolicy) IsDaytimeHour(hour int) bool {
	if p.dayStartHour <= p.dayEndHour {
		return hour >= p.dayStartHour && hour <= p.dayEndHour
	}
	return hour >= p.dayStartHour || hour <= p.dayEndHour
}
