package delivery

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrJobRequestIsNotConstructed is returned for JobRequest values built without NewJobRequest.
var ErrJobRequestIsNotConstructed = errors.New("JobRequest must be created via NewJobRequest constructor")

// Stop is one end of a courier job.
type Stop struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	Postcode string
	Location kernel.GeoPoint
}

// JobRequest is built once per dispatch decision and passed by value to one provider.
// Reference is the identifier the courier shows to drivers and sends back in webhooks.
type JobRequest struct {
	Reference string
	Pickup    Stop
	Dropoff   Stop
	Schedule  Schedule
	Value     decimal.Decimal
	ItemCount int
	Notes     string

	guard guard.ConstructorGuard
}

// NewJobRequest validates the parts every provider needs.
//
// Example:
//
//	req, err := delivery.NewJobRequest("88001", shop, customerStop, schedule, o.Subtotal(), 3, "ring the bell")
func NewJobRequest(
	reference string,
	pickup, dropoff Stop,
	schedule Schedule,
	value decimal.Decimal,
	itemCount int,
	notes string,
) (JobRequest, error) {
	var errRef, errPickup, errDropoff, errSchedule error
	if strings.TrimSpace(reference) == "" {
		errRef = errs.NewValueIsRequiredError("reference")
	}
	if strings.TrimSpace(pickup.Address) == "" {
		errPickup = errs.NewValueIsRequiredError("pickup address")
	}
	if strings.TrimSpace(dropoff.Address) == "" {
		errDropoff = errs.NewValueIsRequiredError("dropoff address")
	}
	if schedule.Target.IsZero() || schedule.Pickup.IsZero() {
		errSchedule = errs.NewValueIsRequiredError("schedule")
	}
	if err := errors.Join(errRef, errPickup, errDropoff, errSchedule); err != nil {
		return JobRequest{}, err
	}

	return JobRequest{
		Reference: reference,
		Pickup:    pickup,
		Dropoff:   dropoff,
		Schedule:  schedule,
		Value:     value,
		ItemCount: itemCount,
		Notes:     notes,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the request came from NewJobRequest.
func (r JobRequest) Validate() error {
	return r.guard.Validate(ErrJobRequestIsNotConstructed)
}

// JobResult identifies the created courier job.
type JobResult struct {
	Provider   string
	DeliveryID string
}
