package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/metrics"
)

// ErrUnknownProvider is returned when an order names a courier that is not configured.
var ErrUnknownProvider = errors.New("delivery provider is not configured")

// DeliveryDispatcher routes courier jobs to the daytime or nighttime provider
// according to the pickup hour in shop-local time.
//
// Example:
//
//	dispatcher, _ := NewDeliveryDispatcher(policy, rules, shop, gophr, orkestro)
//	result, err := dispatcher.DispatchOrder(ctx, o)
//	// err == nil: o.DispatchStatus() == "dispatched"
//	// err != nil: o.Provider() == "pending" and the attempt is counted
type DeliveryDispatcher struct {
	policy    services.RoutingPolicy
	rules     delivery.ScheduleRules
	shop      delivery.Stop
	providers map[delivery.Shift]ports.DeliveryProvider
	byName    map[string]ports.DeliveryProvider
	now       func() time.Time
}

// NewDeliveryDispatcher wires the routing policy to the two providers. shop is the
// pickup stop for every job and its phone is the fallback for customer phones.
func NewDeliveryDispatcher(
	policy services.RoutingPolicy,
	rules delivery.ScheduleRules,
	shop delivery.Stop,
	daytime ports.DeliveryProvider,
	nighttime ports.DeliveryProvider,
) (*DeliveryDispatcher, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if rules.Location == nil {
		return nil, errs.NewValueIsRequiredError("schedule rules")
	}
	if daytime == nil {
		return nil, errs.NewValueIsRequiredError("daytime provider")
	}
	if nighttime == nil {
		return nil, errs.NewValueIsRequiredError("nighttime provider")
	}

	return &DeliveryDispatcher{
		policy: policy,
		rules:  rules,
		shop:   shop,
		providers: map[delivery.Shift]ports.DeliveryProvider{
			delivery.Daytime:   daytime,
			delivery.Nighttime: nighttime,
		},
		byName: map[string]ports.DeliveryProvider{
			daytime.Name():   daytime,
			nighttime.Name(): nighttime,
		},
		now: time.Now,
	}, nil
}

// WithClock replaces the time source. Used by tests.
func (d *DeliveryDispatcher) WithClock(now func() time.Time) *DeliveryDispatcher {
	d.now = now
	return d
}

// Provider looks up a configured provider by the name stored on orders.
func (d *DeliveryDispatcher) Provider(name string) (ports.DeliveryProvider, bool) {
	p, ok := d.byName[name]
	return p, ok
}

// Route picks the provider for a job from its pickup time.
func (d *DeliveryDispatcher) Route(req delivery.JobRequest) ports.DeliveryProvider {
	return d.providers[d.policy.ShiftFor(req.Schedule.Pickup)]
}

// Dispatch submits the job to exactly one provider.
func (d *DeliveryDispatcher) Dispatch(ctx context.Context, req delivery.JobRequest) (delivery.JobResult, error) {
	if err := req.Validate(); err != nil {
		return delivery.JobResult{}, err
	}

	provider := d.Route(req)
	result, err := provider.Create(ctx, req)
	if err == nil && result.DeliveryID == "" {
		err = delivery.NewProviderRejectedError(provider.Name(), 0, "response carried no job id")
	}
	if err != nil {
		metrics.Dispatches.WithLabelValues(provider.Name(), "failed").Inc()
		return delivery.JobResult{}, err
	}

	if result.Provider == "" {
		result.Provider = provider.Name()
	}
	metrics.Dispatches.WithLabelValues(result.Provider, "created").Inc()
	return result, nil
}

// BuildJobRequest assembles the courier job for an order: the shop is the
// pickup, the recipient is the drop-off and the schedule comes from the
// customer's hint.
func (d *DeliveryDispatcher) BuildJobRequest(o *order.Order) (delivery.JobRequest, error) {
	md := o.Metadata()
	details := md.Delivery

	location, err := kernel.NewGeoPoint(details.Lat, details.Lng)
	if err != nil {
		return delivery.JobRequest{}, err
	}

	items := 0
	for _, line := range md.Basket {
		items += line.Quantity
	}

	dropoff := delivery.Stop{
		Name:     details.RecipientName,
		Phone:    kernel.NormalizeUKPhone(details.RecipientPhone, d.shop.Phone),
		Address:  details.Address,
		Postcode: details.Postcode,
		Location: location,
	}

	return delivery.NewJobRequest(
		o.CourierReference(),
		d.shop,
		dropoff,
		d.rules.Resolve(d.now(), details.ScheduledFor, details.PickupTime),
		o.Subtotal(),
		items,
		details.Notes,
	)
}

// DispatchOrder builds and submits the job for o and records the outcome on the
// aggregate. The caller persists o either way.
func (d *DeliveryDispatcher) DispatchOrder(ctx context.Context, o *order.Order) (delivery.JobResult, error) {
	if err := o.Validate(); err != nil {
		return delivery.JobResult{}, err
	}

	req, err := d.BuildJobRequest(o)
	if err != nil {
		o.MarkDispatchFailed(err.Error(), d.now())
		return delivery.JobResult{}, fmt.Errorf("build delivery job: %w", err)
	}

	result, err := d.Dispatch(ctx, req)
	if err != nil {
		o.MarkDispatchFailed(err.Error(), d.now())
		return delivery.JobResult{}, err
	}

	if err = o.AttachDelivery(result.Provider, result.DeliveryID, d.now()); err != nil {
		return result, err
	}
	return result, nil
}
