package couriers

import (
	"context"

	"orderflow/internal/core/domain/model/delivery"
)

// Disabled stands in for a courier whose credentials are not configured. Every
// booking is rejected, which leaves the order pending for the retry sweep.
type Disabled struct {
	name string
}

func NewDisabled(name string) *Disabled {
	return &Disabled{name: name}
}

func (d *Disabled) Name() string {
	return d.name
}

func (d *Disabled) Create(_ context.Context, _ delivery.JobRequest) (delivery.JobResult, error) {
	return delivery.JobResult{}, delivery.NewProviderRejectedError(d.name, 0, "provider is not configured")
}

func (d *Disabled) Cancel(_ context.Context, _ string) error {
	return delivery.NewProviderRejectedError(d.name, 0, "provider is not configured")
}
