package ports

import (
	"context"

	"orderflow/internal/core/domain/model/delivery"
)

// DeliveryProvider is one courier company.
type DeliveryProvider interface {
	// Name is the provider key stored on orders, e.g. "gophr".
	Name() string

	// Create books the job. Returns a delivery.ProviderRejectedError when the
	// courier refuses it or answers without a job id.
	Create(ctx context.Context, req delivery.JobRequest) (delivery.JobResult, error)

	// Cancel is best-effort.
	Cancel(ctx context.Context, deliveryID string) error
}
