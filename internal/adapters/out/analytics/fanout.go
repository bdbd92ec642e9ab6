package analytics

import (
	"context"
	"errors"

	"orderflow/internal/core/ports"
)

// Fanout sends each event to every sink and joins their errors.
type Fanout []ports.AnalyticsSink

func (f Fanout) TrackPurchase(ctx context.Context, event ports.PurchaseEvent) error {
	var errs []error
	for _, sink := range f {
		if err := sink.TrackPurchase(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop discards events.
type Noop struct{}

func (Noop) TrackPurchase(context.Context, ports.PurchaseEvent) error { return nil }
