package legacy

import (
	"context"

	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/ports"
)

// NoopMirror is used when no legacy database is configured. Mirror returns 0,
// which the submission pipeline records as a skipped step.
type NoopMirror struct{}

func (NoopMirror) Mirror(context.Context, ports.LegacyOrderSnapshot) (int64, error) { return 0, nil }

func (NoopMirror) UpdateCourierIDs(context.Context, int64, delivery.JobResult) error { return nil }
