package ports

import (
	"context"

	"orderflow/internal/core/domain/model/tracking"
)

// TrackingStore keeps one tracking document per webhook key.
type TrackingStore interface {
	// Load returns the stored document, or errs.ErrObjectNotFound.
	Load(ctx context.Context, key string) (tracking.Document, error)

	// Save replaces the document for doc.OrderID atomically.
	Save(ctx context.Context, doc tracking.Document) error

	// Read returns the stored document bytes unchanged, or errs.ErrObjectNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
}
