package queries

import (
	"context"

	"orderflow/internal/core/ports"
)

// GetTrackingDocumentQueryHandler returns the stored document bytes unchanged.
type GetTrackingDocumentQueryHandler struct {
	store ports.TrackingStore
}

func NewGetTrackingDocumentQueryHandler(store ports.TrackingStore) GetTrackingDocumentQueryHandler {
	return GetTrackingDocumentQueryHandler{store: store}
}

// Handle returns errs.ErrObjectNotFound when no webhook was received for the key.
func (h GetTrackingDocumentQueryHandler) Handle(ctx context.Context, query GetTrackingDocumentQuery) ([]byte, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.store.Read(ctx, query.Key())
}
