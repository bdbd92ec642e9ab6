// Package queries contains read-only operations: the tracking document served to
// the storefront and the delivery summary of an order.
package queries

import (
	"errors"
	"strings"

	"orderflow/internal/core/domain/model/tracking"
	"orderflow/internal/pkg/guard"
)

var ErrGetTrackingDocumentQueryIsNotConstructed = errors.New(
	"GetTrackingDocumentQuery must be created via NewGetTrackingDocumentQuery constructor",
)

// GetTrackingDocumentQuery fetches the stored tracking document for a webhook key.
//
// Example:
//
//	query, err := NewGetTrackingDocumentQuery("42")
//	if err != nil {
//	    return err // unsafe key
//	}
//	body, err := handler.Handle(ctx, query)
type GetTrackingDocumentQuery struct {
	key string

	guard guard.ConstructorGuard
}

// NewGetTrackingDocumentQuery validates the key with the same rules the webhook uses.
func NewGetTrackingDocumentQuery(key string) (GetTrackingDocumentQuery, error) {
	key = strings.TrimSpace(key)
	if err := tracking.ValidateKey(key); err != nil {
		return GetTrackingDocumentQuery{}, err
	}
	return GetTrackingDocumentQuery{key: key, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetTrackingDocumentQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingDocumentQueryIsNotConstructed)
}

func (q GetTrackingDocumentQuery) Key() string {
	return q.key
}
