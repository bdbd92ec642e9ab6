// Package ports defines the contracts between the application core and the
// adapters: persistence, courier providers, payment and notification channels.
package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add inserts a new order and assigns the storage identifier to it.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists metadata enrichment of an existing order (payment, transfer,
	// legacy id, courier job). The status code is owned by StatusRepository and is
	// never written here.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by identifier.
	// Returns errs.ErrObjectNotFound when no order exists.
	Get(ctx context.Context, id int64) (*order.Order, error)

	// ClaimAwaitingDispatch atomically moves up to claim.Limit orders whose earlier
	// dispatch failed into order.DispatchClaimed and returns them, oldest first.
	// A claimed order is invisible to other sweeps until it is dispatched, fails
	// again or is released.
	//
	// Example:
	//   claimed, err := repo.ClaimAwaitingDispatch(ctx, ports.DispatchClaim{
	//       MaxAttempts: 5, IdleSince: now.Add(-5 * time.Minute), ClaimedAt: now, Limit: 20,
	//   })
	ClaimAwaitingDispatch(ctx context.Context, claim DispatchClaim) ([]*order.Order, error)
}

// DispatchClaim selects orders for a dispatch retry. Only orders with at least one
// failed attempt, fewer than MaxAttempts in total, and no dispatch activity since
// IdleSince qualify. Orders still inside their submission never match.
type DispatchClaim struct {
	MaxAttempts int
	IdleSince   time.Time
	ClaimedAt   time.Time
	Limit       int
}

// CustomerRepository defines the persistence contract for customers.
type CustomerRepository interface {
	// Upsert inserts the customer or merges it into the row with the same UUID.
	// Blank e-mail, name and phone keep the stored values. Assigns the identifier.
	Upsert(ctx context.Context, c *customer.Customer) error
}
