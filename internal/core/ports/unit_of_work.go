package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a transaction boundary spanning the customer and order tables.
// Repositories obtained before Begin run outside any transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// CustomerRepository returns a repository bound to the current transaction.
	CustomerRepository() CustomerRepository

	// OrderRepository returns a repository bound to the current transaction.
	OrderRepository() OrderRepository
}
