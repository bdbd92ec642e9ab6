package commands

import (
	"errors"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrRetryPendingDispatchCommandIsNotConstructed = errors.New(
	"RetryPendingDispatchCommand must be created via NewRetryPendingDispatchCommand constructor",
)

// RetryPendingDispatchCommand re-dispatches delivery orders left without a courier job.
type RetryPendingDispatchCommand struct { //nolint:recvcheck //using for validation
	maxAttempts int
	batchSize   int
	idleFor     time.Duration

	guard guard.ConstructorGuard
}

// NewRetryPendingDispatchCommand creates the command. Orders that already failed
// maxAttempts times are left for operations; orders whose last dispatch attempt
// is more recent than idleFor are left for the next sweep.
func NewRetryPendingDispatchCommand(maxAttempts, batchSize int, idleFor time.Duration) (RetryPendingDispatchCommand, error) {
	cmd := RetryPendingDispatchCommand{guard: guard.NewConstructorGuard()}

	var errAttempts, errBatch, errIdle error
	if maxAttempts < 1 {
		errAttempts = errs.NewValueIsOutOfRangeError("max attempts", maxAttempts, 1, "unbounded")
	}
	if batchSize < 1 {
		errBatch = errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, "unbounded")
	}
	if idleFor < 0 {
		errIdle = errs.NewValueIsOutOfRangeError("idle for", idleFor, 0, "unbounded")
	}
	if err := errors.Join(errAttempts, errBatch, errIdle); err != nil {
		return RetryPendingDispatchCommand{}, err
	}

	cmd.maxAttempts = maxAttempts
	cmd.batchSize = batchSize
	cmd.idleFor = idleFor
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RetryPendingDispatchCommand) Validate() error {
	return c.guard.Validate(ErrRetryPendingDispatchCommandIsNotConstructed)
}

func (c RetryPendingDispatchCommand) MaxAttempts() int {
	return c.maxAttempts
}

func (c RetryPendingDispatchCommand) BatchSize() int {
	return c.batchSize
}

func (c RetryPendingDispatchCommand) IdleFor() time.Duration {
	return c.idleFor
}
