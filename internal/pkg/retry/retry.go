// Package retry runs operations that may hit transient faults, retrying them with
// exponential backoff and random jitter while honouring context cancellation.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"os"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/metrics"
)

const (
	DefaultAttempts  = 3
	DefaultBaseDelay = 150 * time.Millisecond
	DefaultMaxJitter = 200 * time.Millisecond
)

// ErrTransient marks an error as safe to retry. Wrap with MarkTransient.
var ErrTransient = errors.New("transient failure")

// Classifier reports whether err belongs to the retryable set.
type Classifier func(err error) bool

// Policy bounds the executor: Attempts total tries, BaseDelay doubled after each
// failed attempt, plus a random jitter in [0, MaxJitter).
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxJitter time.Duration
}

// DefaultPolicy is three attempts starting at 150ms with up to 200ms of jitter.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  DefaultAttempts,
		BaseDelay: DefaultBaseDelay,
		MaxJitter: DefaultMaxJitter,
	}
}

// Executor applies a Policy to operations. It is safe for concurrent use.
type Executor struct {
	policy      Policy
	isTransient Classifier
	jitter      func(limit time.Duration) time.Duration
}

// Option customises an Executor.
type Option func(*Executor)

// WithClassifier replaces the default timeout-class classifier.
func WithClassifier(c Classifier) Option {
	return func(e *Executor) {
		e.isTransient = c
	}
}

// WithJitter replaces the random jitter source. Used by tests to make delays deterministic.
func WithJitter(f func(limit time.Duration) time.Duration) Option {
	return func(e *Executor) {
		e.jitter = f
	}
}

// NewExecutor validates the policy and builds an Executor.
//
// Example:
//
//	exec, _ := retry.NewExecutor(retry.DefaultPolicy(), retry.WithClassifier(postgres.IsTransient))
//	id, err := retry.Do(ctx, exec, "persist_order", func(ctx context.Context) (int64, error) {
//	    return saveOrder(ctx)
//	})
func NewExecutor(policy Policy, opts ...Option) (*Executor, error) {
	if policy.Attempts < 1 {
		return nil, errs.NewValueIsOutOfRangeError("attempts", policy.Attempts, 1, "unbounded")
	}
	if policy.BaseDelay < 0 || policy.MaxJitter < 0 {
		return nil, errs.NewValueIsInvalidError("delay")
	}

	e := &Executor{
		policy:      policy,
		isTransient: IsTimeout,
		jitter:      randomJitter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Run executes fn under the executor's policy.
func (e *Executor) Run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	_, err := Do(ctx, e, operation, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Do executes fn until it succeeds, fails with a non-transient error, or the
// attempt ceiling is reached. The context is checked before every attempt and
// while waiting between attempts.
func Do[T any](ctx context.Context, e *Executor, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	delay := e.policy.BaseDelay

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			metrics.RetryAttempts.WithLabelValues(operation, "success").Inc()
			return result, nil
		}

		if !e.isTransient(err) {
			metrics.RetryAttempts.WithLabelValues(operation, "fatal").Inc()
			return zero, err
		}
		metrics.RetryAttempts.WithLabelValues(operation, "transient").Inc()

		if attempt >= e.policy.Attempts {
			return zero, fmt.Errorf("%s: giving up after %d attempts: %w", operation, attempt, err)
		}

		timer := time.NewTimer(delay + e.jitter(e.policy.MaxJitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

// MarkTransient wraps err so the default classifier retries it.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// IsTimeout is the default classifier: network timeouts, deadline errors raised by
// I/O below the caller, and errors wrapped with MarkTransient.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(limit))) //nolint:gosec // jitter does not need crypto randomness
}
