package retry_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func noJitter(time.Duration) time.Duration { return 0 }

func fastPolicy() retry.Policy {
	return retry.Policy{Attempts: 3, BaseDelay: time.Millisecond, MaxJitter: 0}
}

func TestDo_TransientThenSuccess(t *testing.T) {
	exec, err := retry.NewExecutor(fastPolicy(), retry.WithJitter(noJitter))
	require.NoError(t, err)

	calls := 0
	result, err := retry.Do(t.Context(), exec, "test_op", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, timeoutError{}
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDo_NonTransientFailsImmediately(t *testing.T) {
	exec, err := retry.NewExecutor(fastPolicy(), retry.WithJitter(noJitter))
	require.NoError(t, err)

	fatal := errors.New("constraint violation")
	calls := 0
	_, err = retry.Do(t.Context(), exec, "test_op", func(context.Context) (int, error) {
		calls++
		return 0, fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttemptsAndReturnsLastError(t *testing.T) {
	exec, err := retry.NewExecutor(fastPolicy(), retry.WithJitter(noJitter))
	require.NoError(t, err)

	calls := 0
	_, err = retry.Do(t.Context(), exec, "test_op", func(context.Context) (string, error) {
		calls++
		return "", retry.MarkTransient(errors.New("connection reset"))
	})

	require.Error(t, err)
	require.ErrorIs(t, err, retry.ErrTransient)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 3, calls)
}

func TestDo_StopsWhenContextCancelledBeforeAttempt(t *testing.T) {
	exec, err := retry.NewExecutor(fastPolicy())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	calls := 0
	err = exec.Run(ctx, "test_op", func(context.Context) error {
		calls++
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDo_StopsWhenContextCancelledDuringBackoff(t *testing.T) {
	exec, err := retry.NewExecutor(
		retry.Policy{Attempts: 5, BaseDelay: time.Hour},
		retry.WithJitter(noJitter),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	start := time.Now()
	err = exec.Run(ctx, "test_op", func(context.Context) error {
		calls++
		return timeoutError{}
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_CustomClassifier(t *testing.T) {
	busy := errors.New("busy")
	exec, err := retry.NewExecutor(fastPolicy(),
		retry.WithJitter(noJitter),
		retry.WithClassifier(func(err error) bool { return errors.Is(err, busy) }),
	)
	require.NoError(t, err)

	calls := 0
	err = exec.Run(t.Context(), "test_op", func(context.Context) error {
		calls++
		if calls == 1 {
			return busy
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestNewExecutor_RejectsZeroAttempts(t *testing.T) {
	_, err := retry.NewExecutor(retry.Policy{Attempts: 0})
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, retry.IsTimeout(nil))
	assert.False(t, retry.IsTimeout(errors.New("boom")))
	assert.True(t, retry.IsTimeout(timeoutError{}))
	assert.True(t, retry.IsTimeout(retry.MarkTransient(errors.New("boom"))))
	assert.Nil(t, retry.MarkTransient(nil))
}
