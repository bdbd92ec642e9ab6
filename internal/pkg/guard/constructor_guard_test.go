package guard_test

import (
	"errors"
	"sync"
	"testing"

	"orderflow/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCommandIsNotConstructed = errors.New("cancel command must be created via its constructor")

type cancelCommand struct {
	orderID int64
	guard   guard.ConstructorGuard
}

func newCancelCommand(orderID int64) (cancelCommand, error) {
	if orderID <= 0 {
		return cancelCommand{}, errors.New("order id must be positive")
	}
	return cancelCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c cancelCommand) Validate() error {
	return c.guard.Validate(errCommandIsNotConstructed)
}

func TestConstructorGuard_Validate(t *testing.T) {
	tests := []struct {
		name    string
		guard   guard.ConstructorGuard
		custom  error
		wantErr error
	}{
		{name: "constructed", guard: guard.NewConstructorGuard(), custom: errCommandIsNotConstructed},
		{name: "constructed without custom error", guard: guard.NewConstructorGuard()},
		{name: "zero value returns custom error", custom: errCommandIsNotConstructed, wantErr: errCommandIsNotConstructed},
		{name: "zero value falls back to default", wantErr: guard.ErrDefaultConstructorGuard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.guard.Validate(tt.custom)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConstructorGuard_EmbeddedInCommand(t *testing.T) {
	cmd, err := newCancelCommand(17)
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, int64(17), cmd.orderID)

	var zero cancelCommand
	require.ErrorIs(t, zero.Validate(), errCommandIsNotConstructed)

	failed, err := newCancelCommand(0)
	require.Error(t, err)
	require.ErrorIs(t, failed.Validate(), errCommandIsNotConstructed)
}

func TestConstructorGuard_CopiesKeepState(t *testing.T) {
	original := guard.NewConstructorGuard()
	copied := original

	require.NoError(t, copied.Validate(nil))
	require.NoError(t, original.Validate(nil))
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	constructed := guard.NewConstructorGuard()
	var zero guard.ConstructorGuard

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, constructed.Validate(nil))
			assert.ErrorIs(t, zero.Validate(nil), guard.ErrDefaultConstructorGuard)
		}()
	}
	wg.Wait()
}
