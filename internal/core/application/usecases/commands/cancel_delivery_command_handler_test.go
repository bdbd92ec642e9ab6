package commands_test

import (
	"errors"
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCancelHandler(t *testing.T, repo *MockOrderRepository, day, night *MockProvider) *commands.CancelDeliveryCommandHandler {
	t.Helper()
	return commands.NewCancelDeliveryCommandHandler(
		&MockOrderUoWFactory{uow: &MockOrderUoW{orders: repo}},
		newTestDispatcher(t, day, night),
	)
}

func TestNewCancelDeliveryCommand_Validation(t *testing.T) {
	_, err := commands.NewCancelDeliveryCommand(0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestCancelDeliveryCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	repo := new(MockOrderRepository)
	night := &MockProvider{name: "orkestro"}
	o := deliveryOrder(t, 42)
	require.NoError(t, o.AttachDelivery("orkestro", "ork_1", fixedNow))

	mock.InOrder(
		repo.On("Get", mock.Anything, int64(42)).Return(o, nil).Once(),
		night.On("Cancel", mock.Anything, "ork_1").Return(nil).Once(),
		repo.On("Update", mock.Anything, o).Return(nil).Once(),
	)

	cmd, err := commands.NewCancelDeliveryCommand(42)
	require.NoError(t, err)
	res, err := newCancelHandler(t, repo, &MockProvider{name: "gophr"}, night).Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, "orkestro", res.Provider)
	assert.Equal(t, "ork_1", res.DeliveryID)
	assert.Equal(t, order.DispatchCancelled, o.DispatchStatus())
	repo.AssertExpectations(t)
	night.AssertExpectations(t)
}

func TestCancelDeliveryCommandHandler_Handle_NoDelivery(t *testing.T) {
	ctx := t.Context()
	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, int64(42)).Return(deliveryOrder(t, 42), nil).Once()

	cmd, _ := commands.NewCancelDeliveryCommand(42)
	_, err := newCancelHandler(t, repo, &MockProvider{name: "gophr"}, &MockProvider{name: "orkestro"}).Handle(ctx, cmd)
	require.ErrorIs(t, err, order.ErrNoDeliveryAttached)
}

func TestCancelDeliveryCommandHandler_Handle_ProviderFailure(t *testing.T) {
	ctx := t.Context()
	repo := new(MockOrderRepository)
	day := &MockProvider{name: "gophr"}
	o := deliveryOrder(t, 42)
	require.NoError(t, o.AttachDelivery("gophr", "job_1", fixedNow))

	repo.On("Get", mock.Anything, int64(42)).Return(o, nil).Once()
	day.On("Cancel", mock.Anything, "job_1").Return(errors.New("too late")).Once()

	cmd, _ := commands.NewCancelDeliveryCommand(42)
	_, err := newCancelHandler(t, repo, day, &MockProvider{name: "orkestro"}).Handle(ctx, cmd)
	require.ErrorIs(t, err, commands.ErrCancelFailed)
	assert.Equal(t, order.DispatchDispatched, o.DispatchStatus())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCancelDeliveryCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	repo := new(MockOrderRepository)
	repo.On("Get", mock.Anything, int64(9)).Return(nil, errs.NewObjectNotFoundError("order", int64(9))).Once()

	cmd, _ := commands.NewCancelDeliveryCommand(9)
	_, err := newCancelHandler(t, repo, &MockProvider{name: "gophr"}, &MockProvider{name: "orkestro"}).Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}
