package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewRetryPendingDispatchCommand_Validation(t *testing.T) {
	_, err := commands.NewRetryPendingDispatchCommand(0, 10, time.Minute)
	require.Error(t, err)
	_, err = commands.NewRetryPendingDispatchCommand(3, 0, time.Minute)
	require.Error(t, err)
	_, err = commands.NewRetryPendingDispatchCommand(3, 10, -time.Second)
	require.Error(t, err)

	cmd, err := commands.NewRetryPendingDispatchCommand(3, 10, 5*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, cmd.MaxAttempts())
	assert.Equal(t, 10, cmd.BatchSize())
	assert.Equal(t, 5*time.Minute, cmd.IdleFor())
}

func expectedClaim(maxAttempts, limit int, idleFor time.Duration) ports.DispatchClaim {
	return ports.DispatchClaim{
		MaxAttempts: maxAttempts,
		IdleSince:   fixedNow.Add(-idleFor),
		ClaimedAt:   fixedNow,
		Limit:       limit,
	}
}

func TestRetryPendingDispatchCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	repo := new(MockOrderRepository)
	legacy := new(MockLegacy)
	alerter := new(MockAlerter)
	day := &MockProvider{name: "gophr"}
	d := newTestDispatcher(t, day, &MockProvider{name: "orkestro"})

	ok := claimedOrder(t, 1, 1)
	require.NoError(t, ok.RecordLegacyOrderID(88001))
	failing := claimedOrder(t, 2, 2)

	repo.On("ClaimAwaitingDispatch", mock.Anything, expectedClaim(3, 10, 5*time.Minute)).
		Return([]*order.Order{ok, failing}, nil).Once()
	day.On("Create", mock.Anything, mock.MatchedBy(func(req delivery.JobRequest) bool { return req.Reference == "88001" })).
		Return(delivery.JobResult{Provider: "gophr", DeliveryID: "job_1"}, nil).Once()
	day.On("Create", mock.Anything, mock.MatchedBy(func(req delivery.JobRequest) bool { return req.Reference == "2" })).
		Return(delivery.JobResult{}, errors.New("rejected")).Once()
	repo.On("Update", mock.Anything, ok).Return(nil).Once()
	repo.On("Update", mock.Anything, failing).Return(nil).Once()
	legacy.On("UpdateCourierIDs", mock.Anything, int64(88001), delivery.JobResult{Provider: "gophr", DeliveryID: "job_1"}).
		Return(nil).Once()
	alerter.On("Alert", mock.Anything, mock.MatchedBy(func(a ports.OperatorAlert) bool {
		return a.OrderID == 2 && a.Subject == "Delivery dispatch abandoned"
	})).Once()

	h := commands.NewRetryPendingDispatchCommandHandler(
		&MockOrderUoWFactory{uow: &MockOrderUoW{orders: repo}}, d, legacy, alerter, nil).
		WithClock(func() time.Time { return fixedNow })
	cmd, err := commands.NewRetryPendingDispatchCommand(3, 10, 5*time.Minute)
	require.NoError(t, err)

	res, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, commands.RetryPendingDispatchResult{Scanned: 2, Dispatched: 1, Failed: 1}, res)
	assert.Equal(t, order.DispatchDispatched, ok.DispatchStatus())
	assert.Equal(t, order.DispatchPending, failing.DispatchStatus())
	assert.Equal(t, 3, failing.DispatchAttempts())

	repo.AssertExpectations(t)
	legacy.AssertExpectations(t)
	alerter.AssertExpectations(t)
	day.AssertExpectations(t)
}

func TestRetryPendingDispatchCommandHandler_NothingClaimedBooksNoCourier(t *testing.T) {
	ctx := t.Context()
	repo := new(MockOrderRepository)
	day := &MockProvider{name: "gophr"}
	night := &MockProvider{name: "orkestro"}

	repo.On("ClaimAwaitingDispatch", mock.Anything, expectedClaim(5, 20, 5*time.Minute)).
		Return([]*order.Order{}, nil).Once()

	h := commands.NewRetryPendingDispatchCommandHandler(
		&MockOrderUoWFactory{uow: &MockOrderUoW{orders: repo}}, newTestDispatcher(t, day, night),
		new(MockLegacy), new(MockAlerter), nil).
		WithClock(func() time.Time { return fixedNow })
	cmd, err := commands.NewRetryPendingDispatchCommand(5, 20, 5*time.Minute)
	require.NoError(t, err)

	res, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, commands.RetryPendingDispatchResult{}, res)

	repo.AssertExpectations(t)
	day.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	night.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRetryPendingDispatchCommandHandler_CancelledSweepReleasesClaims(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	repo := new(MockOrderRepository)
	day := &MockProvider{name: "gophr"}
	first := claimedOrder(t, 1, 1)
	second := claimedOrder(t, 2, 1)

	repo.On("ClaimAwaitingDispatch", mock.Anything, expectedClaim(3, 10, time.Minute)).
		Return([]*order.Order{first, second}, nil).Once()
	repo.On("Update", mock.Anything, first).Return(nil).Once()
	repo.On("Update", mock.Anything, second).Return(nil).Once()

	h := commands.NewRetryPendingDispatchCommandHandler(
		&MockOrderUoWFactory{uow: &MockOrderUoW{orders: repo}},
		newTestDispatcher(t, day, &MockProvider{name: "orkestro"}),
		new(MockLegacy), new(MockAlerter), nil).
		WithClock(func() time.Time { return fixedNow })
	cmd, err := commands.NewRetryPendingDispatchCommand(3, 10, time.Minute)
	require.NoError(t, err)

	res, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, commands.RetryPendingDispatchResult{Scanned: 2, Released: 2}, res)
	assert.Equal(t, order.DispatchPending, first.DispatchStatus())
	assert.Equal(t, 1, first.DispatchAttempts())

	repo.AssertExpectations(t)
	day.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRetryPendingDispatchCommandHandler_ClaimError(t *testing.T) {
	ctx := t.Context()
	repo := new(MockOrderRepository)
	repo.On("ClaimAwaitingDispatch", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	h := commands.NewRetryPendingDispatchCommandHandler(
		&MockOrderUoWFactory{uow: &MockOrderUoW{orders: repo}},
		newTestDispatcher(t, &MockProvider{name: "gophr"}, &MockProvider{name: "orkestro"}),
		new(MockLegacy), new(MockAlerter), nil)
	cmd, _ := commands.NewRetryPendingDispatchCommand(3, 10, time.Minute)

	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
}
