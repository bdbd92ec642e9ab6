package commands_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/tracking"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/retry"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ClaimAwaitingDispatch(ctx context.Context, claim ports.DispatchClaim) ([]*order.Order, error) {
	args := m.Called(ctx, claim)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockCustomerRepository struct{ mock.Mock }

func (m *MockCustomerRepository) Upsert(ctx context.Context, c *customer.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

type MockUoW struct {
	mock.Mock
	orders    *MockOrderRepository
	customers *MockCustomerRepository
}

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	return m.orders
}

func (m *MockUoW) CustomerRepository() ports.CustomerRepository {
	return m.customers
}

type MockUoWFactory struct{ uow *MockUoW }

func (f *MockUoWFactory) Create() commands.UoW {
	return f.uow
}

type MockOrderUoW struct {
	mock.Mock
	orders *MockOrderRepository
}

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	return m.orders
}

type MockOrderUoWFactory struct{ uow *MockOrderUoW }

func (f *MockOrderUoWFactory) Create() commands.OrderUoW {
	return f.uow
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) VerifySucceeded(ctx context.Context, id string) (ports.PaymentStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.PaymentStatus), args.Error(1)
}

func (m *MockPaymentGateway) FindCharge(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) Transfer(ctx context.Context, req ports.TransferRequest) (ports.TransferReceipt, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.TransferReceipt), args.Error(1)
}

type MockLedger struct{ mock.Mock }

func (m *MockLedger) Reserve(ctx context.Context, key string) (*ports.LedgerEntry, error) {
	args := m.Called(ctx, key)
	entry, _ := args.Get(0).(*ports.LedgerEntry)
	return entry, args.Error(1)
}

func (m *MockLedger) Complete(ctx context.Context, key string, response []byte) error {
	args := m.Called(ctx, key, response)
	return args.Error(0)
}

func (m *MockLedger) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockChat struct{ mock.Mock }

func (m *MockChat) SendChatMessage(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

type MockInvoices struct{ mock.Mock }

func (m *MockInvoices) SendInvoice(ctx context.Context, invoice ports.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

type MockLegacy struct{ mock.Mock }

func (m *MockLegacy) Mirror(ctx context.Context, snapshot ports.LegacyOrderSnapshot) (int64, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLegacy) UpdateCourierIDs(ctx context.Context, legacyOrderID int64, result delivery.JobResult) error {
	args := m.Called(ctx, legacyOrderID, result)
	return args.Error(0)
}

type MockAnalytics struct{ mock.Mock }

func (m *MockAnalytics) TrackPurchase(ctx context.Context, event ports.PurchaseEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockAlerter struct{ mock.Mock }

func (m *MockAlerter) Alert(ctx context.Context, alert ports.OperatorAlert) {
	m.Called(ctx, alert)
}

type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Create(ctx context.Context, req delivery.JobRequest) (delivery.JobResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(delivery.JobResult), args.Error(1)
}

func (m *MockProvider) Cancel(ctx context.Context, deliveryID string) error {
	args := m.Called(ctx, deliveryID)
	return args.Error(0)
}

type MockStatusRepository struct{ mock.Mock }

func (m *MockStatusRepository) UpdateStatus(
	ctx context.Context,
	ref ports.OrderRef,
	code order.StatusCode,
	correction bool,
) (int64, error) {
	args := m.Called(ctx, ref, code, correction)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStatusRepository) ResolvePushTarget(ctx context.Context, ref ports.OrderRef) (ports.PushTarget, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(ports.PushTarget), args.Error(1)
}

type MockTrackingStore struct{ mock.Mock }

func (m *MockTrackingStore) Load(ctx context.Context, key string) (tracking.Document, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(tracking.Document), args.Error(1)
}

func (m *MockTrackingStore) Save(ctx context.Context, doc tracking.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockTrackingStore) Read(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type MockPush struct{ mock.Mock }

func (m *MockPush) SendPush(ctx context.Context, msg ports.PushMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

// fixedNow is 14:00 in London during summer time: daytime shift.
var fixedNow = time.Date(2026, 6, 1, 13, 0, 0, 0, time.UTC)

func newTestDispatcher(t *testing.T, day, night *MockProvider) *commands.DeliveryDispatcher {
	t.Helper()

	rules, err := delivery.DefaultScheduleRules()
	require.NoError(t, err)
	policy, err := services.NewRoutingPolicy(services.DefaultDayStartHour, services.DefaultDayEndHour, rules.Location)
	require.NoError(t, err)

	shop := delivery.Stop{
		Name:     "Bagel Shop",
		Phone:    "+447700900000",
		Address:  "1 Brick Lane",
		Postcode: "E1 6QL",
	}
	d, err := commands.NewDeliveryDispatcher(policy, rules, shop, day, night)
	require.NoError(t, err)
	return d.WithClock(func() time.Time { return fixedNow })
}

func newTestExecutor(t *testing.T, attempts int) *retry.Executor {
	t.Helper()
	exec, err := retry.NewExecutor(
		retry.Policy{Attempts: attempts},
		retry.WithJitter(func(time.Duration) time.Duration { return 0 }),
	)
	require.NoError(t, err)
	return exec
}

func deliveryOrder(t *testing.T, id int64) *order.Order {
	t.Helper()
	o, err := order.NewOrder(7, decimal.RequireFromString("25.00"), order.Metadata{
		CustomerUUID: "5f1b8c1e-1c3a-4d1c-9a3c-2f0b4f1e9b11",
		Basket: []order.BasketLine{
			{ProductID: "bagel", Name: "Salt beef bagel", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		Delivery: order.DeliveryDetails{
			IsDelivery:     true,
			Address:        "10 Downing St",
			Postcode:       "SW1A 2AA",
			Lat:            51.5034,
			Lng:            -0.1276,
			RecipientName:  "Sam",
			RecipientPhone: "07700 900123",
		},
		Payment: order.PaymentRef{PaymentIntentID: "pi_123"},
	}, fixedNow)
	require.NoError(t, err)
	require.NoError(t, o.AssignID(id))
	return o
}

// claimedOrder is a delivery order as a retry sweep receives it: failed before,
// now held in the claimed state.
func claimedOrder(t *testing.T, id int64, failedAttempts int) *order.Order {
	t.Helper()
	fresh := deliveryOrder(t, id)
	md := fresh.Metadata()
	md.Dispatch = order.DispatchRef{
		Provider:  order.ProviderPending,
		Status:    order.DispatchClaimed,
		Attempts:  failedAttempts,
		LastError: "earlier",
		UpdatedAt: fixedNow,
	}
	o, err := order.RestoreOrder(id, fresh.CustomerID(), fresh.Total(), fresh.Subtotal(), fresh.DeliveryFee(),
		fresh.Status(), md, fresh.CreatedAt())
	require.NoError(t, err)
	return o
}
