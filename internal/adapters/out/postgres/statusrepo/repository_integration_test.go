package statusrepo_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/statusrepo"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// StatusRepositoryIntegrationTestSuite verifies the status compare-and-swap
// predicates and push target lookup against PostgreSQL.
type StatusRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	orders     *orderrepo.GormOrderRepository
	repository *statusrepo.GormStatusRepository
}

func (suite *StatusRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *StatusRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders RESTART IDENTITY").Error)
	suite.orders = orderrepo.NewGormOrderRepository(suite.db)
	suite.repository = statusrepo.NewGormStatusRepository(suite.db)
}

func (suite *StatusRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *StatusRepositoryIntegrationTestSuite) TestUpdateStatus_ByOrderIDOnlyOnChange() {
	ctx := suite.T().Context()
	o := suite.addOrder("", "device-1")
	ref := ports.OrderRef{OrderID: o.ID()}

	rows, err := suite.repository.UpdateStatus(ctx, ref, order.StatusQueued, false)
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	rows, err = suite.repository.UpdateStatus(ctx, ref, order.StatusQueued, false)
	suite.Require().NoError(err)
	suite.Equal(int64(0), rows, "same code is not rewritten")

	suite.Equal(order.StatusQueued, suite.storedStatus(o.ID()))
}

func (suite *StatusRepositoryIntegrationTestSuite) TestUpdateStatus_NeverRegressesWithoutCorrection() {
	ctx := suite.T().Context()
	o := suite.addOrder("", "")
	ref := ports.OrderRef{OrderID: o.ID()}

	_, err := suite.repository.UpdateStatus(ctx, ref, order.StatusDelivered, false)
	suite.Require().NoError(err)

	rows, err := suite.repository.UpdateStatus(ctx, ref, order.StatusEnRouteToPickup, false)
	suite.Require().NoError(err)
	suite.Equal(int64(0), rows)
	suite.Equal(order.StatusDelivered, suite.storedStatus(o.ID()))

	rows, err = suite.repository.UpdateStatus(ctx, ref, order.StatusEnRouteToPickup, true)
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)
	suite.Equal(order.StatusEnRouteToPickup, suite.storedStatus(o.ID()))
}

func (suite *StatusRepositoryIntegrationTestSuite) TestUpdateStatus_ByDeliveryIDColumnAndMetadata() {
	ctx := suite.T().Context()
	withColumn := suite.addOrder("job_col", "")

	// A row whose column was never filled still matches through the metadata document.
	metadataOnly := suite.addOrder("job_md", "")
	suite.Require().NoError(suite.db.Exec("UPDATE orders SET delivery_id = NULL WHERE id = ?", metadataOnly.ID()).Error)

	rows, err := suite.repository.UpdateStatus(ctx, ports.OrderRef{DeliveryID: "job_col"}, order.StatusAtPickup, false)
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	rows, err = suite.repository.UpdateStatus(ctx, ports.OrderRef{DeliveryID: "job_md"}, order.StatusInTransit, false)
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	suite.Equal(order.StatusAtPickup, suite.storedStatus(withColumn.ID()))
	suite.Equal(order.StatusInTransit, suite.storedStatus(metadataOnly.ID()))
}

func (suite *StatusRepositoryIntegrationTestSuite) TestUpdateStatus_VersionZeroDeliveryID() {
	ctx := suite.T().Context()
	suite.Require().NoError(suite.db.Exec(
		`INSERT INTO orders (customer_id, total, subtotal, delivery_fee, metadata, created_at)
		 VALUES (1, 10, 10, 0, '{"delivery": {"provider": "orkestro", "id": "ork_9"}, "push": {"fcmToken": "old-device"}}'::jsonb, now())`,
	).Error)

	rows, err := suite.repository.UpdateStatus(ctx, ports.OrderRef{DeliveryID: "ork_9"}, order.StatusDelivered, false)
	suite.Require().NoError(err)
	suite.Equal(int64(1), rows)

	target, err := suite.repository.ResolvePushTarget(ctx, ports.OrderRef{DeliveryID: "ork_9"})
	suite.Require().NoError(err)
	suite.Equal(int64(1), target.OrderID)
	suite.Equal("old-device", target.Token)
}

func (suite *StatusRepositoryIntegrationTestSuite) TestUpdateStatus_UnknownReferenceAffectsNothing() {
	rows, err := suite.repository.UpdateStatus(suite.T().Context(), ports.OrderRef{DeliveryID: "nope"}, order.StatusQueued, false)
	suite.Require().NoError(err)
	suite.Equal(int64(0), rows)
}

func (suite *StatusRepositoryIntegrationTestSuite) TestUpdateStatus_InvalidInput() {
	ctx := suite.T().Context()

	_, err := suite.repository.UpdateStatus(ctx, ports.OrderRef{}, order.StatusQueued, false)
	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)

	_, err = suite.repository.UpdateStatus(ctx, ports.OrderRef{OrderID: 1}, order.StatusUnrecognized, false)
	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func (suite *StatusRepositoryIntegrationTestSuite) TestResolvePushTarget() {
	ctx := suite.T().Context()
	o := suite.addOrder("job_1", "device-1")
	silent := suite.addOrder("job_2", "")
	_, err := suite.repository.UpdateStatus(ctx, ports.OrderRef{DeliveryID: "job_1"}, order.StatusDelivered, false)
	suite.Require().NoError(err)

	target, err := suite.repository.ResolvePushTarget(ctx, ports.OrderRef{DeliveryID: "job_1"})
	suite.Require().NoError(err)
	suite.Equal(ports.PushTarget{OrderID: o.ID(), Token: "device-1", Status: order.StatusDelivered}, target)

	target, err = suite.repository.ResolvePushTarget(ctx, ports.OrderRef{OrderID: silent.ID()})
	suite.Require().NoError(err)
	suite.Equal(ports.PushTarget{OrderID: silent.ID(), Status: suite.storedStatus(silent.ID())}, target)

	_, err = suite.repository.ResolvePushTarget(ctx, ports.OrderRef{OrderID: 999})
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *StatusRepositoryIntegrationTestSuite) addOrder(deliveryID, pushToken string) *order.Order {
	ctx := suite.T().Context()

	o, err := order.NewOrder(1, decimal.RequireFromString("12.00"), order.Metadata{
		Basket:        []order.BasketLine{{ProductID: "bagel", Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")}},
		Delivery:      order.DeliveryDetails{IsDelivery: true, Address: "1 High St"},
		Notifications: order.Notifications{PushToken: pushToken},
	}, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.orders.Add(ctx, o))

	if deliveryID != "" {
		suite.Require().NoError(o.AttachDelivery("gophr", deliveryID, time.Now()))
		suite.Require().NoError(suite.orders.Update(ctx, o))
	}
	return o
}

func (suite *StatusRepositoryIntegrationTestSuite) storedStatus(id int64) order.StatusCode {
	var status int
	suite.Require().NoError(suite.db.Raw("SELECT status FROM orders WHERE id = ?", id).Scan(&status).Error)
	return order.StatusCode(status)
}

func TestStatusRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(StatusRepositoryIntegrationTestSuite))
}
