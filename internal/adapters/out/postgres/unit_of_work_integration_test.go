package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/customerrepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite verifies the GORM unit of work against a real
// PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

// SetupSuite initializes PostgreSQL container and database connection for all tests.
func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &customerrepo.CustomerDTO{})
	suite.Require().NoError(err)

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

// SetupTest truncates all tables to prevent test interference.
func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders, customers RESTART IDENTITY").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.CustomerRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

// TestUnitOfWork_CustomerAndOrderCommitTogether mirrors the order persistence step.
func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CustomerAndOrderCommitTogether() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()

	c := createTestCustomer(suite)
	suite.Require().NoError(uow.CustomerRepository().Upsert(ctx, c))

	o := createTestOrder(suite, c.ID())
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))

	// Not visible outside the transaction yet.
	suite.assertCount("orders", 0)

	suite.Require().NoError(uow.Commit(ctx))
	suite.assertCount("customers", 1)
	suite.assertCount("orders", 1)

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(c.ID(), stored.CustomerID())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionRollback() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))

	c := createTestCustomer(suite)
	suite.Require().NoError(uow.CustomerRepository().Upsert(ctx, c))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, createTestOrder(suite, c.ID())))

	suite.Require().NoError(uow.Rollback(ctx))
	suite.assertCount("customers", 0)
	suite.assertCount("orders", 0)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_WithoutTransaction() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	o := createTestOrder(suite, 1)
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.assertCount("orders", 1)
}

func (suite *UnitOfWorkIntegrationTestSuite) assertCount(table string, expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Table(table).Count(&count).Error)
	suite.Equal(expected, count, table)
}

func createTestCustomer(suite *UnitOfWorkIntegrationTestSuite) *customer.Customer {
	c, err := customer.NewCustomer(kernel.UUIDFromName("sam@example.com"), "sam@example.com", "Sam", "")
	suite.Require().NoError(err)
	return c
}

func createTestOrder(suite *UnitOfWorkIntegrationTestSuite, customerID int64) *order.Order {
	o, err := order.NewOrder(customerID, decimal.RequireFromString("25.00"), order.Metadata{
		Basket: []order.BasketLine{{ProductID: "bagel", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}},
	}, time.Now())
	suite.Require().NoError(err)
	return o
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
