package customerrepo_test

import (
	"context"
	"testing"
	"time"

	"orderflow/internal/adapters/out/postgres/customerrepo"
	"orderflow/internal/core/domain/model/customer"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CustomerRepositoryIntegrationTestSuite verifies customer upserts against PostgreSQL.
type CustomerRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *customerrepo.GormCustomerRepository
}

func (suite *CustomerRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&customerrepo.CustomerDTO{}))
}

func (suite *CustomerRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE customers RESTART IDENTITY").Error)
	suite.repository = customerrepo.NewGormCustomerRepository(suite.db)
}

func (suite *CustomerRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CustomerRepositoryIntegrationTestSuite) TestUpsert_NewCustomerGetsID() {
	c := suite.newCustomer("sam@example.com", "Sam", "07700900123")

	suite.Require().NoError(suite.repository.Upsert(suite.T().Context(), c))
	suite.Equal(int64(1), c.ID())
	suite.assertCustomerCount(1)
}

func (suite *CustomerRepositoryIntegrationTestSuite) TestUpsert_SameUUIDMergesIntoOneRow() {
	ctx := suite.T().Context()

	first := suite.newCustomer("sam@example.com", "Sam", "07700900123")
	suite.Require().NoError(suite.repository.Upsert(ctx, first))

	again := suite.newCustomer("sam@example.com", "Samuel", "")
	suite.Require().NoError(suite.repository.Upsert(ctx, again))

	suite.Equal(first.ID(), again.ID())
	suite.assertCustomerCount(1)

	var stored customerrepo.CustomerDTO
	suite.Require().NoError(suite.db.First(&stored, "id = ?", first.ID()).Error)
	suite.Equal("Samuel", stored.Name)
	suite.Equal("07700900123", stored.Phone, "blank phone keeps the stored value")
	suite.Equal(first.UUID().Bytes(), stored.UUID)
}

func (suite *CustomerRepositoryIntegrationTestSuite) TestUpsert_DifferentCustomers() {
	ctx := suite.T().Context()

	a := suite.newCustomer("a@example.com", "A", "")
	b := suite.newCustomer("b@example.com", "B", "")
	suite.Require().NoError(suite.repository.Upsert(ctx, a))
	suite.Require().NoError(suite.repository.Upsert(ctx, b))

	suite.NotEqual(a.ID(), b.ID())
	suite.assertCustomerCount(2)
}

func (suite *CustomerRepositoryIntegrationTestSuite) TestUpsert_ZeroValueIsRejected() {
	err := suite.repository.Upsert(suite.T().Context(), &customer.Customer{})
	suite.Require().ErrorIs(err, customer.ErrCustomerIsNotConstructed)
	suite.assertCustomerCount(0)
}

func (suite *CustomerRepositoryIntegrationTestSuite) newCustomer(email, name, phone string) *customer.Customer {
	c, err := customer.NewCustomer(kernel.UUIDFromName(email), email, name, phone)
	suite.Require().NoError(err)
	return c
}

func (suite *CustomerRepositoryIntegrationTestSuite) assertCustomerCount(expected int) {
	var count int64
	suite.Require().NoError(suite.db.Model(&customerrepo.CustomerDTO{}).Count(&count).Error)
	suite.Equal(int64(expected), count)
}

func TestCustomerRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerRepositoryIntegrationTestSuite))
}
