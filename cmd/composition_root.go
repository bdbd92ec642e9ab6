package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/analytics"
	"orderflow/internal/adapters/out/couriers"
	"orderflow/internal/adapters/out/idempotency"
	"orderflow/internal/adapters/out/legacy"
	"orderflow/internal/adapters/out/notify"
	"orderflow/internal/adapters/out/payments"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/statusrepo"
	"orderflow/internal/adapters/out/trackingfs"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/delivery"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/retry"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// CompositionRoot owns the adapters shared by the handlers. Integrations without
// credentials are replaced by no-op adapters and logged as disabled.
type CompositionRoot struct {
	cfg        Config
	logger     *slog.Logger
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	httpClient *http.Client

	email      ports.EmailSender
	chat       ports.ChatSender
	alerter    ports.Alerter
	dispatcher *commands.DeliveryDispatcher
	legacy     ports.LegacyMirror
	tracking   *trackingfs.FileStore
	submit     *commands.SubmitOrderCommandHandler

	awsConfig   *aws.Config
	mongoClient *mongo.Client
}

func NewCompositionRoot(ctx context.Context, cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &CompositionRoot{
		cfg:        cfg,
		logger:     logger,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		httpClient: &http.Client{},
	}

	var err error
	if c.email, err = c.newEmail(); err != nil {
		return nil, err
	}
	if c.chat, err = c.newChat(); err != nil {
		return nil, err
	}
	c.alerter = notify.NewOpsAlerter(c.email, cfg.AlertEmailTo, c.chat, logger)

	if c.dispatcher, err = c.newDispatcher(); err != nil {
		return nil, err
	}
	if c.legacy, err = c.newLegacyMirror(ctx); err != nil {
		return nil, err
	}
	if c.tracking, err = trackingfs.NewFileStore(cfg.TrackingBaseDir); err != nil {
		return nil, fmt.Errorf("tracking store: %w", err)
	}

	return c, nil
}

// Close waits for background analytics reports, then releases connections
// opened by the root. Both are bounded by ctx.
func (c *CompositionRoot) Close(ctx context.Context) error {
	var waitErr error
	if c.submit != nil {
		if err := c.submit.Wait(ctx); err != nil {
			waitErr = fmt.Errorf("analytics reports still running: %w", err)
		}
	}
	if c.mongoClient != nil {
		return errors.Join(waitErr, c.mongoClient.Disconnect(ctx))
	}
	return waitErr
}

func (c *CompositionRoot) CreateSubmitOrderCommandHandler(ctx context.Context) (*commands.SubmitOrderCommandHandler, error) {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})

	if c.cfg.StripeSecretKey == "" {
		return nil, ErrStripeNotConfigured
	}
	stripeGateway, err := payments.NewStripeGateway(c.cfg.StripeSecretKey)
	if err != nil {
		return nil, err
	}

	executor, err := retry.NewExecutor(retry.Policy{
		Attempts:  c.cfg.RetryAttempts,
		BaseDelay: c.cfg.RetryBaseDelay,
		MaxJitter: c.cfg.RetryMaxJitter,
	}, retry.WithClassifier(postgres.IsTransient))
	if err != nil {
		return nil, err
	}

	split, err := services.NewTransferSplit(c.cfg.StripeSplitPercent)
	if err != nil {
		return nil, err
	}

	invoices, err := c.newInvoices()
	if err != nil {
		return nil, err
	}

	ledger, err := c.newLedger(ctx)
	if err != nil {
		return nil, err
	}

	sink, err := c.newAnalytics(ctx)
	if err != nil {
		return nil, err
	}

	if c.cfg.StripeShopAccount == "" {
		c.disabled("merchant transfer", "STRIPE_SHOP_ACCOUNT")
	}

	return commands.NewSubmitOrderCommandHandler(commands.SubmitOrderDependencies{
		UoWFactory:      f,
		Payments:        stripeGateway,
		Dispatcher:      c.dispatcher,
		Ledger:          ledger,
		Chat:            c.chat,
		Invoices:        invoices,
		Legacy:          c.legacy,
		Analytics:       sink,
		Alerter:         c.alerter,
		Retry:           executor,
		Split:           split,
		MerchantAccount: c.cfg.StripeShopAccount,
		Currency:        c.cfg.StripeCurrency,
		Logger:          c.logger,
	})
}

func (c *CompositionRoot) CreateIngestDeliveryStatusCommandHandler(ctx context.Context) (*commands.IngestDeliveryStatusCommandHandler, error) {
	push, err := c.newPush(ctx)
	if err != nil {
		return nil, err
	}
	return commands.NewIngestDeliveryStatusCommandHandler(
		statusrepo.NewGormStatusRepository(c.gormDB),
		c.tracking,
		push,
		c.cfg.FallbackPushToken,
		c.logger,
	)
}

func (c *CompositionRoot) CreateCancelDeliveryCommandHandler() *commands.CancelDeliveryCommandHandler {
	return commands.NewCancelDeliveryCommandHandler(c.orderUoWFactory(), c.dispatcher)
}

func (c *CompositionRoot) CreateRetryPendingDispatchCommandHandler() *commands.RetryPendingDispatchCommandHandler {
	return commands.NewRetryPendingDispatchCommandHandler(c.orderUoWFactory(), c.dispatcher, c.legacy, c.alerter, c.logger)
}

func (c *CompositionRoot) CreateGetOrderDeliveryQueryHandler() queries.GetOrderDeliveryQueryHandler {
	return queries.NewGetOrderDeliveryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTrackingDocumentQueryHandler() queries.GetTrackingDocumentQueryHandler {
	return queries.NewGetTrackingDocumentQueryHandler(c.tracking)
}

// CreateServer builds the HTTP server with every handler wired.
func (c *CompositionRoot) CreateServer(ctx context.Context) (*httpin.Server, error) {
	submit, err := c.CreateSubmitOrderCommandHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit order handler: %w", err)
	}
	c.submit = submit
	ingest, err := c.CreateIngestDeliveryStatusCommandHandler(ctx)
	if err != nil {
		return nil, fmt.Errorf("delivery status handler: %w", err)
	}

	return httpin.NewServer(
		submit,
		ingest,
		c.CreateCancelDeliveryCommandHandler(),
		c.CreateGetOrderDeliveryQueryHandler(),
		c.CreateGetTrackingDocumentQueryHandler(),
		c.logger,
	), nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager().
		Add("pending dispatch", jobs.NewPendingDispatchJob(
			c.CreateRetryPendingDispatchCommandHandler(),
			jobs.PendingDispatchJobConfig{
				Schedule:    c.cfg.PendingDispatchSchedule,
				MaxAttempts: c.cfg.PendingDispatchMaxAttempts,
				BatchSize:   c.cfg.PendingDispatchBatchSize,
				IdleFor:     c.cfg.PendingDispatchIdle,
			},
			c.logger,
		))
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) newDispatcher() (*commands.DeliveryDispatcher, error) {
	rules, err := delivery.NewScheduleRules(
		c.cfg.RoutingTimezone,
		c.cfg.RoutingLeadTime,
		c.cfg.RoutingPickupOffset,
		c.cfg.RoutingUrgencyThreshold,
	)
	if err != nil {
		return nil, err
	}

	policy, err := services.NewRoutingPolicy(c.cfg.RoutingDayStartHour, c.cfg.RoutingDayEndHour, rules.Location)
	if err != nil {
		return nil, err
	}

	point, err := kernel.NewGeoPoint(c.cfg.ShopLat, c.cfg.ShopLng)
	if err != nil {
		return nil, fmt.Errorf("shop location: %w", err)
	}
	shop := delivery.Stop{
		Name:     c.cfg.ShopName,
		Phone:    c.cfg.ShopPhone,
		Email:    c.cfg.ShopEmail,
		Address:  c.cfg.ShopAddress,
		Postcode: c.cfg.ShopPostcode,
		Location: point,
	}

	var daytime ports.DeliveryProvider = couriers.NewDisabled(couriers.GophrName)
	if c.cfg.GophrAPIKey != "" {
		if daytime, err = couriers.NewGophr(couriers.GophrConfig{
			BaseURL: c.cfg.GophrBaseURL,
			APIKey:  c.cfg.GophrAPIKey,
			City:    c.cfg.GophrCity,
			Timeout: c.cfg.CourierTimeout,
		}, c.httpClient); err != nil {
			return nil, err
		}
	} else {
		c.disabled("gophr courier", "GOPHR_API_KEY")
	}

	var nighttime ports.DeliveryProvider = couriers.NewDisabled(couriers.OrkestroName)
	if c.cfg.OrkestroAPIKey != "" {
		if nighttime, err = couriers.NewOrkestro(couriers.OrkestroConfig{
			BaseURL:     c.cfg.OrkestroBaseURL,
			APIKey:      c.cfg.OrkestroAPIKey,
			City:        c.cfg.OrkestroCity,
			CallbackURL: c.cfg.OrkestroCallbackURL,
			Timeout:     c.cfg.CourierTimeout,
		}, c.httpClient); err != nil {
			return nil, err
		}
	} else {
		c.disabled("orkestro courier", "ORKESTRO_API_KEY")
	}

	return commands.NewDeliveryDispatcher(policy, rules, shop, daytime, nighttime)
}

func (c *CompositionRoot) newEmail() (ports.EmailSender, error) {
	if c.cfg.SMTPHost == "" {
		c.disabled("email", "SMTP_HOST")
		return notify.NoopEmail{}, nil
	}
	return notify.NewSMTPMailer(notify.SMTPConfig{
		Host:      c.cfg.SMTPHost,
		Port:      c.cfg.SMTPPort,
		Username:  c.cfg.SMTPUsername,
		Password:  c.cfg.SMTPPassword,
		FromName:  c.cfg.SMTPFromName,
		FromEmail: c.cfg.SMTPFromEmail,
	})
}

func (c *CompositionRoot) newInvoices() (ports.InvoiceMailer, error) {
	if _, ok := c.email.(notify.NoopEmail); ok {
		return notify.NoopInvoices{}, nil
	}
	return notify.NewInvoiceMailer(c.email, c.cfg.ShopName, c.cfg.ShopLogoURL)
}

func (c *CompositionRoot) newChat() (ports.ChatSender, error) {
	if c.cfg.UltraMsgInstance == "" || c.cfg.UltraMsgToken == "" || c.cfg.UltraMsgTo == "" {
		c.disabled("operator chat", "ULTRAMSG_INSTANCE")
		return notify.NoopChat{}, nil
	}
	return notify.NewUltraMsgChat(notify.UltraMsgConfig{
		BaseURL:  c.cfg.UltraMsgBaseURL,
		Instance: c.cfg.UltraMsgInstance,
		Token:    c.cfg.UltraMsgToken,
		To:       c.cfg.UltraMsgTo,
		Timeout:  10 * time.Second,
	}, c.httpClient)
}

func (c *CompositionRoot) newPush(ctx context.Context) (ports.PushSender, error) {
	if c.cfg.FirebaseCredentialsFile == "" {
		c.disabled("push notifications", "FIREBASE_CREDENTIALS_FILE")
		return notify.NoopPush{}, nil
	}
	return notify.NewFCMPush(ctx, c.cfg.FirebaseCredentialsFile)
}

func (c *CompositionRoot) newLegacyMirror(ctx context.Context) (ports.LegacyMirror, error) {
	if c.cfg.LegacyMongoURI == "" {
		c.disabled("legacy mirror", "LEGACY_MONGO_URI")
		return legacy.NoopMirror{}, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.cfg.LegacyMongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect legacy mongo: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping legacy mongo: %w", err)
	}
	c.mongoClient = client

	return legacy.NewMongoMirror(client.Database(c.cfg.LegacyMongoDB), c.cfg.LegacyShopID), nil
}

func (c *CompositionRoot) newLedger(ctx context.Context) (ports.SubmissionLedger, error) {
	if c.cfg.IdempotencyTable == "" {
		c.disabled("idempotency ledger", "IDEMPOTENCY_TABLE")
		return idempotency.NoopLedger{}, nil
	}
	awsCfg, err := c.loadAWS(ctx)
	if err != nil {
		return nil, err
	}
	return idempotency.NewDynamoLedger(dynamodb.NewFromConfig(awsCfg), c.cfg.IdempotencyTable, c.cfg.IdempotencyTTL)
}

func (c *CompositionRoot) newAnalytics(ctx context.Context) (ports.AnalyticsSink, error) {
	var sinks analytics.Fanout

	if c.cfg.GA4MeasurementID != "" && c.cfg.GA4APISecret != "" {
		ga4, err := analytics.NewGA4(analytics.GA4Config{
			MeasurementID: c.cfg.GA4MeasurementID,
			APISecret:     c.cfg.GA4APISecret,
		}, c.httpClient)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, ga4)
	} else {
		c.disabled("ga4 analytics", "GA4_MEASUREMENT_ID")
	}

	if c.cfg.OrderEventsQueueURL != "" {
		awsCfg, err := c.loadAWS(ctx)
		if err != nil {
			return nil, err
		}
		publisher, err := analytics.NewSQSPublisher(sqs.NewFromConfig(awsCfg), c.cfg.OrderEventsQueueURL)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, publisher)
	} else {
		c.disabled("order events queue", "ORDER_EVENTS_QUEUE_URL")
	}

	if len(sinks) == 0 {
		return analytics.Noop{}, nil
	}
	return sinks, nil
}

func (c *CompositionRoot) loadAWS(ctx context.Context) (aws.Config, error) {
	if c.awsConfig != nil {
		return *c.awsConfig, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(c.cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	c.awsConfig = &cfg
	return cfg, nil
}

func (c *CompositionRoot) disabled(integration, variable string) {
	c.logger.Warn("integration disabled", "integration", integration, "missing", variable)
}

// ErrStripeNotConfigured is returned when the payment processor key is absent.
var ErrStripeNotConfigured = errors.New("STRIPE_SECRET_KEY is required")

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
