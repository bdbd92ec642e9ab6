package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort            string        `env:"HTTP_PORT" envDefault:"8080"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`

	StripeSecretKey    string          `env:"STRIPE_SECRET_KEY"`
	StripeShopAccount  string          `env:"STRIPE_SHOP_ACCOUNT"`
	StripeSplitPercent decimal.Decimal `env:"STRIPE_SPLIT_PERCENT" envDefault:"0.71"`
	StripeCurrency     string          `env:"STRIPE_CURRENCY" envDefault:"gbp"`

	ShopName     string  `env:"SHOP_NAME" envDefault:"Orderflow Kitchen"`
	ShopPhone    string  `env:"SHOP_PHONE"`
	ShopEmail    string  `env:"SHOP_EMAIL"`
	ShopAddress  string  `env:"SHOP_ADDRESS"`
	ShopPostcode string  `env:"SHOP_POSTCODE"`
	ShopLat      float64 `env:"SHOP_LAT"`
	ShopLng      float64 `env:"SHOP_LNG"`
	ShopLogoURL  string  `env:"SHOP_LOGO_URL"`

	RoutingTimezone         string        `env:"ROUTING_TIMEZONE" envDefault:"Europe/London"`
	RoutingDayStartHour     int           `env:"ROUTING_DAY_START_HOUR" envDefault:"7"`
	RoutingDayEndHour       int           `env:"ROUTING_DAY_END_HOUR" envDefault:"18"`
	RoutingLeadTime         time.Duration `env:"ROUTING_LEAD_TIME" envDefault:"40m"`
	RoutingPickupOffset     time.Duration `env:"ROUTING_PICKUP_OFFSET" envDefault:"30m"`
	RoutingUrgencyThreshold time.Duration `env:"ROUTING_URGENCY_THRESHOLD" envDefault:"10m"`

	GophrBaseURL        string        `env:"GOPHR_BASE_URL"`
	GophrAPIKey         string        `env:"GOPHR_API_KEY"`
	GophrCity           string        `env:"GOPHR_CITY"`
	OrkestroBaseURL     string        `env:"ORKESTRO_BASE_URL"`
	OrkestroAPIKey      string        `env:"ORKESTRO_API_KEY"`
	OrkestroCity        string        `env:"ORKESTRO_CITY"`
	OrkestroCallbackURL string        `env:"ORKESTRO_CALLBACK_URL"`
	CourierTimeout      time.Duration `env:"COURIER_TIMEOUT" envDefault:"10s"`

	RetryAttempts  int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY" envDefault:"150ms"`
	RetryMaxJitter time.Duration `env:"RETRY_MAX_JITTER" envDefault:"200ms"`

	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	SMTPFromName  string `env:"SMTP_FROM_NAME"`
	SMTPFromEmail string `env:"SMTP_FROM_EMAIL"`

	AlertEmailTo []string `env:"ALERT_EMAIL_TO" envSeparator:","`

	UltraMsgBaseURL  string `env:"ULTRAMSG_BASE_URL"`
	UltraMsgInstance string `env:"ULTRAMSG_INSTANCE"`
	UltraMsgToken    string `env:"ULTRAMSG_TOKEN"`
	UltraMsgTo       string `env:"ULTRAMSG_TO"`

	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	FallbackPushToken       string `env:"FALLBACK_PUSH_TOKEN"`

	LegacyMongoURI string `env:"LEGACY_MONGO_URI"`
	LegacyMongoDB  string `env:"LEGACY_MONGO_DB" envDefault:"legacy"`
	LegacyShopID   string `env:"LEGACY_SHOP_ID" envDefault:"1"`

	GA4MeasurementID    string `env:"GA4_MEASUREMENT_ID"`
	GA4APISecret        string `env:"GA4_API_SECRET"`
	OrderEventsQueueURL string `env:"ORDER_EVENTS_QUEUE_URL"`

	IdempotencyTable string        `env:"IDEMPOTENCY_TABLE"`
	IdempotencyTTL   time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"48h"`
	AWSRegion        string        `env:"AWS_REGION" envDefault:"eu-west-2"`

	TrackingBaseDir string `env:"TRACKING_BASE_DIR" envDefault:"./data"`

	PendingDispatchSchedule    string        `env:"PENDING_DISPATCH_SCHEDULE" envDefault:"0 */2 * * * *"`
	PendingDispatchMaxAttempts int           `env:"PENDING_DISPATCH_MAX_ATTEMPTS" envDefault:"5"`
	PendingDispatchBatchSize   int           `env:"PENDING_DISPATCH_BATCH_SIZE" envDefault:"20"`
	PendingDispatchIdle        time.Duration `env:"PENDING_DISPATCH_IDLE" envDefault:"5m"`
}

// LoadConfig reads envFile into the environment when it exists and parses Config.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DSN builds the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) Addr() string {
	return "0.0.0.0:" + c.HTTPPort
}
