package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "orgshop"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "ORGSHOP_APP_ENV"
	EnvDBDSN  = "ORGSHOP_DB_DSN"
	EnvDBHost = "ORGSHOP_DB_HOST"
	EnvDBUser = "ORGSHOP_DB_USER"
	EnvDBName = "ORGSHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	Stripe       StripeConfig
	Printful     PrintfulConfig
	Checkout     CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ORGSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"ORGSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORGSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORGSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ORGSHOP_DB_DSN"`
	Driver string `envconfig:"ORGSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORGSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"ORGSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORGSHOP_DB_USER"`
	LegacyPassword string `envconfig:"ORGSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORGSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORGSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORGSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORGSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORGSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORGSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORGSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORGSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"ORGSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORGSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORGSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORGSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORGSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORGSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORGSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"ORGSHOP_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"ORGSHOP_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORGSHOP_AUTO_MIGRATE" default:"false"`
	// AllowUserIDHeader enables the X-User-Id identity fallback used by
	// local tooling; production always requires a session token.
	AllowUserIDHeader bool `envconfig:"ORGSHOP_ALLOW_USER_ID_HEADER" default:"true"`
}

type EventingConfig struct {
	WebhookIdempotencyTTL time.Duration `envconfig:"ORGSHOP_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

type StripeConfig struct {
	APIKey string `envconfig:"ORGSHOP_STRIPE_API_KEY"`
	Secret string `envconfig:"ORGSHOP_STRIPE_SECRET"`
	Env    string `envconfig:"ORGSHOP_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type PrintfulConfig struct {
	APIKey  string `envconfig:"ORGSHOP_PRINTFUL_API_KEY"`
	StoreID string `envconfig:"ORGSHOP_PRINTFUL_STORE_ID"`
}

type CheckoutConfig struct {
	SuccessURL string `envconfig:"ORGSHOP_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL  string `envconfig:"ORGSHOP_CHECKOUT_CANCEL_URL" required:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
