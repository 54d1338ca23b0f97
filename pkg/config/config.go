package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/medstore/medstore-backend/pkg/enums"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Sales        SalesConfig
	Idempotency  IdempotencyConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Sales.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env             string        `envconfig:"MEDSTORE_APP_ENV" required:"true"`
	Port            string        `envconfig:"MEDSTORE_APP_PORT" default:"4000"`
	LogLevel        string        `envconfig:"MEDSTORE_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"MEDSTORE_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"MEDSTORE_LOG_WARN_STACK" default:"false"`
	AllowedOrigins  []string      `envconfig:"MEDSTORE_CORS_ALLOWED_ORIGINS" default:"*"`
	ReadTimeout     time.Duration `envconfig:"MEDSTORE_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"MEDSTORE_HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"MEDSTORE_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"MEDSTORE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MEDSTORE_DB_DSN"`
	Driver string `envconfig:"MEDSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEDSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"MEDSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEDSTORE_DB_USER"`
	LegacyPassword string `envconfig:"MEDSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEDSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEDSTORE_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"MEDSTORE_DB_SQLITE_PATH" default:"medstore.db"`

	MaxOpenConns    int           `envconfig:"MEDSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEDSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEDSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEDSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"MEDSTORE_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEDSTORE_REDIS_URL"`
	Address      string        `envconfig:"MEDSTORE_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"MEDSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEDSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEDSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEDSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEDSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEDSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEDSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SalesConfig controls how submitted line prices are reconciled with the catalogue.
type SalesConfig struct {
	PricePolicy string `envconfig:"MEDSTORE_SALES_PRICE_POLICY" default:"reject"`
}

func (s SalesConfig) validate() error {
	if _, err := enums.ParsePricePolicy(s.PricePolicy); err != nil {
		return fmt.Errorf("%s: %w", EnvSalesPricePolicy, err)
	}
	return nil
}

// Policy returns the parsed price policy, defaulting to reject.
func (s SalesConfig) Policy() enums.PricePolicy {
	policy, err := enums.ParsePricePolicy(s.PricePolicy)
	if err != nil {
		return enums.PricePolicyReject
	}
	return policy
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"MEDSTORE_IDEMPOTENCY_TTL" default:"24h"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"MEDSTORE_CRON_INTERVAL" default:"1h"`
	ExpiryWindowDay int           `envconfig:"MEDSTORE_CRON_EXPIRY_WINDOW_DAYS" default:"30"`
	LockTTL         time.Duration `envconfig:"MEDSTORE_CRON_LOCK_TTL" default:"5m"`
	MetricsAddr     string        `envconfig:"MEDSTORE_CRON_METRICS_ADDR" default:":9100"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEDSTORE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEDSTORE_AUTO_MIGRATE" default:"false"`
	Idempotency bool `envconfig:"MEDSTORE_FEATURE_IDEMPOTENCY" default:"true"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
