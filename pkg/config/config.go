package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "SHOPHUB"

	EnvAppEnv      = "SHOPHUB_APP_ENV"
	EnvPort        = "SHOPHUB_APP_PORT"
	EnvLogLevel    = "SHOPHUB_LOG_LEVEL"
	EnvDBDSN       = "SHOPHUB_DB_DSN"
	EnvDBDriver    = "SHOPHUB_DB_DRIVER"
	EnvDBHost      = "SHOPHUB_DB_HOST"
	EnvDBUser      = "SHOPHUB_DB_USER"
	EnvDBName      = "SHOPHUB_DB_NAME"
	EnvRedisURL    = "SHOPHUB_REDIS_URL"
	EnvJWTSecret   = "SHOPHUB_JWT_SECRET"
	EnvJWTIssuer   = "SHOPHUB_JWT_ISSUER"
	EnvJWTExpMins  = "SHOPHUB_JWT_EXPIRATION_MINUTES"
	EnvTaxRate     = "SHOPHUB_TAX_RATE"
	EnvAutoMigrate = "SHOPHUB_AUTO_MIGRATE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Store         StoreConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Store.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPHUB_DB_DSN"`
	Driver string `envconfig:"SHOPHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPHUB_DB_USER"`
	LegacyPassword string `envconfig:"SHOPHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the datasource is a sqlite file (local mode).
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPHUB_REDIS_URL"`
	Address      string        `envconfig:"SHOPHUB_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a redis endpoint was provided.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"SHOPHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SHOPHUB_JWT_ISSUER" default:"shophub"`
	ExpirationMinutes int    `envconfig:"SHOPHUB_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the configured access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOPHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOPHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOPHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOPHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOPHUB_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SHOPHUB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// StoreConfig holds the storefront pricing and fulfilment constants.
type StoreConfig struct {
	TaxRate               decimal.Decimal `envconfig:"SHOPHUB_TAX_RATE" default:"0.08"`
	FreeShippingThreshold decimal.Decimal `envconfig:"SHOPHUB_FREE_SHIPPING_THRESHOLD" default:"50.00"`
	StandardShipping      decimal.Decimal `envconfig:"SHOPHUB_STANDARD_SHIPPING" default:"5.99"`
	DeliveryDays          int             `envconfig:"SHOPHUB_DELIVERY_DAYS" default:"7"`
	SummaryDeliveryDays   int             `envconfig:"SHOPHUB_SUMMARY_DELIVERY_DAYS" default:"5"`
	ReturnPolicyDays      int             `envconfig:"SHOPHUB_RETURN_POLICY_DAYS" default:"30"`
}

func (s StoreConfig) validate() error {
	if s.TaxRate.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvTaxRate)
	}
	if s.FreeShippingThreshold.IsNegative() || s.StandardShipping.IsNegative() {
		return fmt.Errorf("shipping amounts must not be negative")
	}
	if s.DeliveryDays < 0 {
		return fmt.Errorf("delivery days must not be negative")
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHOPHUB_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverSQLite)
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
