package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Orders       OrdersConfig
	Cart         CartConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	if c.JWT.RefreshTokenTTL() <= time.Duration(c.JWT.ExpirationMinutes)*time.Minute {
		return fmt.Errorf("%s must exceed %s", EnvRefreshTokenTTLMinutes, EnvJWTExpMins)
	}
	if c.Orders.StaleUnpaidAfter <= 0 {
		return fmt.Errorf("%s must be positive", EnvOrderStaleAfter)
	}
	switch c.Stripe.Environment() {
	case "test", "live":
	default:
		return fmt.Errorf("%s must be test or live", EnvStripeEnv)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"GOCART_APP_ENV" required:"true"`
	Port         string `envconfig:"GOCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GOCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GOCART_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"GOCART_LOG_FORMAT"`
}

// LogOutputFormat is the configured log format, or console output in dev.
func (a AppConfig) LogOutputFormat() string {
	if a.LogFormat != "" {
		return strings.ToLower(a.LogFormat)
	}
	if a.IsDev() {
		return "console"
	}
	return "json"
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GOCART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GOCART_DB_DSN"`
	Driver string `envconfig:"GOCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GOCART_DB_HOST"`
	LegacyPort     int    `envconfig:"GOCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GOCART_DB_USER"`
	LegacyPassword string `envconfig:"GOCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"GOCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"GOCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GOCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GOCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GOCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GOCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"GOCART_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GOCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GOCART_REDIS_ADDR"`
	Password     string        `envconfig:"GOCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GOCART_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GOCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GOCART_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GOCART_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GOCART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GOCART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GOCART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GOCART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GOCART_ARGON_KEY_LEN" default:"32"`
}

// RateLimitConfig holds both the in-process general limiter and the Redis backed auth windows.
type RateLimitConfig struct {
	GeneralWindow   time.Duration `envconfig:"GOCART_RATE_LIMIT_WINDOW" default:"15m"`
	GeneralRequests int           `envconfig:"GOCART_RATE_LIMIT_REQUESTS" default:"100"`

	LoginWindow    time.Duration `envconfig:"GOCART_RATE_LIMIT_LOGIN_WINDOW" default:"15m"`
	LoginLimit     int           `envconfig:"GOCART_RATE_LIMIT_LOGIN_LIMIT" default:"5"`
	RegisterWindow time.Duration `envconfig:"GOCART_RATE_LIMIT_REGISTER_WINDOW" default:"1h"`
	RegisterLimit  int           `envconfig:"GOCART_RATE_LIMIT_REGISTER_LIMIT" default:"3"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GOCART_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type OrdersConfig struct {
	StaleUnpaidAfter time.Duration `envconfig:"GOCART_ORDER_STALE_UNPAID_AFTER" default:"24h"`
	IdempotencyTTL   time.Duration `envconfig:"GOCART_ORDER_IDEMPOTENCY_TTL" default:"24h"`
}

type CartConfig struct {
	CacheTTL time.Duration `envconfig:"GOCART_CART_CACHE_TTL" default:"30m"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GOCART_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"GOCART_CRON_LOCK_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GOCART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GOCART_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"GOCART_STRIPE_API_KEY"`
	Secret   string `envconfig:"GOCART_STRIPE_SECRET"`
	Env      string `envconfig:"GOCART_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"GOCART_STRIPE_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Enabled reports whether a Stripe key has been configured.
func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
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
