package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "GOCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "GOCART_APP_ENV"
	EnvPort     = "GOCART_APP_PORT"
	EnvLogLevel = "GOCART_LOG_LEVEL"

	EnvDBDSN  = "GOCART_DB_DSN"
	EnvDBHost = "GOCART_DB_HOST"
	EnvDBUser = "GOCART_DB_USER"
	EnvDBName = "GOCART_DB_NAME"

	EnvRedisURL = "GOCART_REDIS_URL"

	EnvJWTSecret              = "GOCART_JWT_SECRET"
	EnvJWTIssuer              = "GOCART_JWT_ISSUER"
	EnvJWTExpMins             = "GOCART_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "GOCART_REFRESH_TOKEN_TTL_MINUTES"

	EnvCORSAllowedOrigins = "GOCART_CORS_ALLOWED_ORIGINS"

	EnvOrderStaleAfter = "GOCART_ORDER_STALE_UNPAID_AFTER"

	EnvStripeAPIKey = "GOCART_STRIPE_API_KEY"
	EnvStripeSecret = "GOCART_STRIPE_SECRET"
	EnvStripeEnv    = "GOCART_STRIPE_ENV"
)

// legacyDBEnvVars must all be set when no DSN is provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
