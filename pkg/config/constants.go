package config

// EnvPrefix scopes the envconfig lookup; explicit envconfig tags carry the
// full variable names.
const EnvPrefix = "tillpoint"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "TILLPOINT_APP_ENV"
	EnvPort       = "TILLPOINT_APP_PORT"
	EnvDBDSN      = "TILLPOINT_DB_DSN"
	EnvDBHost     = "TILLPOINT_DB_HOST"
	EnvDBUser     = "TILLPOINT_DB_USER"
	EnvDBName     = "TILLPOINT_DB_NAME"
	EnvRedisURL   = "TILLPOINT_REDIS_URL"
	EnvJWTSecret  = "TILLPOINT_JWT_SECRET"
	EnvJWTIssuer  = "TILLPOINT_JWT_ISSUER"
	EnvJWTExpMins = "TILLPOINT_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
