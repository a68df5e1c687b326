package config

// EnvPrefix is passed to envconfig; explicit envconfig tags below carry the
// full variable names, so the prefix only matters for untagged fields.
const EnvPrefix = "BOUTIQUE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared between Load, tests, and deployment docs.
const (
	EnvAppEnv    = "BOUTIQUE_APP_ENV"
	EnvPort      = "BOUTIQUE_APP_PORT"
	EnvDBDSN     = "BOUTIQUE_DB_DSN"
	EnvDBHost    = "BOUTIQUE_DB_HOST"
	EnvDBUser    = "BOUTIQUE_DB_USER"
	EnvDBName    = "BOUTIQUE_DB_NAME"
	EnvRedisURL  = "BOUTIQUE_REDIS_URL"
	EnvJWTSecret = "BOUTIQUE_JWT_SECRET"
	EnvJWTIssuer = "BOUTIQUE_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
