package config

const (
	EnvPrefix = "MEDSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv           = "MEDSTORE_APP_ENV"
	EnvPort             = "MEDSTORE_APP_PORT"
	EnvLogLevel         = "MEDSTORE_LOG_LEVEL"
	EnvDBDSN            = "MEDSTORE_DB_DSN"
	EnvDBHost           = "MEDSTORE_DB_HOST"
	EnvDBPort           = "MEDSTORE_DB_PORT"
	EnvDBUser           = "MEDSTORE_DB_USER"
	EnvDBPassword       = "MEDSTORE_DB_PASSWORD"
	EnvDBName           = "MEDSTORE_DB_NAME"
	EnvDBSSLMode        = "MEDSTORE_DB_SSLMODE"
	EnvRedisURL         = "MEDSTORE_REDIS_URL"
	EnvSalesPricePolicy = "MEDSTORE_SALES_PRICE_POLICY"
	EnvUseSQLite        = "MEDSTORE_USE_SQLITE"
	EnvCronInterval     = "MEDSTORE_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
