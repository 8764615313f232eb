package config

const EnvPrefix = "FLEETSTOCK"

const (
	AppEnvDev  = "development"
	AppEnvTest = "test"
	AppEnvProd = "production"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSQLiteDSN = "file:fleetstock.db?cache=shared&_foreign_keys=on"
)

const (
	EnvAppEnv      = "FLEETSTOCK_APP_ENV"
	EnvPort        = "FLEETSTOCK_APP_PORT"
	EnvLogLevel    = "FLEETSTOCK_LOG_LEVEL"
	EnvAppTimezone = "FLEETSTOCK_APP_TIMEZONE"

	EnvDBDSN    = "FLEETSTOCK_DB_DSN"
	EnvDBDriver = "FLEETSTOCK_DB_DRIVER"
	EnvDBHost   = "FLEETSTOCK_DB_HOST"
	EnvDBUser   = "FLEETSTOCK_DB_USER"
	EnvDBName   = "FLEETSTOCK_DB_NAME"

	EnvRedisURL = "FLEETSTOCK_REDIS_URL"

	EnvAccessSecret    = "ACCESS_SECRET"
	EnvRefreshSecret   = "REFRESH_SECRET"
	EnvAccessTokenTTL  = "FLEETSTOCK_ACCESS_TOKEN_TTL"
	EnvRefreshTokenTTL = "FLEETSTOCK_REFRESH_TOKEN_TTL"

	EnvPinBcryptCost = "FLEETSTOCK_PIN_BCRYPT_COST"
	EnvOTPTTL        = "FLEETSTOCK_OTP_TTL"
	EnvUseSQLite     = "FLEETSTOCK_USE_SQLITE"
	EnvCronInterval  = "FLEETSTOCK_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
