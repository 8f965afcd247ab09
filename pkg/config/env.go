package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv           = "STOREFRONT_APP_ENV"
	EnvPort             = "STOREFRONT_APP_PORT"
	EnvDBDSN            = "STOREFRONT_DB_DSN"
	EnvDBHost           = "STOREFRONT_DB_HOST"
	EnvDBUser           = "STOREFRONT_DB_USER"
	EnvDBName           = "STOREFRONT_DB_NAME"
	EnvUseSQLite        = "STOREFRONT_USE_SQLITE"
	EnvRedisURL         = "STOREFRONT_REDIS_URL"
	EnvJWTSecret        = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer        = "STOREFRONT_JWT_ISSUER"
	EnvMidtransKey      = "STOREFRONT_MIDTRANS_SERVER_KEY"
	EnvMidtransEnv      = "STOREFRONT_MIDTRANS_ENV"
	EnvDeliveryTimeout  = "STOREFRONT_DELIVERY_PROVIDER_TIMEOUT"
	EnvBiteshipCouriers = "STOREFRONT_BITESHIP_COURIERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
