package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App            AppConfig
	DB             DBConfig
	Redis          RedisConfig
	JWT            JWTConfig
	FeatureFlags   FeatureFlagsConfig
	GoogleMaps     GoogleMapsConfig
	Midtrans       MidtransConfig
	Biteship       BiteshipConfig
	InstantCourier InstantCourierConfig
	Delivery       DeliveryConfig
	Checkout       CheckoutConfig
	RateLimit      RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

// AllowedOrigins splits the configured CORS origins.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, part := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"STOREFRONT_DB_DSN"`
	SQLitePath string `envconfig:"STOREFRONT_SQLITE_PATH" default:"storefront.db"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// UseSQLite is copied from the feature flags during Load.
	UseSQLite bool `ignored:"true"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

type GoogleMapsConfig struct {
	APIKey        string `envconfig:"STOREFRONT_GOOGLE_MAPS_API_KEY"`
	RegionCode    string `envconfig:"STOREFRONT_GOOGLE_MAPS_REGION" default:"ID"`
	LanguageCode  string `envconfig:"STOREFRONT_GOOGLE_MAPS_LANGUAGE" default:"id"`
	RoutesBaseURL string `envconfig:"STOREFRONT_GOOGLE_ROUTES_BASE_URL" default:"https://routes.googleapis.com"`
}

type MidtransConfig struct {
	ServerKey string `envconfig:"STOREFRONT_MIDTRANS_SERVER_KEY" required:"true"`
	ClientKey string `envconfig:"STOREFRONT_MIDTRANS_CLIENT_KEY"`
	Env       string `envconfig:"STOREFRONT_MIDTRANS_ENV" default:"sandbox"`
	// FinishURL is where the hosted payment page sends the buyer afterwards.
	FinishURL string        `envconfig:"STOREFRONT_MIDTRANS_FINISH_URL"`
	Timeout   time.Duration `envconfig:"STOREFRONT_MIDTRANS_TIMEOUT" default:"15s"`
}

// Environment returns the normalized Midtrans environment (sandbox/production).
func (m MidtransConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(m.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type BiteshipConfig struct {
	APIKey   string `envconfig:"STOREFRONT_BITESHIP_API_KEY"`
	BaseURL  string `envconfig:"STOREFRONT_BITESHIP_BASE_URL" default:"https://api.biteship.com/v1"`
	Couriers string `envconfig:"STOREFRONT_BITESHIP_COURIERS" default:"jne,sicepat,jnt,anteraja,gojek,grab"`
}

type InstantCourierConfig struct {
	APIKey  string `envconfig:"STOREFRONT_INSTANT_COURIER_API_KEY"`
	BaseURL string `envconfig:"STOREFRONT_INSTANT_COURIER_BASE_URL"`
}

type DeliveryConfig struct {
	ProviderTimeout     time.Duration `envconfig:"STOREFRONT_DELIVERY_PROVIDER_TIMEOUT" default:"6s"`
	InstantRadiusKm     float64       `envconfig:"STOREFRONT_DELIVERY_INSTANT_RADIUS_KM" default:"40"`
	DefaultOriginLat    float64       `envconfig:"STOREFRONT_DELIVERY_ORIGIN_LAT" default:"-6.2088"`
	DefaultOriginLng    float64       `envconfig:"STOREFRONT_DELIVERY_ORIGIN_LNG" default:"106.8456"`
	DefaultOriginPostal string        `envconfig:"STOREFRONT_DELIVERY_ORIGIN_POSTAL_CODE" default:"10110"`
}

type CheckoutConfig struct {
	SessionTTL time.Duration `envconfig:"STOREFRONT_CHECKOUT_SESSION_TTL" default:"2h"`
}

// RateLimitConfig throttles the endpoints that fan out to paid third-party APIs.
type RateLimitConfig struct {
	Window    time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit   int           `envconfig:"STOREFRONT_RATE_LIMIT_IP" default:"60"`
	UserLimit int           `envconfig:"STOREFRONT_RATE_LIMIT_USER" default:"30"`
}

// CourierList splits the configured courier codes.
func (b BiteshipConfig) CourierList() []string {
	var out []string
	for _, part := range strings.Split(b.Couriers, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, strings.ToLower(trimmed))
		}
	}
	return out
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	db.UseSQLite = useSQLite
	if useSQLite || db.DSN != "" {
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
