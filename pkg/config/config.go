package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Security      SecurityConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Sendgrid      SendgridConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FLEETSTOCK_APP_ENV" required:"true"`
	Port         string `envconfig:"FLEETSTOCK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FLEETSTOCK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLEETSTOCK_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"FLEETSTOCK_LOG_FORMAT" default:"json"`
	Timezone     string `envconfig:"FLEETSTOCK_APP_TIMEZONE" default:"UTC"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsTest() bool {
	return strings.EqualFold(a.Env, AppEnvTest)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "prod")
}

// ExposeErrorDetail reports whether 500 responses may carry the raw error text.
func (a AppConfig) ExposeErrorDetail() bool {
	return a.IsDev() || a.IsTest()
}

// Location resolves the timezone that month boundaries are computed in.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvAppTimezone, name, err)
	}
	return loc, nil
}

type ServiceConfig struct {
	Kind string `envconfig:"FLEETSTOCK_SERVICE_KIND" default:"api"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"FLEETSTOCK_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"FLEETSTOCK_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"FLEETSTOCK_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"FLEETSTOCK_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"FLEETSTOCK_CORS_ORIGINS" default:"http://localhost:5173"`
}

type DBConfig struct {
	DSN    string `envconfig:"FLEETSTOCK_DB_DSN"`
	Driver string `envconfig:"FLEETSTOCK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLEETSTOCK_DB_HOST"`
	LegacyPort     int    `envconfig:"FLEETSTOCK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLEETSTOCK_DB_USER"`
	LegacyPassword string `envconfig:"FLEETSTOCK_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLEETSTOCK_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLEETSTOCK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLEETSTOCK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLEETSTOCK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLEETSTOCK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLEETSTOCK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETSTOCK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FLEETSTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETSTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETSTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETSTOCK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETSTOCK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETSTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETSTOCK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETSTOCK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig keeps the signing keys under their historical unprefixed names.
type JWTConfig struct {
	AccessSecret    string        `envconfig:"ACCESS_SECRET" required:"true"`
	RefreshSecret   string        `envconfig:"REFRESH_SECRET" required:"true"`
	Issuer          string        `envconfig:"FLEETSTOCK_JWT_ISSUER" default:"fleetstock"`
	AccessTokenTTL  time.Duration `envconfig:"FLEETSTOCK_ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"FLEETSTOCK_REFRESH_TOKEN_TTL" default:"168h"`
	CookieSecure    bool          `envconfig:"FLEETSTOCK_REFRESH_COOKIE_SECURE" default:"true"`
}

type SecurityConfig struct {
	PinBcryptCost int           `envconfig:"FLEETSTOCK_PIN_BCRYPT_COST" default:"10"`
	OTPTTL        time.Duration `envconfig:"FLEETSTOCK_OTP_TTL" default:"10m"`
}

type AuthRateLimitConfig struct {
	LoginWindow   time.Duration `envconfig:"FLEETSTOCK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit  int           `envconfig:"FLEETSTOCK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
	OTPWindow     time.Duration `envconfig:"FLEETSTOCK_AUTH_RATE_LIMIT_OTP_WINDOW" default:"10m"`
	OTPEmailLimit int           `envconfig:"FLEETSTOCK_AUTH_RATE_LIMIT_OTP_EMAIL_LIMIT" default:"3"`
	OTPIPLimit    int           `envconfig:"FLEETSTOCK_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FLEETSTOCK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FLEETSTOCK_AUTO_MIGRATE" default:"false"`
	SeedFleets  bool `envconfig:"FLEETSTOCK_SEED_FLEETS" default:"true"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"FLEETSTOCK_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"FLEETSTOCK_SENDGRID_FROM_EMAIL"`
	BaseURL     string `envconfig:"FLEETSTOCK_SENDGRID_BASE_URL" default:"https://api.sendgrid.com"`
}

// Enabled reports whether outbound mail should go through SendGrid.
func (s SendgridConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != "" && strings.TrimSpace(s.DefaultFrom) != ""
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FLEETSTOCK_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"FLEETSTOCK_CRON_LOCK_TTL" default:"55m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteDSN
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
