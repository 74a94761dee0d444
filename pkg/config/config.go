package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SAMPLELOOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SAMPLELOOP_DB_DSN"
	EnvDBHost = "SAMPLELOOP_DB_HOST"
	EnvDBUser = "SAMPLELOOP_DB_USER"
	EnvDBName = "SAMPLELOOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Org          OrgConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SAMPLELOOP_APP_ENV" required:"true"`
	Port         string `envconfig:"SAMPLELOOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SAMPLELOOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SAMPLELOOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SAMPLELOOP_DB_DSN"`

	LegacyHost     string `envconfig:"SAMPLELOOP_DB_HOST"`
	LegacyPort     int    `envconfig:"SAMPLELOOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SAMPLELOOP_DB_USER"`
	LegacyPassword string `envconfig:"SAMPLELOOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SAMPLELOOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SAMPLELOOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SAMPLELOOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SAMPLELOOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SAMPLELOOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SAMPLELOOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SAMPLELOOP_REDIS_URL"`
	Address      string        `envconfig:"SAMPLELOOP_REDIS_ADDR"`
	Password     string        `envconfig:"SAMPLELOOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SAMPLELOOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SAMPLELOOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SAMPLELOOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SAMPLELOOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SAMPLELOOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SAMPLELOOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// OrgConfig carries platform-wide defaults applied when an organization has
// no explicit setting of its own.
type OrgConfig struct {
	DefaultCommissionRate        int           `envconfig:"SAMPLELOOP_ORG_DEFAULT_COMMISSION_RATE" default:"10"`
	DefaultAttributionWindowDays int           `envconfig:"SAMPLELOOP_ORG_DEFAULT_ATTRIBUTION_WINDOW_DAYS" default:"30"`
	ConfigCacheTTL               time.Duration `envconfig:"SAMPLELOOP_ORG_CONFIG_CACHE_TTL" default:"5m"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SAMPLELOOP_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SAMPLELOOP_OUTBOX_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SAMPLELOOP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SAMPLELOOP_AUTO_MIGRATE" default:"false"`
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
