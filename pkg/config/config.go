package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SHIELD"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SHIELD_DB_DSN"
	EnvDBHost = "SHIELD_DB_HOST"
	EnvDBUser = "SHIELD_DB_USER"
	EnvDBName = "SHIELD_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Seed         SeedConfig
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
	Env          string `envconfig:"SHIELD_APP_ENV" required:"true"`
	Port         string `envconfig:"SHIELD_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"SHIELD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHIELD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SHIELD_DB_DSN"`
	Driver string `envconfig:"SHIELD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHIELD_DB_HOST"`
	LegacyPort     int    `envconfig:"SHIELD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHIELD_DB_USER"`
	LegacyPassword string `envconfig:"SHIELD_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHIELD_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHIELD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHIELD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHIELD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHIELD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHIELD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHIELD_REDIS_URL"`
	Address      string        `envconfig:"SHIELD_REDIS_ADDR"`
	Password     string        `envconfig:"SHIELD_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHIELD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHIELD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHIELD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHIELD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHIELD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHIELD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// RateLimitConfig throttles the password-reset request surface.
type RateLimitConfig struct {
	ResetWindow     time.Duration `envconfig:"SHIELD_RATE_LIMIT_RESET_WINDOW" default:"5m"`
	ResetEmailLimit int           `envconfig:"SHIELD_RATE_LIMIT_RESET_EMAIL_LIMIT" default:"3"`
	ResetIPLimit    int           `envconfig:"SHIELD_RATE_LIMIT_RESET_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SHIELD_AUTO_MIGRATE" default:"false"`
}

// SeedConfig feeds cmd/seed when flags are not provided.
type SeedConfig struct {
	AdminEmail    string `envconfig:"SHIELD_SEED_ADMIN_EMAIL"`
	AdminFullName string `envconfig:"SHIELD_SEED_ADMIN_FULLNAME"`
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
