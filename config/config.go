// Package config loads the campus panel configuration from the process
// environment (optionally seeded from a .env file) and exposes the embedded
// build metadata.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// SessionStoreType selects where session state lives.
type SessionStoreType string

const (
	SessionStoreCookie SessionStoreType = "cookie"
	SessionStoreRedis  SessionStoreType = "redis"
)

// Config holds every runtime setting of the panel.
type Config struct {
	Debug     bool     `env:"CAMPUS_DEBUG, default=false"`
	LogLevel  LogLevel `env:"CAMPUS_LOG_LEVEL, default=info"`
	LogFolder string   `env:"CAMPUS_LOG_FOLDER, default=/var/log/campus-panel"`

	Listen       string `env:"CAMPUS_LISTEN"`
	Port         int    `env:"CAMPUS_PORT, default=8080"`
	BasePath     string `env:"CAMPUS_BASE_PATH, default=/"`
	CertFile     string `env:"CAMPUS_CERT_FILE"`
	KeyFile      string `env:"CAMPUS_KEY_FILE"`
	TimeLocation string `env:"CAMPUS_TIME_LOCATION, default=Asia/Colombo"`

	Session SessionConfig
	Redis   RedisConfig

	Database DatabaseConfig

	// LoginRatePerMinute bounds POST attempts per client IP on the login
	// surfaces. Zero disables throttling.
	LoginRatePerMinute int `env:"CAMPUS_LOGIN_RATE_PER_MINUTE, default=20"`
	LoginBurst         int `env:"CAMPUS_LOGIN_BURST, default=5"`

	AuditRetentionDays int  `env:"CAMPUS_AUDIT_RETENTION_DAYS, default=90"`
	MetricsEnable      bool `env:"CAMPUS_METRICS_ENABLE, default=false"`
}

type SessionConfig struct {
	Secret string           `env:"CAMPUS_SESSION_SECRET"`
	MaxAge int              `env:"CAMPUS_SESSION_MAX_AGE, default=60"` // minutes
	Store  SessionStoreType `env:"CAMPUS_SESSION_STORE, default=cookie"`
	Secure bool             `env:"CAMPUS_SESSION_SECURE, default=false"`
}

type RedisConfig struct {
	// Addr of an external redis server. Empty starts an embedded one.
	Addr     string `env:"CAMPUS_REDIS_ADDR"`
	Password string `env:"CAMPUS_REDIS_PASSWORD"`
	DB       int    `env:"CAMPUS_REDIS_DB, default=0"`
}

// Load reads .env (when present) and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	// a missing .env is the normal production case
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves the configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.SQLite.Path == "" {
		cfg.Database.SQLite.Path = defaultSQLitePath(cfg.Debug)
	}
	if cfg.Debug {
		cfg.LogLevel = Debug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case Debug, Info, Notice, Warn, Error:
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	switch c.Session.Store {
	case SessionStoreCookie, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported session store: %s", c.Session.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("session max age must be positive")
	}
	if _, err := time.LoadLocation(c.TimeLocation); err != nil {
		return fmt.Errorf("invalid time location %q: %w", c.TimeLocation, err)
	}
	return c.Database.ValidateConfig()
}

// NormalizedBasePath always starts and ends with a slash.
func (c *Config) NormalizedBasePath() string {
	p := c.BasePath
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeLocation)
	if err != nil {
		return time.Local
	}
	return loc
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}
