package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     DatabaseType `env:"CAMPUS_DB_TYPE, default=sqlite"`
	SQLite   SQLiteConfig
	Postgres PostgresConfig
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `env:"CAMPUS_DB_PATH"`
}

// PostgresConfig holds PostgreSQL specific configuration
type PostgresConfig struct {
	Host     string `env:"CAMPUS_PG_HOST, default=localhost"`
	Port     int    `env:"CAMPUS_PG_PORT, default=5432"`
	Database string `env:"CAMPUS_PG_DATABASE, default=campus"`
	Username string `env:"CAMPUS_PG_USER, default=campus"`
	Password string `env:"CAMPUS_PG_PASSWORD"`
	SSLMode  string `env:"CAMPUS_PG_SSLMODE, default=disable"`
	TimeZone string `env:"CAMPUS_PG_TIMEZONE, default=UTC"`
}

// GetDSN returns the data source name for the database
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case DatabaseTypePostgreSQL:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
			c.Postgres.Host,
			c.Postgres.Username,
			c.Postgres.Password,
			c.Postgres.Database,
			c.Postgres.Port,
			c.Postgres.SSLMode,
			c.Postgres.TimeZone,
		)
	default:
		// foreign keys are off by default in sqlite; the set-null and
		// cascade rules of the campus hierarchy depend on them
		return c.SQLite.Path + "?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on&_busy_timeout=5000"
	}
}

// defaultSQLitePath returns the default SQLite database path
func defaultSQLitePath(debug bool) string {
	if debug {
		return "db/campus-panel.db"
	}
	return "/etc/campus-panel/campus-panel.db"
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("SQLite path cannot be empty")
		}
	case DatabaseTypePostgreSQL:
		if c.Postgres.Host == "" {
			return fmt.Errorf("PostgreSQL host cannot be empty")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("PostgreSQL database name cannot be empty")
		}
		if c.Postgres.Username == "" {
			return fmt.Errorf("PostgreSQL username cannot be empty")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			return fmt.Errorf("PostgreSQL port must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// IsPostgreSQL returns true if the database type is PostgreSQL
func (c *DatabaseConfig) IsPostgreSQL() bool {
	return c.Type == DatabaseTypePostgreSQL
}

// IsSQLite returns true if the database type is SQLite
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.SQLite.Path)
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
