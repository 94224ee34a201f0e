// Package config loads service and CLI settings from the environment, with
// optional .env / config.env files in the working directory.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups application settings.
type Config struct {
	App       AppConfig
	DB        DBConfig
	HTTP      HTTPConfig
	Numbering NumberingConfig
	SQLite    SQLiteConfig
	Worker    WorkerConfig
}

// AppConfig holds general settings.
type AppConfig struct {
	Env      string // development, staging, production
	LogLevel string
}

// Development reports whether the service runs in development mode.
func (c AppConfig) Development() bool {
	return c.Env == "development"
}

// DBConfig holds PostgreSQL settings.
type DBConfig struct {
	URL             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrateOnStart  bool
}

// HTTPConfig holds listener settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NumberingConfig holds allocation limits and licensing defaults.
type NumberingConfig struct {
	// HomeMarket is the country whose license codes carry the 4-digit block.
	HomeMarket string
	MaxBatch   int
	MaxRetries int
}

// SQLiteConfig holds the numgen database location.
type SQLiteConfig struct {
	Path string
}

// WorkerConfig holds the license expiry watcher settings.
type WorkerConfig struct {
	Interval    time.Duration
	MetricsPort int
}

// Load reads the configuration. Environment variables take precedence over
// file values.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig() // optional

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxConns:        v.GetInt32("DB_MAX_CONNS"),
			MinConns:        v.GetInt32("DB_MIN_CONNS"),
			MaxConnLifetime: v.GetDuration("DB_MAX_CONN_LIFETIME"),
			MigrateOnStart:  v.GetBool("DB_MIGRATE"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Numbering: NumberingConfig{
			HomeMarket: strings.ToUpper(strings.TrimSpace(v.GetString("HOME_MARKET_COUNTRY"))),
			MaxBatch:   v.GetInt("MAX_BATCH_QUANTITY"),
			MaxRetries: v.GetInt("ALLOCATION_MAX_RETRIES"),
		},
		SQLite: SQLiteConfig{
			Path: v.GetString("SQLITE_PATH"),
		},
		Worker: WorkerConfig{
			Interval:    v.GetDuration("WORKER_INTERVAL"),
			MetricsPort: v.GetInt("WORKER_METRICS_PORT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 25)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_MAX_CONN_LIFETIME", time.Hour)
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("HOME_MARKET_COUNTRY", "BR")
	v.SetDefault("MAX_BATCH_QUANTITY", 100)
	v.SetDefault("ALLOCATION_MAX_RETRIES", 3)
	v.SetDefault("SQLITE_PATH", "numgen.db")
	v.SetDefault("WORKER_INTERVAL", time.Hour)
	v.SetDefault("WORKER_METRICS_PORT", 9091)
}

func (c *Config) validate() error {
	if len(c.Numbering.HomeMarket) != 2 {
		return fmt.Errorf("HOME_MARKET_COUNTRY must be a two-letter code, got %q", c.Numbering.HomeMarket)
	}
	if c.Numbering.MaxBatch < 1 {
		return fmt.Errorf("MAX_BATCH_QUANTITY must be positive, got %d", c.Numbering.MaxBatch)
	}
	if c.Numbering.MaxRetries < 0 {
		return fmt.Errorf("ALLOCATION_MAX_RETRIES cannot be negative, got %d", c.Numbering.MaxRetries)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTP.Port)
	}
	if c.Worker.Interval < time.Minute {
		return fmt.Errorf("WORKER_INTERVAL must be at least 1m, got %s", c.Worker.Interval)
	}
	return nil
}
