package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the settings read from the environment.
type Config struct {
	DBPath       string        `env:"PUNCH_DB_PATH"`
	DatabaseURL  string        `env:"PUNCH_DATABASE_URL"`
	User         string        `env:"PUNCH_USER"`
	Timezone     string        `env:"PUNCH_TIMEZONE" envDefault:"Local"`
	TickInterval time.Duration `env:"PUNCH_TICK_INTERVAL" envDefault:"1s"`

	RedisAddr     string `env:"PUNCH_REDIS_ADDR"`
	RedisPassword string `env:"PUNCH_REDIS_PASSWORD"`
	RedisDB       int    `env:"PUNCH_REDIS_DB" envDefault:"0"`
	FeedPrefix    string `env:"PUNCH_FEED_PREFIX" envDefault:"punch:sessions"`

	LogLevel string `env:"PUNCH_LOG_LEVEL" envDefault:"warn"`
	LogFile  string `env:"PUNCH_LOG_FILE"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.User == "" {
		cfg.User = os.Getenv("USER")
	}
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("PUNCH_TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("PUNCH_TIMEZONE: %w", err)
	}
	return loc, nil
}

// NewLogger builds the process logger. Without a log file it writes to stderr.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("PUNCH_LOG_LEVEL: %w", err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = "console"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.OutputPaths = []string{"stderr"}
	if c.LogFile != "" {
		zcfg.Encoding = "json"
		zcfg.OutputPaths = []string{c.LogFile}
	}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	return zcfg.Build()
}
