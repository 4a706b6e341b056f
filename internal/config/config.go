package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	devJWTSecret = "dev_jwt_secret_change_me"
)

// Config is the runtime configuration of the service.
type Config struct {
	AppPort          string
	AppEnv           string
	LogLevel         string
	DBDriver         string
	DatabaseDSN      string
	JWTSecret        string
	JWTExpiration    time.Duration
	RabbitMQURL      string
	UserDeletePolicy string
	BcryptCost       int
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper applies defaults and environment bindings to v and builds a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "blog.db")
	v.SetDefault("JWT_EXPIRATION", time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("USER_DELETE_POLICY", "cascade")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:          v.GetString("APP_PORT"),
		AppEnv:           strings.ToLower(v.GetString("APP_ENV")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		DBDriver:         strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTExpiration:    v.GetDuration("JWT_EXPIRATION"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		UserDeletePolicy: strings.ToLower(v.GetString("USER_DELETE_POLICY")),
		BcryptCost:       v.GetInt("BCRYPT_COST"),
	}

	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required outside development")
	}
	if c.JWTExpiration <= 0 {
		return fmt.Errorf("config: JWT_EXPIRATION must be positive, got %s", c.JWTExpiration)
	}
	switch c.UserDeletePolicy {
	case "cascade", "restrict":
	default:
		return fmt.Errorf("config: unsupported USER_DELETE_POLICY %q", c.UserDeletePolicy)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}
