// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Password hashing modes.
const (
	HashingPlain  = "plain"
	HashingBcrypt = "bcrypt"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env                string  `mapstructure:"APP_ENV"`
	Port               string  `mapstructure:"PORT"`
	StoreBackend       string  `mapstructure:"STORE_BACKEND"`
	StoreKey           string  `mapstructure:"STORE_KEY"`
	DataDir            string  `mapstructure:"DATA_DIR"`
	SQLitePath         string  `mapstructure:"SQLITE_PATH"`
	DBHost             string  `mapstructure:"DB_HOST"`
	DBPort             string  `mapstructure:"DB_PORT"`
	DBUser             string  `mapstructure:"DB_USER"`
	DBPassword         string  `mapstructure:"DB_PASSWORD"`
	DBName             string  `mapstructure:"DB_NAME"`
	DBSSLMode          string  `mapstructure:"DB_SSLMODE"`
	RedisURL           string  `mapstructure:"REDIS_URL"`
	PasswordHashing    string  `mapstructure:"PASSWORD_HASHING"`
	FeatureFlags       string  `mapstructure:"FEATURE_FLAGS"`
	AllowedOrigins     string  `mapstructure:"ALLOWED_ORIGINS"`
	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
	AvatarMaxBytes     int     `mapstructure:"AVATAR_MAX_BYTES"`
	AvatarMaxDimension int     `mapstructure:"AVATAR_MAX_DIMENSION"`
	AvatarMaxPixels    int     `mapstructure:"AVATAR_MAX_PIXELS"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base config file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("STORE_BACKEND", BackendFile)
	viper.SetDefault("STORE_KEY", "psocial_db_v3")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("SQLITE_PATH", "./data/psocial.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "psocial")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("PASSWORD_HASHING", HashingPlain)
	viper.SetDefault("FEATURE_FLAGS", "")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
	viper.SetDefault("AVATAR_MAX_BYTES", 2*1024*1024)
	viper.SetDefault("AVATAR_MAX_DIMENSION", 256)
	viper.SetDefault("AVATAR_MAX_PIXELS", 16_000_000)
}

func (c *Config) normalize() {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.PasswordHashing = strings.ToLower(strings.TrimSpace(c.PasswordHashing))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
}

// IsProduction reports whether the config targets production.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.StoreKey == "" {
		return errors.New("STORE_KEY is required")
	}

	switch c.StoreBackend {
	case BackendMemory, BackendRedis, BackendPostgres:
	case BackendFile, BackendBadger:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the %s backend", c.StoreBackend)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.PasswordHashing {
	case HashingPlain, HashingBcrypt:
	default:
		return fmt.Errorf("unknown PASSWORD_HASHING %q", c.PasswordHashing)
	}

	if c.AvatarMaxBytes <= 0 {
		return errors.New("AVATAR_MAX_BYTES must be positive")
	}
	if c.AvatarMaxDimension <= 0 {
		return errors.New("AVATAR_MAX_DIMENSION must be positive")
	}
	if c.AvatarMaxPixels < 0 {
		return errors.New("AVATAR_MAX_PIXELS must not be negative")
	}

	if c.IsProduction() {
		if c.StoreBackend == BackendMemory {
			return errors.New("the memory backend loses all data on restart and is not allowed in production")
		}
		if c.StoreBackend == BackendPostgres && (c.DBPassword == "password" || c.DBPassword == "") {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.PasswordHashing == HashingPlain {
			log.Println("WARNING: PASSWORD_HASHING is 'plain'. Passwords and the seeded admin credential are stored in cleartext.")
		}
	}

	return nil
}
