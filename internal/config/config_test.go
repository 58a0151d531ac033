package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                "development",
		Port:               "8375",
		StoreBackend:       BackendMemory,
		StoreKey:           "psocial_db_v3",
		DataDir:            "./data",
		SQLitePath:         "./data/psocial.db",
		PasswordHashing:    HashingPlain,
		AvatarMaxBytes:     1024,
		AvatarMaxDimension: 64,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid memory config", func(*Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing store key", func(c *Config) { c.StoreKey = "" }, true},
		{"Unknown backend", func(c *Config) { c.StoreBackend = "etcd" }, true},
		{"File backend without data dir", func(c *Config) { c.StoreBackend = BackendFile; c.DataDir = "" }, true},
		{"SQLite without path", func(c *Config) { c.StoreBackend = BackendSQLite; c.SQLitePath = "" }, true},
		{"Unknown hashing", func(c *Config) { c.PasswordHashing = "md5" }, true},
		{"Bcrypt hashing", func(c *Config) { c.PasswordHashing = HashingBcrypt }, false},
		{"Zero avatar bytes", func(c *Config) { c.AvatarMaxBytes = 0 }, true},
		{"Negative avatar pixels", func(c *Config) { c.AvatarMaxPixels = -1 }, true},
		{"Production memory backend", func(c *Config) { c.Env = "production" }, true},
		{"Production postgres default password", func(c *Config) {
			c.Env = "production"
			c.StoreBackend = BackendPostgres
			c.DBPassword = "password"
		}, true},
		{"Production plaintext passwords only warn", func(c *Config) {
			c.Env = "production"
			c.StoreBackend = BackendBadger
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_BACKEND", "  MEMORY ")
	t.Setenv("PASSWORD_HASHING", "Bcrypt")
	t.Setenv("FEATURE_FLAGS", "strict_guards=on")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, HashingBcrypt, cfg.PasswordHashing)
	assert.Equal(t, "psocial_db_v3", cfg.StoreKey)
	assert.Equal(t, "strict_guards=on", cfg.FeatureFlags)
	assert.Equal(t, 256, cfg.AvatarMaxDimension)
	assert.Equal(t, 16_000_000, cfg.AvatarMaxPixels)
}

func TestLoadConfig_MissingProfileFile(t *testing.T) {
	defer viper.Reset()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("APP_ENV", "staging")

	_, err = LoadConfig()
	assert.Error(t, err)
}
