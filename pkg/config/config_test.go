package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	path := writeConfig(t, "auth:\n  jwt_secret: from-file\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.True(t, cfg.Auth.RequireEmailVerification)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, int64(250*1024), cfg.Storage.MaxFileBytes)
	assert.Equal(t, "postgres", cfg.Analytics.Driver)
	assert.Equal(t, time.Minute, cfg.Analytics.DashboardTTL)
	assert.Equal(t, "gemini", cfg.AI.Provider)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "8081")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("REQUIRE_EMAIL_VERIFICATION", "false")
	path := writeConfig(t, "auth:\n  jwt_secret: from-file\nserver:\n  port: 9000\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Auth.RequireEmailVerification)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Auth:      AuthConfig{JWTSecret: "secret"},
			Storage:   StorageConfig{Driver: "local"},
			Analytics: AnalyticsConfig{Driver: "postgres"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret"},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "ftp" }, "unsupported storage driver"},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = "s3" }, "s3_bucket"},
		{"unknown analytics driver", func(c *Config) { c.Analytics.Driver = "sqlite" }, "unsupported analytics driver"},
		{"mongo without uri", func(c *Config) { c.Analytics.Driver = "mongo" }, "mongo.uri"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "resumehub", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=resumehub sslmode=disable TimeZone=UTC", d.DSN())
}
