package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("REGISTRATION_SESSION_SECRET", "session-secret-for-tests")
	t.Setenv("DRAFT_SEAL_KEY", "0123456789abcdef0123456789abcdef")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 30*time.Second, cfg.ServerTimeout)
	assert.Equal(t, "memory", cfg.DraftStoreDriver)
	assert.Equal(t, time.Duration(0), cfg.DraftTTL, "drafts do not expire unless configured")
	assert.Equal(t, time.Duration(0), cfg.SessionTTL, "sessions do not expire unless configured")
	assert.Equal(t, time.Hour, cfg.StagingTTL)
	assert.Equal(t, 15*time.Second, cfg.MarketplaceAPITimeout)
	assert.Equal(t, "remote", cfg.UploadDriver)
	assert.Equal(t, 72*time.Hour, cfg.DocumentRetention)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.DBSource, "dbname=marketplace_onboarding")
	assert.Equal(t, int64(10<<20), cfg.UploadMaxFileBytes())
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DRAFT_STORE_DRIVER", "redis")
	t.Setenv("DRAFT_TTL_HOURS", "48")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://market.example.com, https://admin.example.com")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SOURCE", "file::memory:")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.DraftStoreDriver)
	assert.Equal(t, 48*time.Hour, cfg.DraftTTL)
	assert.Equal(t, []string{"https://market.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "file::memory:", cfg.DBSource)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("REGISTRATION_SESSION_SECRET", "")
	t.Setenv("DRAFT_SEAL_KEY", "0123456789abcdef0123456789abcdef")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGISTRATION_SESSION_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBDriver:          "postgres",
			DraftStoreDriver:  "memory",
			UploadDriver:      "remote",
			SessionSecret:     "secret",
			DraftSealKey:      "0123456789abcdef0123456789abcdef",
			MarketplaceAPIURL: "http://api.local",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad draft driver", mutate: func(c *Config) { c.DraftStoreDriver = "cookie" }, wantErr: "DRAFT_STORE_DRIVER"},
		{name: "bad upload driver", mutate: func(c *Config) { c.UploadDriver = "s3" }, wantErr: "UPLOAD_DRIVER"},
		{name: "bad db driver", mutate: func(c *Config) { c.DBDriver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "short seal key", mutate: func(c *Config) { c.DraftSealKey = "short" }, wantErr: "DRAFT_SEAL_KEY"},
		{name: "no api url", mutate: func(c *Config) { c.MarketplaceAPIURL = " " }, wantErr: "MARKETPLACE_API_URL"},
		{name: "missing firebase key file", mutate: func(c *Config) { c.FirebaseServiceAccountKeyPath = "/nonexistent/key.json" }, wantErr: "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
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
