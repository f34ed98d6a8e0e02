// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`
	CORSOrigins   []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	DBAutoMigrate     bool          `mapstructure:"DB_AUTO_MIGRATE"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Registration session
	SessionSecret     string        `mapstructure:"REGISTRATION_SESSION_SECRET"`
	SessionTTL        time.Duration `mapstructure:"REGISTRATION_SESSION_TTL_HOURS"`
	SessionCookieName string        `mapstructure:"REGISTRATION_SESSION_COOKIE"`
	SessionSecure     bool          `mapstructure:"REGISTRATION_SESSION_SECURE_COOKIE"`

	// Draft store
	DraftStoreDriver string        `mapstructure:"DRAFT_STORE_DRIVER"` // memory | redis | database
	DraftTTL         time.Duration `mapstructure:"DRAFT_TTL_HOURS"`    // 0 keeps drafts until submitted
	DraftSealKey     string        `mapstructure:"DRAFT_SEAL_KEY"`
	StagingTTL       time.Duration `mapstructure:"STAGING_TTL_MINUTES"`

	// Redis
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	// Marketplace API
	MarketplaceAPIURL     string        `mapstructure:"MARKETPLACE_API_URL"`
	MarketplaceAPITimeout time.Duration `mapstructure:"MARKETPLACE_API_TIMEOUT_SECONDS"`

	// Document uploads
	UploadDriver          string        `mapstructure:"UPLOAD_DRIVER"` // remote | local
	UploadStoragePath     string        `mapstructure:"UPLOAD_STORAGE_PATH"`
	UploadPublicBaseURL   string        `mapstructure:"UPLOAD_PUBLIC_BASE_URL"`
	UploadMaxFileMB       int64         `mapstructure:"UPLOAD_MAX_FILE_MB"`
	DocumentRetention     time.Duration `mapstructure:"DOCUMENT_RETENTION_HOURS"`
	DocumentSweepSchedule string        `mapstructure:"DOCUMENT_SWEEP_SCHEDULE"`

	// Rate limiting (requests per second per client, burst)
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	// Admin
	AdminAPIKey string `mapstructure:"ADMIN_API_KEY"`

	// Firebase Configuration
	FirebaseServiceAccountKeyPath string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseProjectID             string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseReviewTopic           string `mapstructure:"FIREBASE_REVIEW_TOPIC"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SessionTTL = time.Duration(v.GetInt("REGISTRATION_SESSION_TTL_HOURS")) * time.Hour
	cfg.DraftTTL = time.Duration(v.GetInt("DRAFT_TTL_HOURS")) * time.Hour
	cfg.StagingTTL = time.Duration(v.GetInt("STAGING_TTL_MINUTES")) * time.Minute
	cfg.MarketplaceAPITimeout = time.Duration(v.GetInt("MARKETPLACE_API_TIMEOUT_SECONDS")) * time.Second
	cfg.DocumentRetention = time.Duration(v.GetInt("DOCUMENT_RETENTION_HOURS")) * time.Hour
	cfg.CORSOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)
	if cfg.DBDriver == "sqlite" {
		cfg.DBSource = v.GetString("DB_SOURCE")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "marketplace_onboarding")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SOURCE", "file:onboarding.db?cache=shared")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("REGISTRATION_SESSION_SECRET", "")
	v.SetDefault("REGISTRATION_SESSION_TTL_HOURS", 0)
	v.SetDefault("REGISTRATION_SESSION_COOKIE", "reg_session")
	v.SetDefault("REGISTRATION_SESSION_SECURE_COOKIE", false)

	v.SetDefault("DRAFT_STORE_DRIVER", "memory")
	v.SetDefault("DRAFT_TTL_HOURS", 0)
	v.SetDefault("DRAFT_SEAL_KEY", "")
	v.SetDefault("STAGING_TTL_MINUTES", 60)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "onboarding")

	v.SetDefault("MARKETPLACE_API_URL", "http://localhost:5000/api")
	v.SetDefault("MARKETPLACE_API_TIMEOUT_SECONDS", 15)

	v.SetDefault("UPLOAD_DRIVER", "remote")
	v.SetDefault("UPLOAD_STORAGE_PATH", "./uploads")
	v.SetDefault("UPLOAD_PUBLIC_BASE_URL", "http://localhost:8080/uploads")
	v.SetDefault("UPLOAD_MAX_FILE_MB", 10)
	v.SetDefault("DOCUMENT_RETENTION_HOURS", 72)
	v.SetDefault("DOCUMENT_SWEEP_SCHEDULE", "@hourly")

	v.SetDefault("RATE_LIMIT_RPS", 2)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("ADMIN_API_KEY", "")

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", "")
	v.SetDefault("FIREBASE_REVIEW_TOPIC", "seller-verification-requests")
}

// Validate checks the settings that have no safe fallback.
func (c *Config) Validate() error {
	switch c.DraftStoreDriver {
	case "memory", "redis", "database":
	default:
		return fmt.Errorf("invalid DRAFT_STORE_DRIVER %q: must be one of memory, redis, database", c.DraftStoreDriver)
	}
	switch c.UploadDriver {
	case "remote", "local":
	default:
		return fmt.Errorf("invalid UPLOAD_DRIVER %q: must be remote or local", c.UploadDriver)
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be postgres or sqlite", c.DBDriver)
	}
	if strings.TrimSpace(c.SessionSecret) == "" {
		return fmt.Errorf("REGISTRATION_SESSION_SECRET is not set. It is required to sign registration sessions")
	}
	if len(c.DraftSealKey) < 32 {
		return fmt.Errorf("DRAFT_SEAL_KEY must be at least 32 characters long")
	}
	if strings.TrimSpace(c.MarketplaceAPIURL) == "" {
		return fmt.Errorf("MARKETPLACE_API_URL is not set")
	}
	if c.FirebaseServiceAccountKeyPath != "" {
		if _, err := os.Stat(c.FirebaseServiceAccountKeyPath); os.IsNotExist(err) {
			return fmt.Errorf("firebase service account key file specified in FIREBASE_SERVICE_ACCOUNT_KEY_PATH (%s) not found", c.FirebaseServiceAccountKeyPath)
		}
	}
	return nil
}

// UploadMaxFileBytes is the per-file size limit applied to multipart uploads.
func (c *Config) UploadMaxFileBytes() int64 {
	if c.UploadMaxFileMB <= 0 {
		return 10 << 20
	}
	return c.UploadMaxFileMB << 20
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
