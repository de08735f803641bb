package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/go-playground/validator.v9"

	"github.com/nahidhasan98/catalog-sync-webhook/internal/validation"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Logging configuration
	Log LogConfig

	// Security configuration
	Security SecurityConfig

	// Webhook authentication
	Webhook WebhookConfig

	// Repository the catalog is read from
	Source SourceConfig

	// Content API the catalog is written to
	Destination DestinationConfig

	// Plan execution
	Sync SyncConfig

	// WhatsApp sync report notifications
	WhatsApp WhatsAppConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host            string
	Port            int           `validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string `validate:"oneof=json text"`
}

// SecurityConfig holds request limiting configuration
type SecurityConfig struct {
	RateLimitPerMinute int   `validate:"min=0"` // 0 disables rate limiting
	MaxBodyBytes       int64 `validate:"gt=0"`
}

// WebhookConfig holds push signature settings
type WebhookConfig struct {
	RequireSignature bool
	Secret           string
}

// SourceConfig describes where changed files are fetched from
type SourceConfig struct {
	URL    string `validate:"omitempty,url"` // e.g. https://api.github.com/repos/org/catalog/contents/
	Branch string
	Token  string
}

// DestinationConfig describes the content API
type DestinationConfig struct {
	URL            string        `validate:"omitempty,url"`
	ServingBaseURL string        `validate:"omitempty,url"`
	Timeout        time.Duration `validate:"gt=0"`

	// Static bearer token
	Token string

	// OAuth2 client credentials, used instead of Token when TokenURL is set
	TokenURL     string `validate:"omitempty,url"`
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// SyncConfig holds plan execution settings
type SyncConfig struct {
	Parallelism    int `validate:"min=1,max=64"`
	AbortOnFailure bool
	Timeout        time.Duration `validate:"gt=0"`
}

// WhatsAppConfig holds the optional notifier configuration
type WhatsAppConfig struct {
	Enabled    bool
	DBDriver   string
	DBDSN      string
	LogLevel   string
	DeviceName string // Custom device name that appears in WhatsApp linked devices
	Recipient  string // JID that receives sync reports
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	// Try to load .env file (ignore errors - it's optional)
	_ = godotenv.Load(".env")

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", ""),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 3*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			MaxBodyBytes:       int64(getEnvAsInt("MAX_BODY_BYTES", 5<<20)),
		},
		Webhook: WebhookConfig{
			RequireSignature: getEnvAsBool("WEBHOOK_REQUIRE_SIGNATURE", getEnvAsBool("GITHUB_WEBHOOK_GIT_USE_AUTH", false)),
			Secret:           getEnv("WEBHOOK_SECRET", ""),
		},
		Source: SourceConfig{
			URL:    getEnv("SOURCE_URL", getEnv("GITHUB_WEBHOOK_GIT_URL", "")),
			Branch: getEnv("SOURCE_BRANCH", getEnv("GITHUB_WEBHOOK_GIT_BRANCH", "")),
			Token:  getEnv("SOURCE_TOKEN", ""),
		},
		Destination: DestinationConfig{
			URL:            getEnv("DESTINATION_URL", getEnv("GITHUB_WEBHOOK_opendesk_collection__API_URL", "")),
			ServingBaseURL: getEnv("SERVING_BASE_URL", ""),
			Timeout:        getEnvAsDuration("DESTINATION_TIMEOUT", 30*time.Second),
			Token:          getEnv("DESTINATION_TOKEN", getEnv("GITHUB_WEBHOOK_opendesk_collection__SECRET_TOKEN", "")),
			TokenURL:       getEnv("DESTINATION_TOKEN_URL", ""),
			ClientID:       getEnv("DESTINATION_CLIENT_ID", ""),
			ClientSecret:   getEnv("DESTINATION_CLIENT_SECRET", ""),
			Scopes:         getEnvAsSlice("DESTINATION_SCOPES", nil),
		},
		Sync: SyncConfig{
			Parallelism:    getEnvAsInt("SYNC_PARALLELISM", 4),
			AbortOnFailure: getEnvAsBool("SYNC_ABORT_ON_FAILURE", true),
			Timeout:        getEnvAsDuration("SYNC_TIMEOUT", 2*time.Minute),
		},
		WhatsApp: WhatsAppConfig{
			Enabled:    getEnvAsBool("WHATSAPP_ENABLED", false),
			DBDriver:   getEnv("DB_DRIVER", "sqlite3"),
			DBDSN:      getEnv("DB_DSN", "file:catalogsync.db?_foreign_keys=on"),
			LogLevel:   getEnv("WHATSAPP_LOG_LEVEL", "INFO"),
			DeviceName: getEnv("WHATSAPP_DEVICE_NAME", "macOS"),
			Recipient:  getEnv("WHATSAPP_RECIPIENT", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. Missing source or destination settings are
// not an error here; see MissingSyncSetting.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Webhook.RequireSignature && c.Webhook.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required when signatures are required")
	}

	if c.Destination.TokenURL != "" && (c.Destination.ClientID == "" || c.Destination.ClientSecret == "") {
		return fmt.Errorf("DESTINATION_CLIENT_ID and DESTINATION_CLIENT_SECRET are required with DESTINATION_TOKEN_URL")
	}

	if c.WhatsApp.Enabled {
		if c.WhatsApp.DBDriver == "" || c.WhatsApp.DBDSN == "" {
			return fmt.Errorf("database driver and DSN are required for WhatsApp notifications")
		}
		if !validation.New().IsValidJID(c.WhatsApp.Recipient) {
			return fmt.Errorf("invalid WHATSAPP_RECIPIENT: '%s'", c.WhatsApp.Recipient)
		}
	}

	return nil
}

// MissingSyncSetting returns the name of the first required sync setting that is
// unset, or "" when the relay can run
func (c *Config) MissingSyncSetting() string {
	switch {
	case c.Source.URL == "":
		return "SOURCE_URL"
	case c.Source.Branch == "":
		return "SOURCE_BRANCH"
	case c.Destination.URL == "":
		return "DESTINATION_URL"
	}
	return ""
}

// Address returns the server address in the format host:port
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Helper functions to get environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	// Split by comma and trim spaces
	values := make([]string, 0)
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}

	return values
}
