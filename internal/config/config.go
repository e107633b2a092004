package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	JWT       JWTConfig       `yaml:"jwt"`
	Video     VideoConfig     `yaml:"video"`
	Platform  PlatformConfig  `yaml:"platform"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings. When Host is
// empty the server falls back to the in-memory store (development only).
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// EmailConfig contains SendGrid settings
type EmailConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// JWTConfig contains auth token settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// VideoConfig selects and configures the video token provider.
// Provider is "livekit" (tokens signed locally with APIKey/APISecret) or
// "http" (tokens minted by POSTing to Endpoint).
type VideoConfig struct {
	Provider           string `yaml:"provider"`
	APIKey             string `yaml:"api_key"`
	APISecret          string `yaml:"api_secret"`
	Endpoint           string `yaml:"endpoint"`
	TokenTTLMinutes    int    `yaml:"token_ttl_minutes"`
	MintTimeoutSeconds int    `yaml:"mint_timeout_seconds"`
}

func (v VideoConfig) TokenTTL() time.Duration {
	return time.Duration(v.TokenTTLMinutes) * time.Minute
}

func (v VideoConfig) MintTimeout() time.Duration {
	return time.Duration(v.MintTimeoutSeconds) * time.Second
}

// PlatformConfig contains platform-wide switches
type PlatformConfig struct {
	// JoinRequestsEnabled is the kill switch for the whole join flow.
	JoinRequestsEnabled bool `yaml:"join_requests_enabled"`
}

// RateLimitConfig contains settings for the durable per-actor limiter and
// the in-process per-IP edge limiter.
type RateLimitConfig struct {
	JoinMaxRequests   int `yaml:"join_max_requests"`
	JoinWindowSeconds int `yaml:"join_window_seconds"`
	EdgeBurst         int `yaml:"edge_burst"`
	EdgePerSecond     int `yaml:"edge_per_second"`
}

func (r RateLimitConfig) JoinWindow() time.Duration {
	return time.Duration(r.JoinWindowSeconds) * time.Second
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	RemindPendingRequests  string `yaml:"remind_pending_requests"`
	PurgeRateLimitCounters string `yaml:"purge_rate_limit_counters"`
	// PendingReminderAgeHours is how old a pending request must be before
	// it appears in the creator reminder digest.
	PendingReminderAgeHours int `yaml:"pending_reminder_age_hours"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.FromEmail = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Video
	if val := os.Getenv("VIDEO_PROVIDER"); val != "" {
		c.Video.Provider = val
	}
	if val := os.Getenv("VIDEO_API_KEY"); val != "" {
		c.Video.APIKey = val
	}
	if val := os.Getenv("VIDEO_API_SECRET"); val != "" {
		c.Video.APISecret = val
	}
	if val := os.Getenv("VIDEO_ENDPOINT"); val != "" {
		c.Video.Endpoint = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation: an empty host selects the in-memory store, but
	// a partially configured database is a mistake.
	if c.Database.Host != "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Video validation
	switch c.Video.Provider {
	case "livekit":
		if c.Video.APIKey == "" || c.Video.APISecret == "" {
			return fmt.Errorf("livekit video provider requires api_key and api_secret")
		}
	case "http":
		if c.Video.Endpoint == "" {
			return fmt.Errorf("http video provider requires an endpoint")
		}
	case "":
		return fmt.Errorf("video provider is required (livekit or http)")
	default:
		return fmt.Errorf("unknown video provider: %s", c.Video.Provider)
	}
	if c.Video.TokenTTLMinutes == 0 {
		c.Video.TokenTTLMinutes = 15
	}
	if c.Video.MintTimeoutSeconds == 0 {
		c.Video.MintTimeoutSeconds = 8
	}

	// Rate limit defaults
	if c.RateLimit.JoinMaxRequests == 0 {
		c.RateLimit.JoinMaxRequests = 5
	}
	if c.RateLimit.JoinWindowSeconds == 0 {
		c.RateLimit.JoinWindowSeconds = 60
	}
	if c.RateLimit.EdgeBurst == 0 {
		c.RateLimit.EdgeBurst = 20
	}
	if c.RateLimit.EdgePerSecond == 0 {
		c.RateLimit.EdgePerSecond = 10
	}

	// Scheduler defaults
	if c.Scheduler.RemindPendingRequests == "" {
		c.Scheduler.RemindPendingRequests = "0 0 9 * * *" // 9 AM UTC daily
	}
	if c.Scheduler.PurgeRateLimitCounters == "" {
		c.Scheduler.PurgeRateLimitCounters = "0 15 * * * *" // hourly at :15
	}
	if c.Scheduler.PendingReminderAgeHours == 0 {
		c.Scheduler.PendingReminderAgeHours = 12
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
