package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// API is the REST boundary of the subscription backend
	API APIConfig

	// WebSocket is the push transport configuration
	WebSocket WebSocketConfig

	// Poll is the fallback poller configuration
	Poll PollConfig

	// Toast presentation configuration
	Toast ToastConfig

	// Ops is the local operational HTTP endpoint
	Ops OpsConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// APIConfig holds REST client configuration
type APIConfig struct {
	BaseURL           string
	Token             string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Burst             int
}

// WebSocketConfig holds push transport configuration
type WebSocketConfig struct {
	URL              string
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	PongWait         time.Duration
	WriteWait        time.Duration
	InitialBackoff   time.Duration
	MaxBackoff       time.Duration
}

// PollConfig holds fallback poller configuration
type PollConfig struct {
	Interval time.Duration
}

// ToastConfig holds toast presentation configuration
type ToastConfig struct {
	Capacity     int
	Duration     time.Duration
	LongDuration time.Duration // warnings and errors stay up longer
}

// OpsConfig holds the local ops HTTP endpoint configuration
type OpsConfig struct {
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	AllowedOrigins   []string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	// Admin selects the admin notification endpoints and the admin side
	// of ticket event routing.
	Admin bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:           os.Getenv("API_BASE_URL"),
			Token:             os.Getenv("API_TOKEN"),
			RequestTimeout:    getDurationOrDefault("API_REQUEST_TIMEOUT", 15*time.Second),
			RequestsPerSecond: getFloatOrDefault("API_RPS", 10),
			Burst:             getIntOrDefault("API_BURST", 20),
		},
		WebSocket: WebSocketConfig{
			URL:              os.Getenv("WS_URL"),
			HandshakeTimeout: getDurationOrDefault("WS_HANDSHAKE_TIMEOUT", 10*time.Second),
			PingInterval:     getDurationOrDefault("WS_PING_INTERVAL", 54*time.Second),
			PongWait:         getDurationOrDefault("WS_PONG_WAIT", 60*time.Second),
			WriteWait:        getDurationOrDefault("WS_WRITE_WAIT", 10*time.Second),
			InitialBackoff:   getDurationOrDefault("WS_INITIAL_BACKOFF", time.Second),
			MaxBackoff:       getDurationOrDefault("WS_MAX_BACKOFF", 30*time.Second),
		},
		Poll: PollConfig{
			Interval: getDurationOrDefault("POLL_INTERVAL", time.Minute),
		},
		Toast: ToastConfig{
			Capacity:     getIntOrDefault("TOAST_CAPACITY", 3),
			Duration:     getDurationOrDefault("TOAST_DURATION", 5*time.Second),
			LongDuration: getDurationOrDefault("TOAST_LONG_DURATION", 10*time.Second),
		},
		Ops: OpsConfig{
			Port:             getEnvOrDefault("OPS_PORT", ":8091"),
			ReadTimeout:      getDurationOrDefault("OPS_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:     getDurationOrDefault("OPS_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:      getDurationOrDefault("OPS_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout:  getDurationOrDefault("OPS_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:   getStringSliceOrDefault("OPS_ALLOWED_ORIGINS", []string{}),
			RateLimitEnabled: getBoolOrDefault("OPS_RATE_LIMIT_ENABLED", true),
			RateLimitRPS:     getFloatOrDefault("OPS_RATE_LIMIT_RPS", 10),
			RateLimitBurst:   getIntOrDefault("OPS_RATE_LIMIT_BURST", 20),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "console-realtime"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
			Admin:       getBoolOrDefault("CONSOLE_ADMIN", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	if c.API.BaseURL == "" {
		errs = append(errs, "API_BASE_URL is required")
	}

	if c.API.Token == "" {
		errs = append(errs, "API_TOKEN is required")
	}

	if c.WebSocket.URL == "" {
		errs = append(errs, "WS_URL is required")
	}

	// Logical validations
	if c.WebSocket.MaxBackoff < c.WebSocket.InitialBackoff {
		errs = append(errs, "WS_MAX_BACKOFF cannot be less than WS_INITIAL_BACKOFF")
	}

	if c.WebSocket.PingInterval >= c.WebSocket.PongWait {
		errs = append(errs, "WS_PING_INTERVAL must be less than WS_PONG_WAIT")
	}

	if c.Toast.Capacity < 1 {
		errs = append(errs, "TOAST_CAPACITY must be at least 1")
	}

	if c.Poll.Interval < time.Second {
		errs = append(errs, "POLL_INTERVAL must be at least 1s")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{API: %s, WS: %s, Token: [REDACTED], Ops: %s, Admin: %v, Environment: %s}",
		c.API.BaseURL,
		c.WebSocket.URL,
		c.Ops.Port,
		c.App.Admin,
		c.App.Environment,
	)
}
