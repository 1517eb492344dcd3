package config

import (
	"fmt"
	"strings"
)

// AppConfig represents application configuration settings
type AppConfig struct {
	LogLevel    string `json:"log_level" yaml:"log_level"`
	LogFile     string `json:"log_file" yaml:"log_file"`
	Environment string `json:"environment" yaml:"environment"` // development or production
}

// AppleConfig holds storefront session settings
type AppleConfig struct {
	CookieURL       string `json:"cookie_url" yaml:"cookie_url"`
	VerificationURL string `json:"verification_url" yaml:"verification_url"`
	UserAgent       string `json:"user_agent" yaml:"user_agent"`
	Cookie          string `json:"cookie,omitempty" yaml:"cookie,omitempty"` // Static cookie, skips the handshake
	StepDelayMs     int    `json:"step_delay_ms" yaml:"step_delay_ms"`       // Minimum gap between handshake requests
	RequestTimeout  int    `json:"request_timeout" yaml:"request_timeout"`   // seconds
	MaxSolverVisits int    `json:"max_solver_visits" yaml:"max_solver_visits"`
}

// SelectionConfig picks what to check when no flags are given
type SelectionConfig struct {
	Country string `json:"country" yaml:"country"` // Name or index
	Models  string `json:"models" yaml:"models"`   // Space separated model selectors
	Zip     string `json:"zip" yaml:"zip"`         // Postal code or selector
}

// WatchConfig controls repeated checks
type WatchConfig struct {
	Schedule     string `json:"schedule" yaml:"schedule"`           // Cron expression or descriptor
	NotifyOnce   bool   `json:"notify_once" yaml:"notify_once"`     // Push only when availability changes
	CheckTimeout int    `json:"check_timeout" yaml:"check_timeout"` // seconds
}

// ServerConfig represents the status server settings
type ServerConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port" yaml:"port"`
}

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"

// NewAppConfig creates an application configuration with default values populated from environment variables
func NewAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", "logs/logs.log"),
		Environment: getEnv("APP_ENV", "production"),
	}
}

// NewAppleConfig creates storefront settings with default values populated from environment variables
func NewAppleConfig() *AppleConfig {
	return &AppleConfig{
		CookieURL:       getEnv("APPLE_COOKIE_URL", "https://www.apple.com/shop/address/cookie"),
		VerificationURL: getEnv("APPLE_VERIFICATION_URL", "https://www.apple.com/shop/shld/work/v1/q?wd=0"),
		UserAgent:       getEnv("APPLE_USER_AGENT", defaultUserAgent),
		Cookie:          getEnv("APPLE_COOKIE", ""),
		StepDelayMs:     getEnvInt("APPLE_STEP_DELAY_MS", 1000),
		RequestTimeout:  getEnvInt("APPLE_REQUEST_TIMEOUT", 30),
		MaxSolverVisits: getEnvInt("APPLE_MAX_SOLVER_VISITS", 1_000_000),
	}
}

// NewSelectionConfig creates an empty selection populated from environment variables
func NewSelectionConfig() *SelectionConfig {
	return &SelectionConfig{
		Country: getEnv("PICKUP_COUNTRY", ""),
		Models:  getEnv("PICKUP_MODELS", ""),
		Zip:     getEnv("PICKUP_ZIP", ""),
	}
}

// NewWatchConfig creates watch settings with default values populated from environment variables
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		Schedule:     getEnv("WATCH_SCHEDULE", "@every 5m"),
		NotifyOnce:   getEnvBool("WATCH_NOTIFY_ONCE", true),
		CheckTimeout: getEnvInt("WATCH_CHECK_TIMEOUT", 120),
	}
}

// NewServerConfig creates a server configuration with default values populated from environment variables
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Enabled: getEnvBool("SERVER_ENABLED", false),
		Address: getEnv("SERVER_ADDRESS", "127.0.0.1"),
		Port:    getEnvInt("SERVER_PORT", 8080),
	}
}

// IsDevelopment reports whether console-only logging is wanted
func (ac *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(ac.Environment, "development")
}

// Validate validates the server configuration
func (sc *ServerConfig) Validate() error {
	if !sc.Enabled {
		return nil
	}
	if sc.Port <= 0 || sc.Port > 65535 {
		return fmt.Errorf("%w: port must be within 1-65535", ErrInvalidValue)
	}
	return nil
}

// ListenAddr returns host:port
func (sc *ServerConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", sc.Address, sc.Port)
}
