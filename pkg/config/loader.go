package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads the configuration file at configPath.
// A missing file yields the built-in defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return getDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigNotFound, err)
	}

	// Decode over the defaults so keys missing from a present section keep them.
	// Countries replace the built-in catalog instead of merging into it.
	config := getDefaultConfig()
	config.Countries = nil
	ext := filepath.Ext(configPath)

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: JSON parsing failed: %v", ErrInvalidFormat, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: YAML parsing failed: %v", ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	config.fillDefaults()
	mergeEnvVars(config)
	return config, nil
}

// SaveConfig writes config to configPath, creating parent directories
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	ext := filepath.Ext(configPath)
	var data []byte
	var err error

	switch ext {
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		return fmt.Errorf("%w: unsupported config file format: %s", ErrInvalidFormat, ext)
	}

	if err != nil {
		return fmt.Errorf("config serialization failed: %w", err)
	}

	// 0600: the file may hold the bot token and a session cookie
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getDefaultConfigPath returns the first existing config file:
// current directory, then user config directory, then /etc
func getDefaultConfigPath() string {
	paths := []string{
		"./config.yaml",
		"./config.json",
		"./config/pickupwatch.yaml",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(homeDir, ".pickupwatch", "config.yaml"),
			filepath.Join(homeDir, ".pickupwatch", "config.json"),
		)
	}

	paths = append(paths,
		"/etc/pickupwatch/config.yaml",
		"/etc/pickupwatch/config.json",
	)

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "./config.yaml"
}

// mergeEnvVars lets environment variables override file values
func mergeEnvVars(config *Config) {
	mergeAppEnvVars(config)
	mergeAppleEnvVars(config)
	mergeSelectionEnvVars(config)
	mergeTelegramEnvVars(config)
	mergeWeComEnvVars(config)
	mergeWatchEnvVars(config)
	mergeServerEnvVars(config)
}

func mergeAppEnvVars(config *Config) {
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		config.App.LogLevel = logLevel
	}
	if logFile := os.Getenv("LOG_FILE"); logFile != "" {
		config.App.LogFile = logFile
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Environment = env
	}
}

func mergeAppleEnvVars(config *Config) {
	ac := config.Apple

	envMappings := map[string]interface{}{
		"APPLE_COOKIE_URL":        &ac.CookieURL,
		"APPLE_VERIFICATION_URL":  &ac.VerificationURL,
		"APPLE_USER_AGENT":        &ac.UserAgent,
		"APPLE_COOKIE":            &ac.Cookie,
		"APPLE_STEP_DELAY_MS":     &ac.StepDelayMs,
		"APPLE_REQUEST_TIMEOUT":   &ac.RequestTimeout,
		"APPLE_MAX_SOLVER_VISITS": &ac.MaxSolverVisits,
	}
	applyEnvMappings(envMappings)
}

func mergeSelectionEnvVars(config *Config) {
	sc := config.Selection

	applyEnvMappings(map[string]interface{}{
		"PICKUP_COUNTRY": &sc.Country,
		"PICKUP_MODELS":  &sc.Models,
		"PICKUP_ZIP":     &sc.Zip,
	})
}

func mergeTelegramEnvVars(config *Config) {
	tc := config.Telegram

	applyEnvMappings(map[string]interface{}{
		"TELEGRAM_BOT_TOKEN": &tc.BotToken,
		"TELEGRAM_CHAT_ID":   &tc.ChatID,
		"TELEGRAM_TIMEOUT":   &tc.Timeout,
		"TELEGRAM_API_URL":   &tc.APIURL,
	})

	if enabled := os.Getenv("TELEGRAM_ENABLED"); enabled != "" {
		tc.Enabled = enabled == "true" || enabled == "1"
	}
	if onError := os.Getenv("TELEGRAM_ON_ERROR"); onError != "" {
		tc.OnError = onError == "true" || onError == "1"
	}
}

func mergeWeComEnvVars(config *Config) {
	wc := config.WeCom

	applyEnvMappings(map[string]interface{}{
		"WECOM_WEBHOOK_URL": &wc.WebhookURL,
		"WECOM_MAX_RETRIES": &wc.MaxRetries,
	})

	if enabled := os.Getenv("WECOM_ENABLED"); enabled != "" {
		wc.Enabled = enabled == "true" || enabled == "1"
	}
	if onError := os.Getenv("WECOM_ON_ERROR"); onError != "" {
		wc.OnError = onError == "true" || onError == "1"
	}
}

func mergeWatchEnvVars(config *Config) {
	wc := config.Watch

	applyEnvMappings(map[string]interface{}{
		"WATCH_SCHEDULE":      &wc.Schedule,
		"WATCH_CHECK_TIMEOUT": &wc.CheckTimeout,
	})

	if once := os.Getenv("WATCH_NOTIFY_ONCE"); once != "" {
		wc.NotifyOnce = once == "true" || once == "1"
	}
}

func mergeServerEnvVars(config *Config) {
	if port := getEnvInt("SERVER_PORT", 0); port != 0 {
		config.Server.Port = port
	}
	if address := os.Getenv("SERVER_ADDRESS"); address != "" {
		config.Server.Address = address
	}
	if enabled := os.Getenv("SERVER_ENABLED"); enabled != "" {
		config.Server.Enabled = enabled == "true" || enabled == "1"
	}
}

func applyEnvMappings(envMappings map[string]interface{}) {
	for envKey, fieldPtr := range envMappings {
		value := os.Getenv(envKey)
		if value == "" {
			continue
		}
		switch ptr := fieldPtr.(type) {
		case *int:
			if intVal, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				*ptr = intVal
			}
		case *string:
			*ptr = value
		}
	}
}
