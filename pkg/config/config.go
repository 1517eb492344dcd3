package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the root configuration
type Config struct {
	App       *AppConfig                `json:"app" yaml:"app"`
	Apple     *AppleConfig              `json:"apple" yaml:"apple"`
	Selection *SelectionConfig          `json:"selection" yaml:"selection"`
	Countries map[string]*CountryConfig `json:"countries" yaml:"countries"`
	Telegram  *TelegramConfig           `json:"telegram" yaml:"telegram"`
	WeCom     *WeComConfig              `json:"wecom" yaml:"wecom"`
	Watch     *WatchConfig              `json:"watch" yaml:"watch"`
	Server    *ServerConfig             `json:"server" yaml:"server"`
}

// getDefaultConfig returns a configuration where every section carries its defaults
func getDefaultConfig() *Config {
	return &Config{
		App:       NewAppConfig(),
		Apple:     NewAppleConfig(),
		Selection: NewSelectionConfig(),
		Countries: DefaultCountries(),
		Telegram:  NewTelegramConfig(),
		WeCom:     NewWeComConfig(),
		Watch:     NewWatchConfig(),
		Server:    NewServerConfig(),
	}
}

// Default returns the built-in configuration with environment overrides applied
func Default() *Config {
	return getDefaultConfig()
}

// fillDefaults replaces sections missing from a loaded file
func (c *Config) fillDefaults() {
	if c.App == nil {
		c.App = NewAppConfig()
	}
	if c.Apple == nil {
		c.Apple = NewAppleConfig()
	}
	if c.Selection == nil {
		c.Selection = NewSelectionConfig()
	}
	if len(c.Countries) == 0 {
		c.Countries = DefaultCountries()
	}
	if c.Telegram == nil {
		c.Telegram = NewTelegramConfig()
	}
	if c.WeCom == nil {
		c.WeCom = NewWeComConfig()
	}
	if c.Watch == nil {
		c.Watch = NewWatchConfig()
	}
	if c.Server == nil {
		c.Server = NewServerConfig()
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
