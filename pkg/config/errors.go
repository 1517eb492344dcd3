package config

import "errors"

// Configuration-related error definitions using sentinel errors pattern
var (
	// Generic errors
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidFormat  = errors.New("invalid configuration file format")

	// Configuration validation errors
	ErrMissingRequired = errors.New("missing required configuration item")
	ErrInvalidValue    = errors.New("invalid configuration value")

	// Section errors
	ErrAppleConfig    = errors.New("apple storefront configuration error")
	ErrCatalogConfig  = errors.New("catalog configuration error")
	ErrTelegramConfig = errors.New("telegram notification configuration error")
	ErrWeComConfig    = errors.New("wechat work notification configuration error")
	ErrWatchConfig    = errors.New("watch configuration error")
	ErrServerConfig   = errors.New("server configuration error")
	ErrInvalidCron    = errors.New("invalid cron expression")
)
