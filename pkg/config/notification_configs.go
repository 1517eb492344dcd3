package config

import "fmt"

// TelegramConfig represents Telegram bot notification configuration
type TelegramConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	BotToken string `json:"bot_token" yaml:"bot_token"`
	ChatID   string `json:"chat_id" yaml:"chat_id"`
	Timeout  int    `json:"timeout" yaml:"timeout"`   // seconds
	APIURL   string `json:"api_url" yaml:"api_url"`   // Bot API base, without the bot token path
	OnError  bool   `json:"on_error" yaml:"on_error"` // Also push failed checks
}

// NewTelegramConfig creates Telegram settings, using environment variables to fill default values
func NewTelegramConfig() *TelegramConfig {
	token := getEnv("TELEGRAM_BOT_TOKEN", "")
	return &TelegramConfig{
		Enabled:  getEnvBool("TELEGRAM_ENABLED", token != ""),
		BotToken: token,
		ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		Timeout:  getEnvInt("TELEGRAM_TIMEOUT", 10),
		APIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		OnError:  getEnvBool("TELEGRAM_ON_ERROR", true),
	}
}

// Validate validates Telegram configuration
func (tc *TelegramConfig) Validate() error {
	if !tc.Enabled {
		return nil
	}

	if tc.BotToken == "" {
		return ErrMissingRequired
	}

	if tc.ChatID == "" {
		return ErrMissingRequired
	}

	if tc.Timeout <= 0 {
		tc.Timeout = 10
	}

	if tc.APIURL == "" {
		tc.APIURL = "https://api.telegram.org"
	}

	return nil
}

// WeComConfig represents a WeChat Work group robot webhook
type WeComConfig struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	WebhookURL   string   `json:"webhook_url" yaml:"webhook_url"`
	MentionUsers []string `json:"mention_users,omitempty" yaml:"mention_users,omitempty"`
	MaxRetries   int      `json:"max_retries" yaml:"max_retries"`
	RetryDelayMs int      `json:"retry_delay_ms" yaml:"retry_delay_ms"`
	Timeout      int      `json:"timeout" yaml:"timeout"`   // seconds
	OnError      bool     `json:"on_error" yaml:"on_error"` // Also push failed checks
}

// NewWeComConfig creates WeChat Work settings, using environment variables to fill default values
func NewWeComConfig() *WeComConfig {
	webhook := getEnv("WECOM_WEBHOOK_URL", "")
	return &WeComConfig{
		Enabled:      getEnvBool("WECOM_ENABLED", webhook != ""),
		WebhookURL:   webhook,
		MaxRetries:   getEnvInt("WECOM_MAX_RETRIES", 3),
		RetryDelayMs: 2000,
		Timeout:      30,
		OnError:      getEnvBool("WECOM_ON_ERROR", true),
	}
}

// Validate validates WeChat Work configuration
func (wc *WeComConfig) Validate() error {
	if !wc.Enabled {
		return nil
	}
	if wc.WebhookURL == "" {
		return ErrMissingRequired
	}
	if wc.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidValue)
	}
	return validateURL("webhook_url", wc.WebhookURL)
}
