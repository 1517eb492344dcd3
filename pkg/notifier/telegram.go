package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pickupwatch/pkg/config"
	"pickupwatch/pkg/logger"

	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("telegram bot token or chat ID not configured")
	ErrAPI           = errors.New("telegram API error")
)

// TelegramNotifier handles Telegram notifications
type TelegramNotifier struct {
	config     *config.TelegramConfig
	httpClient *http.Client
}

// TelegramMessage represents a message to be sent via Telegram
type TelegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// TelegramResponse represents Telegram API response
type TelegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// NewTelegramNotifier creates a new Telegram notifier
func NewTelegramNotifier(cfg *config.TelegramConfig) *TelegramNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10
	}
	return &TelegramNotifier{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// SendMessage sends a plain text message via Telegram
func (t *TelegramNotifier) SendMessage(ctx context.Context, message string) error {
	if !t.config.Enabled {
		logger.Debug("Telegram notifications disabled")
		return nil
	}

	if t.config.BotToken == "" || t.config.ChatID == "" {
		logger.Warn("Telegram bot token or chat ID not configured")
		return ErrNotConfigured
	}

	if strings.TrimSpace(message) == "" {
		return nil
	}

	return t.sendTelegramMessage(ctx, &TelegramMessage{
		ChatID: t.config.ChatID,
		Text:   message,
	})
}

// SendAvailability pushes the available-only report
func (t *TelegramNotifier) SendAvailability(ctx context.Context, report string) error {
	return t.SendMessage(ctx, report)
}

// SendFailure pushes a failed check
func (t *TelegramNotifier) SendFailure(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return t.SendMessage(ctx, fmt.Sprintf("Failed response. Error message: %v", err))
}

// sendTelegramMessage sends message to Telegram API
func (t *TelegramNotifier) sendTelegramMessage(ctx context.Context, message *TelegramMessage) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.config.APIURL, "/"), t.config.BotToken)

	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	logger.Debug("Sending Telegram message",
		zap.String("chat_id", message.ChatID),
		zap.String("text", preview(message.Text, 100)))

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var telegramResp TelegramResponse
	if err := json.NewDecoder(resp.Body).Decode(&telegramResp); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !telegramResp.OK {
		return fmt.Errorf("%w: %s (code: %d)", ErrAPI, telegramResp.Description, telegramResp.ErrorCode)
	}

	logger.Info("Telegram message sent successfully")
	return nil
}

// TestConnection sends a short test message to the configured chat
func (t *TelegramNotifier) TestConnection(ctx context.Context) error {
	if !t.config.Enabled {
		return fmt.Errorf("telegram notifications are disabled")
	}

	return t.SendMessage(ctx, "pickupwatch: Telegram notifications are working")
}

// preview cuts s to at most n runes
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
