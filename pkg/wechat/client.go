package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pickupwatch/pkg/config"
	"pickupwatch/pkg/logger"

	"go.uber.org/zap"
)

// Client posts to a WeChat Work group robot webhook
type Client struct {
	webhookURL   string
	httpClient   *http.Client
	maxRetries   int
	retryDelay   time.Duration
	mentionUsers []string
}

// NewClient creates a WeChat Work client
func NewClient(cfg *config.WeComConfig) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	retryDelay := time.Duration(cfg.RetryDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		webhookURL:   cfg.WebhookURL,
		httpClient:   &http.Client{Timeout: timeout},
		maxRetries:   maxRetries,
		retryDelay:   retryDelay,
		mentionUsers: cfg.MentionUsers,
	}
}

// SendText sends a text message, mentioning the configured users
func (c *Client) SendText(ctx context.Context, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	return c.sendMessage(ctx, &WebhookMessage{
		MsgType: MessageTypeText,
		Text: &TextMsg{
			Content:       content,
			MentionedList: c.mentionUsers,
		},
	})
}

// SendMarkdown sends a markdown message
func (c *Client) SendMarkdown(ctx context.Context, content string) error {
	return c.sendMessage(ctx, &WebhookMessage{
		MsgType:  MessageTypeMarkdown,
		Markdown: &MarkdownMsg{Content: content},
	})
}

// SendAvailability pushes the available-only report
func (c *Client) SendAvailability(ctx context.Context, report string) error {
	return c.SendText(ctx, report)
}

// SendFailure pushes a failed check
func (c *Client) SendFailure(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return c.SendText(ctx, fmt.Sprintf("Failed response. Error message: %v", err))
}

// TestConnection sends a short markdown message to the group
func (c *Client) TestConnection(ctx context.Context) error {
	return c.SendMarkdown(ctx, "**pickupwatch**: WeChat Work notifications are working")
}

// sendMessage sends msg with retries
func (c *Client) sendMessage(ctx context.Context, msg *WebhookMessage) error {
	var lastError error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		err := c.doSendMessage(ctx, msg)
		if err == nil {
			return nil
		}

		lastError = err
		if attempt < c.maxRetries {
			logger.Warn("WeChat Work message failed, retrying",
				zap.Duration("retry_delay", c.retryDelay),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries),
				zap.Error(err))
		}
	}

	return fmt.Errorf("%w (%d retries): %w", ErrRetryExceeded, c.maxRetries, lastError)
}

func (c *Client) doSendMessage(ctx context.Context, msg *WebhookMessage) error {
	if c.webhookURL == "" {
		return ErrWebhookURLEmpty
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var webhookResp WebhookResponse
	if err := json.Unmarshal(respBody, &webhookResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if !webhookResp.IsSuccess() {
		return &APIError{Code: webhookResp.ErrCode, Message: webhookResp.ErrMsg}
	}

	logger.Info("WeChat Work message sent successfully")
	return nil
}
