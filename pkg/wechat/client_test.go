package wechat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pickupwatch/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookServer struct {
	*httptest.Server
	calls    atomic.Int32
	mu       sync.Mutex
	messages []WebhookMessage
}

// newWebhookServer answers with replies in order, repeating the last one
func newWebhookServer(t *testing.T, replies ...string) *webhookServer {
	t.Helper()
	ws := &webhookServer{}
	ws.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg WebhookMessage
		_ = json.NewDecoder(r.Body).Decode(&msg)

		ws.mu.Lock()
		ws.messages = append(ws.messages, msg)
		ws.mu.Unlock()

		n := int(ws.calls.Add(1)) - 1
		reply := replies[min(n, len(replies)-1)]
		if reply == "" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(ws.Close)
	return ws
}

func (ws *webhookServer) sent() []WebhookMessage {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return append([]WebhookMessage(nil), ws.messages...)
}

func testClient(url string, retries int) *Client {
	return NewClient(&config.WeComConfig{
		Enabled:      true,
		WebhookURL:   url,
		MentionUsers: []string{"@all"},
		MaxRetries:   retries,
		RetryDelayMs: 10,
		Timeout:      5,
	})
}

func TestSendAvailability(t *testing.T) {
	ws := newWebhookServer(t, `{"errcode":0,"errmsg":"ok"}`)

	require.NoError(t, testClient(ws.URL, 0).SendAvailability(context.Background(), "[AVAILABLE IN USA STORES]"))

	messages := ws.sent()
	require.Len(t, messages, 1)
	assert.Equal(t, MessageTypeText, messages[0].MsgType)
	require.NotNil(t, messages[0].Text)
	assert.Equal(t, "[AVAILABLE IN USA STORES]", messages[0].Text.Content)
	assert.Equal(t, []string{"@all"}, messages[0].Text.MentionedList)
}

func TestSendFailure(t *testing.T) {
	ws := newWebhookServer(t, `{"errcode":0,"errmsg":"ok"}`)
	c := testClient(ws.URL, 0)

	require.NoError(t, c.SendFailure(context.Background(), errors.New("status 541")))
	require.NoError(t, c.SendFailure(context.Background(), nil))
	require.NoError(t, c.SendText(context.Background(), " "))

	messages := ws.sent()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text.Content, "status 541")
}

func TestSendRetries(t *testing.T) {
	ws := newWebhookServer(t, "", `{"errcode":0,"errmsg":"ok"}`)

	require.NoError(t, testClient(ws.URL, 2).SendText(context.Background(), "hello"))
	assert.Equal(t, int32(2), ws.calls.Load())
}

func TestSendRetriesExhausted(t *testing.T) {
	ws := newWebhookServer(t, `{"errcode":93000,"errmsg":"invalid webhook url"}`)

	err := testClient(ws.URL, 1).SendText(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrRetryExceeded)
	assert.ErrorIs(t, err, ErrAPIError)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 93000, apiErr.Code)
	assert.Equal(t, int32(2), ws.calls.Load())
}

func TestSendHTTPError(t *testing.T) {
	ws := newWebhookServer(t, "")

	err := testClient(ws.URL, 0).SendMarkdown(context.Background(), "**hello**")
	assert.ErrorIs(t, err, ErrHTTPStatusError)
}

func TestSendWithoutWebhook(t *testing.T) {
	err := testClient("", 0).SendText(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrWebhookURLEmpty)
}

func TestSendCancelledDuringRetry(t *testing.T) {
	ws := newWebhookServer(t, "")
	c := NewClient(&config.WeComConfig{WebhookURL: ws.URL, MaxRetries: 3, RetryDelayMs: int(time.Hour / time.Millisecond)})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.SendText(ctx, "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), ws.calls.Load())
}

func TestTestConnectionSendsMarkdown(t *testing.T) {
	ws := newWebhookServer(t, `{"errcode":0,"errmsg":"ok"}`)

	require.NoError(t, testClient(ws.URL, 0).TestConnection(context.Background()))

	sent := ws.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, MessageTypeMarkdown, sent[0].MsgType)
	require.NotNil(t, sent[0].Markdown)
	assert.Contains(t, sent[0].Markdown.Content, "pickupwatch")
	assert.Nil(t, sent[0].Text)
}
