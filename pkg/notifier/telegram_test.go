package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"pickupwatch/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type telegramServer struct {
	*httptest.Server
	mu       sync.Mutex
	path     string
	messages []TelegramMessage
}

func newTelegramServer(t *testing.T, reply string) *telegramServer {
	t.Helper()
	ts := &telegramServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg TelegramMessage
		_ = json.NewDecoder(r.Body).Decode(&msg)

		ts.mu.Lock()
		ts.path = r.URL.Path
		ts.messages = append(ts.messages, msg)
		ts.mu.Unlock()

		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *telegramServer) sent() (string, []TelegramMessage) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.path, append([]TelegramMessage(nil), ts.messages...)
}

func testConfig(apiURL string) *config.TelegramConfig {
	return &config.TelegramConfig{
		Enabled:  true,
		BotToken: "123:abc",
		ChatID:   "42",
		Timeout:  5,
		APIURL:   apiURL,
	}
}

func TestSendMessage(t *testing.T) {
	ts := newTelegramServer(t, `{"ok":true}`)
	n := NewTelegramNotifier(testConfig(ts.URL + "/"))

	require.NoError(t, n.SendAvailability(context.Background(), "[AVAILABLE IN USA STORES]"))

	path, messages := ts.sent()
	assert.Equal(t, "/bot123:abc/sendMessage", path)
	require.Len(t, messages, 1)
	assert.Equal(t, "42", messages[0].ChatID)
	assert.Equal(t, "[AVAILABLE IN USA STORES]", messages[0].Text)
	assert.Empty(t, messages[0].ParseMode)
}

func TestSendFailure(t *testing.T) {
	ts := newTelegramServer(t, `{"ok":true}`)
	n := NewTelegramNotifier(testConfig(ts.URL))

	require.NoError(t, n.SendFailure(context.Background(), errors.New("status 541")))
	require.NoError(t, n.SendFailure(context.Background(), nil))

	_, messages := ts.sent()
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].Text, "status 541")
}

func TestSendMessageAPIError(t *testing.T) {
	ts := newTelegramServer(t, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	n := NewTelegramNotifier(testConfig(ts.URL))

	err := n.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrAPI)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendMessageDisabledOrIncomplete(t *testing.T) {
	ts := newTelegramServer(t, `{"ok":true}`)

	disabled := testConfig(ts.URL)
	disabled.Enabled = false
	assert.NoError(t, NewTelegramNotifier(disabled).SendMessage(context.Background(), "hello"))

	missing := testConfig(ts.URL)
	missing.ChatID = ""
	assert.ErrorIs(t, NewTelegramNotifier(missing).SendMessage(context.Background(), "hello"), ErrNotConfigured)

	assert.NoError(t, NewTelegramNotifier(testConfig(ts.URL)).SendMessage(context.Background(), "  "))

	_, messages := ts.sent()
	assert.Empty(t, messages)
}

func TestPreviewKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("é", 99) + "🎉 Fifth Avenue"

	got := preview(text, 100)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 100, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "🎉"))

	assert.Equal(t, "short", preview("short", 100))
}
