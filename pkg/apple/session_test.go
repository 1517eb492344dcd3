package apple

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

	"pickupwatch/pkg/challenge"
	"pickupwatch/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handshakeServer struct {
	*httptest.Server
	task      string
	requests  atomic.Int32
	noCookies atomic.Bool

	mu         sync.Mutex
	posted     map[string]json.RawMessage
	postCookie string
}

func (hs *handshakeServer) submission() (map[string]json.RawMessage, string) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return hs.posted, hs.postCookie
}

func newHandshakeServer(t *testing.T, task string) *handshakeServer {
	t.Helper()
	hs := &handshakeServer{task: task}

	mux := http.NewServeMux()
	mux.HandleFunc("/shop/address/cookie", func(w http.ResponseWriter, r *http.Request) {
		hs.requests.Add(1)
		if !hs.noCookies.Load() {
			w.Header().Add("Set-Cookie", "dssid2=abc; Path=/; Secure")
			w.Header().Add("Set-Cookie", "as_sfa=xyz; Path=/")
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/shop/shld/work/v1/q", func(w http.ResponseWriter, r *http.Request) {
		hs.requests.Add(1)
		switch r.Method {
		case http.MethodGet:
			if r.Header.Get("Cookie") != "dssid2=abc; as_sfa=xyz" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			_, _ = io.WriteString(w, hs.task)
		case http.MethodPost:
			var posted map[string]json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			hs.mu.Lock()
			hs.posted = posted
			hs.postCookie = r.Header.Get("Cookie")
			hs.mu.Unlock()
			w.Header().Add("Set-Cookie", "shld_bt_ck=ok; Path=/; HttpOnly")
			_, _ = io.WriteString(w, "{}")
		}
	})

	hs.Server = httptest.NewServer(mux)
	t.Cleanup(hs.Close)
	return hs
}

func (hs *handshakeServer) appleConfig() *config.AppleConfig {
	return &config.AppleConfig{
		CookieURL:       hs.URL + "/shop/address/cookie",
		VerificationURL: hs.URL + "/shop/shld/work/v1/q?wd=0",
		UserAgent:       "test-agent",
		RequestTimeout:  5,
		MaxSolverVisits: 10_000,
	}
}

const sampleTask = `{"X":"x1","result":"12","low":"1","timeout":30,"signature":"sig","high":6,"parts":"2","t":"tok"}`

func TestBootstrapHandshake(t *testing.T) {
	hs := newHandshakeServer(t, sampleTask)
	session := NewSession(hs.appleConfig())

	cred, err := session.Bootstrap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "dssid2=abc; as_sfa=xyz; shld_bt_ck=ok", cred.Cookie)
	assert.Equal(t, []int64{2, 6}, cred.Solution)
	assert.False(t, cred.Static)
	assert.Equal(t, int32(3), hs.requests.Load())

	posted, postCookie := hs.submission()
	assert.Equal(t, "dssid2=abc; as_sfa=xyz", postCookie)

	require.NotNil(t, posted)
	assert.JSONEq(t, `"x1"`, string(posted["X"]))
	assert.JSONEq(t, `"12"`, string(posted["result"]))
	assert.JSONEq(t, `"1"`, string(posted["low"]))
	assert.JSONEq(t, `30`, string(posted["timeout"]))
	assert.JSONEq(t, `"sig"`, string(posted["signature"]))
	assert.JSONEq(t, `6`, string(posted["high"]))
	assert.JSONEq(t, `"2"`, string(posted["parts"]))
	assert.JSONEq(t, `"tok"`, string(posted["t"]))
	assert.JSONEq(t, `{"patSkip":true}`, string(posted["flagskv"]))
	assert.JSONEq(t, `[2,6]`, string(posted["number"]))
	assert.JSONEq(t, `1`, string(posted["took"]))
}

func TestBootstrapStaticCookie(t *testing.T) {
	hs := newHandshakeServer(t, sampleTask)
	cfg := hs.appleConfig()
	cfg.Cookie = "dssid2=static"

	cred, err := NewSession(cfg).Bootstrap(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "dssid2=static", cred.Cookie)
	assert.True(t, cred.Static)
	assert.Zero(t, hs.requests.Load())
}

func TestBootstrapFailures(t *testing.T) {
	t.Run("no cookies", func(t *testing.T) {
		hs := newHandshakeServer(t, sampleTask)
		hs.noCookies.Store(true)

		_, err := NewSession(hs.appleConfig()).Bootstrap(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrBootstrap)
		assert.ErrorIs(t, err, ErrNoCookies)
	})

	t.Run("empty challenge", func(t *testing.T) {
		hs := newHandshakeServer(t, `{}`)

		_, err := NewSession(hs.appleConfig()).Bootstrap(context.Background())
		assert.ErrorIs(t, err, ErrEmptyChallenge)
	})

	t.Run("unsolvable challenge", func(t *testing.T) {
		hs := newHandshakeServer(t, `{"result":"7","low":"2","high":"6","parts":"2"}`)

		_, err := NewSession(hs.appleConfig()).Bootstrap(context.Background())
		assert.ErrorIs(t, err, challenge.ErrNotFound)
		posted, _ := hs.submission()
		assert.Nil(t, posted, "nothing may be submitted without a solution")
	})

	t.Run("malformed challenge field", func(t *testing.T) {
		hs := newHandshakeServer(t, `{"result":"twelve","low":"1","high":"6","parts":"2"}`)

		_, err := NewSession(hs.appleConfig()).Bootstrap(context.Background())
		assert.ErrorIs(t, err, challenge.ErrInput)
		assert.False(t, errors.Is(err, challenge.ErrNotFound))
	})

	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, "down")
		}))
		defer srv.Close()

		cfg := &config.AppleConfig{CookieURL: srv.URL, VerificationURL: srv.URL, UserAgent: "ua", RequestTimeout: 5}
		_, err := NewSession(cfg).Bootstrap(context.Background())

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
		assert.Equal(t, "down", httpErr.Body)
	})
}

func TestBootstrapStepDelay(t *testing.T) {
	hs := newHandshakeServer(t, sampleTask)
	cfg := hs.appleConfig()
	cfg.StepDelayMs = 50

	start := time.Now()
	_, err := NewSession(cfg).Bootstrap(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestBootstrapCancelledContext(t *testing.T) {
	hs := newHandshakeServer(t, sampleTask)
	cfg := hs.appleConfig()
	cfg.StepDelayMs = 10_000

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewSession(cfg).Bootstrap(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBootstrap)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{`"42"`, 42, false},
		{`42`, 42, false},
		{`" -7 "`, -7, false},
		{`null`, 0, true},
		{``, 0, true},
		{`"4.5"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		got, err := parseDecimal(json.RawMessage(tt.raw))
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
