package apple

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pickupwatch/pkg/challenge"
	"pickupwatch/pkg/config"
	"pickupwatch/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Credential is a storefront session cookie ready for fulfillment requests
type Credential struct {
	Cookie    string    `json:"-"`
	Solution  []int64   `json:"solution,omitempty"`
	Static    bool      `json:"static"`
	CreatedAt time.Time `json:"created_at"`
}

// Session runs the cookie handshake against the storefront
type Session struct {
	cfg        *config.AppleConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	solver     *challenge.Solver
}

// SessionOption customizes a Session
type SessionOption func(*Session)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) SessionOption {
	return func(s *Session) {
		s.httpClient = client
	}
}

// NewSession creates a session bootstrapper
func NewSession(cfg *config.AppleConfig, opts ...SessionOption) *Session {
	s := &Session{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second},
		limiter:    newStepLimiter(cfg.StepDelayMs),
		solver:     challenge.NewSolver(cfg.MaxSolverVisits),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newStepLimiter spaces handshake requests at least delayMs apart
func newStepLimiter(delayMs int) *rate.Limiter {
	if delayMs <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(delayMs)*time.Millisecond), 1)
}

// verificationTask is the challenge served by the verification endpoint.
// Echo fields are kept raw so they go back exactly as received.
type verificationTask struct {
	X         json.RawMessage `json:"X"`
	Result    json.RawMessage `json:"result"`
	Low       json.RawMessage `json:"low"`
	Timeout   json.RawMessage `json:"timeout"`
	Signature json.RawMessage `json:"signature"`
	High      json.RawMessage `json:"high"`
	Parts     json.RawMessage `json:"parts"`
	T         json.RawMessage `json:"t"`
}

// verificationSubmission is the answer posted back to the verification endpoint
type verificationSubmission struct {
	X         json.RawMessage `json:"X"`
	Result    json.RawMessage `json:"result"`
	Low       json.RawMessage `json:"low"`
	Timeout   json.RawMessage `json:"timeout"`
	Signature json.RawMessage `json:"signature"`
	High      json.RawMessage `json:"high"`
	Parts     json.RawMessage `json:"parts"`
	T         json.RawMessage `json:"t"`
	Flagskv   map[string]bool `json:"flagskv"`
	Number    []int64         `json:"number"`
	Took      int             `json:"took"`
}

// Bootstrap returns a credential for the fulfillment endpoint.
// A configured static cookie skips the handshake.
func (s *Session) Bootstrap(ctx context.Context) (*Credential, error) {
	if s.cfg.Cookie != "" {
		logger.FromContext(ctx).Debug("Using configured cookie, handshake skipped")
		return &Credential{Cookie: s.cfg.Cookie, Static: true, CreatedAt: time.Now()}, nil
	}

	cred, err := s.handshake(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBootstrap, err)
	}
	return cred, nil
}

func (s *Session) handshake(ctx context.Context) (*Credential, error) {
	log := logger.FromContext(ctx)
	log.Info("🍪 Fetching storefront cookies")

	resp, err := s.do(ctx, http.MethodGet, s.cfg.CookieURL, nil, "")
	if err != nil {
		return nil, err
	}
	initialCookie, err := buildCookie(resp)
	if err != nil {
		return nil, fmt.Errorf("initial cookie: %w", err)
	}

	resp, err = s.do(ctx, http.MethodGet, s.cfg.VerificationURL, nil, initialCookie)
	if err != nil {
		return nil, err
	}
	task, err := decodeTask(resp.body)
	if err != nil {
		return nil, err
	}

	c, err := task.challenge()
	if err != nil {
		return nil, err
	}
	solution, err := s.solver.Solve(c)
	if err != nil {
		return nil, err
	}
	log.Debug("Verification challenge solved",
		zap.Int64("target", c.Target),
		zap.Int64("parts", c.FactorCount),
		zap.Int64s("number", solution))

	payload, err := json.Marshal(task.submission(solution))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verification answer: %w", err)
	}

	resp, err = s.do(ctx, http.MethodPost, s.cfg.VerificationURL, payload, initialCookie)
	if err != nil {
		return nil, err
	}
	verificationCookie, err := buildCookie(resp)
	if err != nil {
		return nil, fmt.Errorf("verification cookie: %w", err)
	}

	log.Info("✅ Storefront session established")
	return &Credential{
		Cookie:    initialCookie + "; " + verificationCookie,
		Solution:  solution,
		CreatedAt: time.Now(),
	}, nil
}

type response struct {
	header http.Header
	body   []byte
}

// do sends one handshake request once the step limiter allows it
func (s *Session) do(ctx context.Context, method, url string, payload []byte, cookie string) (*response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	logger.Debug(method+" request", zap.String("url", url), zap.ByteString("body", payload))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(url, resp.StatusCode, data)
	}

	if logger.DebugEnabled() {
		logger.Debug("Response body", zap.String("url", url), zap.ByteString("body", data))
	}

	return &response{header: resp.Header, body: data}, nil
}

// buildCookie joins the name=value part of every Set-Cookie header
func buildCookie(resp *response) (string, error) {
	var pairs []string
	for _, setCookie := range resp.header.Values("Set-Cookie") {
		pair, _, _ := strings.Cut(setCookie, ";")
		if pair = strings.TrimSpace(pair); pair != "" {
			pairs = append(pairs, pair)
		}
	}
	if len(pairs) == 0 {
		return "", ErrNoCookies
	}
	return strings.Join(pairs, "; "), nil
}

func decodeTask(body []byte) (*verificationTask, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		if len(bytes.TrimSpace(body)) == 0 {
			return nil, ErrEmptyChallenge
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyChallenge
	}

	var task verificationTask
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &task, nil
}

// challenge maps the decimal task fields onto solver input
func (t *verificationTask) challenge() (challenge.Challenge, error) {
	var c challenge.Challenge
	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *int64
	}{
		{"result", t.Result, &c.Target},
		{"parts", t.Parts, &c.FactorCount},
		{"low", t.Low, &c.Low},
		{"high", t.High, &c.High},
	}
	for _, f := range fields {
		v, err := parseDecimal(f.raw)
		if err != nil {
			return c, fmt.Errorf("%w: field %s: %v", challenge.ErrInput, f.name, err)
		}
		*f.dst = v
	}
	return c, nil
}

func (t *verificationTask) submission(solution []int64) *verificationSubmission {
	return &verificationSubmission{
		X:         t.X,
		Result:    t.Result,
		Low:       t.Low,
		Timeout:   t.Timeout,
		Signature: t.Signature,
		High:      t.High,
		Parts:     t.Parts,
		T:         t.T,
		Flagskv:   map[string]bool{"patSkip": true},
		Number:    solution,
		Took:      1,
	}
}

// parseDecimal reads an integer sent either as a JSON number or a JSON string
func parseDecimal(raw json.RawMessage) (int64, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, fmt.Errorf("missing value")
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(s)
	}
	return strconv.ParseInt(text, 10, 64)
}
