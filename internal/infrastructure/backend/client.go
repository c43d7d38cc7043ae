package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/puntoventa/pos-terminal/internal/api/metrics"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

const defaultTimeout = 20 * time.Second

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// refreshFlight tracks one in-flight token refresh. err is written before
// done is closed, so waiters may read it after the channel unblocks.
type refreshFlight struct {
	done chan struct{}
	err  error
}

// Client consumes the remote POS REST API. The bearer token is read from
// persisted storage at send time rather than from any in-memory session, so
// a refresh done by one caller is picked up by the next request untouched.
//
// On a 401 the client triggers exactly one token refresh; concurrent
// requests hitting 401 while a refresh is in flight wait for it and replay
// afterwards. A failed refresh clears the stored credentials and propagates
// the error to every waiter. Replay order is not guaranteed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	storage    ports.Storage
	logger     zerolog.Logger

	mu     sync.Mutex
	flight *refreshFlight
}

// Config captures the settings for the backend client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

func NewClient(cfg Config, storage ports.Storage, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		storage:    storage,
		logger:     logger,
	}
}

// call executes one request with auth-header injection and the one-shot
// refresh-and-replay path. noRetry disables the 401 handling for endpoints
// where a 401 is a final answer (login, refresh itself).
func (c *Client) call(ctx context.Context, method, path string, in, out any, noRetry bool) error {
	resp, body, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && !noRetry {
		metrics.BackendRetriesTotal.Inc()
		if err := c.awaitRefresh(ctx); err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		resp, body, err = c.send(ctx, method, path, in)
		if err != nil {
			return err
		}
	}

	metrics.BackendRequestsTotal.WithLabelValues(method, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// send performs a single HTTP round trip, attaching the currently persisted
// token. It never retries.
func (c *Client) send(ctx context.Context, method, path string, in any) (*http.Response, []byte, error) {
	var reqBody io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return nil, nil, fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		reqBody = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Token is read from storage at send time, tolerating a stale
	// in-memory session right after a refresh.
	if token, err := c.storage.Get(ctx, ports.KeyAuthToken); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	return resp, body, nil
}

// awaitRefresh guarantees at most one refresh call in flight. The first
// caller performs the refresh; everyone else waits on the same flight and
// shares its outcome.
func (c *Client) awaitRefresh(ctx context.Context) error {
	c.mu.Lock()
	if f := c.flight; f != nil {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f := &refreshFlight{done: make(chan struct{})}
	c.flight = f
	c.mu.Unlock()

	f.err = c.doRefresh(ctx)

	c.mu.Lock()
	c.flight = nil
	c.mu.Unlock()
	close(f.done)

	if f.err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
	} else {
		metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	}
	return f.err
}

// doRefresh calls the refresh endpoint and persists the new token. On
// failure the stored credentials are cleared; the session layer observes
// this as a forced logout.
func (c *Client) doRefresh(ctx context.Context) error {
	resp, body, err := c.send(ctx, http.MethodPost, "/auth/refresh-token", nil)
	if err != nil {
		c.clearCredentials(ctx)
		return fmt.Errorf("refresh token: %w", err)
	}
	if resp.StatusCode >= 400 {
		c.clearCredentials(ctx)
		return fmt.Errorf("refresh token: %w", &APIError{Status: resp.StatusCode, Message: errorMessage(body)})
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Token == "" {
		c.clearCredentials(ctx)
		return fmt.Errorf("refresh token: malformed response")
	}

	if err := c.storage.Set(ctx, ports.KeyAuthToken, payload.Token); err != nil {
		return fmt.Errorf("refresh token: persist: %w", err)
	}
	c.logger.Debug().Msg("token refreshed")
	return nil
}

func (c *Client) clearCredentials(ctx context.Context) {
	for _, key := range []string{ports.KeyAuthToken, ports.KeyAuthUser, ports.KeyAuthSucursal} {
		if err := c.storage.Delete(ctx, key); err != nil && !errors.Is(err, ports.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to clear credential key")
		}
	}
}

// errorMessage extracts the backend's error envelope, falling back to the
// raw body.
func errorMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	return strings.TrimSpace(string(body))
}
