// Package backend is the typed HTTP client for the management backend's
// REST API. It speaks the backend's uniform response envelope and splits
// failures into NetworkError (nothing received) and HTTPError (the backend
// answered with a failure). It never retries and never refreshes tokens;
// that is the session service's job.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/admin-console/internal/api/metrics"
)

const (
	basePath       = "/api/v1"
	defaultTimeout = 10 * time.Second
)

// Envelope is the wrapper every backend JSON response arrives in.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors,omitempty"`
}

// NetworkError means the request never produced a response: connection
// refused, DNS failure, timeout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("backend unreachable: %s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError means the backend responded with a non-2xx status or a
// success=false envelope. Message prefers the envelope's message.
type HTTPError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Client is the shared transport for all backend resources.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient builds a Client rooted at baseURL (the /api/v1 prefix is
// appended here, callers pass resource paths only).
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + basePath,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log: log,
	}
}

// Auth returns the /auth resource bound to this client.
func (c *Client) Auth() *AuthService { return &AuthService{c: c} }

// Users returns the /users resource bound to this client.
func (c *Client) Users() *UserService { return &UserService{c: c} }

// Categories returns the /categories resource bound to this client.
func (c *Client) Categories() *CategoryService { return &CategoryService{c: c} }

// do performs one request/response cycle. body is marshalled as JSON when
// non-nil; the envelope's data field is decoded into out when out is
// non-nil. token, when non-empty, is attached as a bearer credential.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	raw, err := c.roundTrip(ctx, method, path, query, token, body, "application/json", nil)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s %s: decode data: %w", method, path, err)
	}
	return nil
}

// doText performs a request whose response body is plain text, not an
// envelope (the ping endpoint).
func (c *Client) doText(ctx context.Context, method, path, token string) (string, error) {
	raw, err := c.roundTrip(ctx, method, path, nil, token, nil, "text/plain", nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// roundTripWithHeader issues a bodyless envelope request carrying one extra
// header (the logout-all endpoint identifies its target this way).
func (c *Client) roundTripWithHeader(ctx context.Context, method, path, key, value string) ([]byte, error) {
	h := http.Header{}
	h.Set(key, value)
	return c.roundTrip(ctx, method, path, nil, "", nil, "application/json", h)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, token string, body any, accept string, extra http.Header) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	for key, values := range extra {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(resource(path), method, "network_error").Inc()
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(resource(path), method, "network_error").Inc()
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}

	outcome := "ok"
	if resp.StatusCode >= 400 {
		outcome = fmt.Sprintf("http_%d", resp.StatusCode)
	}
	metrics.BackendRequestsTotal.WithLabelValues(resource(path), method, outcome).Inc()
	metrics.BackendRequestDuration.WithLabelValues(resource(path), method).Observe(time.Since(start).Seconds())

	if resp.StatusCode >= 400 {
		return nil, c.httpError(method, path, resp.StatusCode, raw)
	}

	// A 2xx carrying success=false is still a failure per the contract.
	if accept == "application/json" && len(raw) > 0 {
		var env Envelope
		if json.Unmarshal(raw, &env) == nil && !env.Success && env.Message != "" {
			return nil, &HTTPError{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
		}
	}

	return raw, nil
}

func (c *Client) httpError(method, path string, status int, raw []byte) error {
	he := &HTTPError{Status: status}
	var env Envelope
	if json.Unmarshal(raw, &env) == nil {
		he.Message = env.Message
		he.Errors = env.Errors
	}
	c.log.Warn().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Str("message", he.Message).
		Msg("backend request failed")
	return he
}

// resource maps a request path to its first segment for metric labels.
func resource(path string) string {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}
