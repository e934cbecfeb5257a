// Package backend is the REST client for the storefront backend. It
// implements the product, auth, order and payment ports.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnauthenticated is returned for calls that need a bearer token when none
// is held, and wrapped by 401 responses.
var ErrUnauthenticated = errors.New("backend: not signed in")

// APIError is a response the backend rejected, either with a non-2xx status
// or with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthenticated
	}
	return nil
}

type TokenSource interface {
	Token() string
}

type doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type Client struct {
	base   *url.URL
	http   doer
	tokens TokenSource
	newKey func() string
	logger zerolog.Logger
}

type Option func(*Client)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithIdempotencyKeys overrides how Idempotency-Key values are generated.
func WithIdempotencyKeys(newKey func() string) Option {
	return func(c *Client) {
		if newKey != nil {
			c.newKey = newKey
		}
	}
}

func NewClient(base *url.URL, httpClient doer, tokens TokenSource, opts ...Option) (*Client, error) {
	if base == nil {
		return nil, fmt.Errorf("base url is nil")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("http client is nil")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token source is nil")
	}

	c := &Client{
		base:   base,
		http:   httpClient,
		tokens: tokens,
		newKey: uuid.NewString,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type call struct {
	method     string
	segments   []string
	body       any
	auth       bool
	idempotent bool
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (cl call) path() string {
	return "/" + strings.Join(cl.segments, "/")
}

func (c *Client) do(ctx context.Context, cl call, out any) (string, error) {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("http.Do %s %s: %w", cl.method, cl.path(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("io.ReadAll: %w", err)
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < http.StatusBadRequest {
			return "", fmt.Errorf("json.Unmarshal envelope: %w", err)
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		c.logger.Debug().
			Str("method", cl.method).
			Str("path", cl.path()).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("backend_rejected")
		return "", apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return "", fmt.Errorf("json.Unmarshal %s: %w", cl.path(), err)
		}
	}
	return env.Message, nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	var token string
	if cl.auth {
		token = strings.TrimSpace(c.tokens.Token())
		if token == "" {
			return nil, ErrUnauthenticated
		}
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.base.JoinPath(cl.segments...).String(), body)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequest: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if cl.idempotent {
		req.Header.Set("Idempotency-Key", c.newKey())
	}
	return req, nil
}

// UserMessage returns the backend's own message for err when there is one,
// fallback otherwise.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}
	return fallback
}
