// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Configuration constants for the GearSync backend API.
const (
	// DefaultBaseURL is the development backend origin.
	DefaultBaseURL = "http://localhost:8080/api"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the retry budget for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff delay.
	retryMaxDelay = 8 * time.Second

	// MaxResponseSize bounds response bodies; dashboard lists are small and
	// an unbounded read is a memory exhaustion risk.
	MaxResponseSize = 2 * 1024 * 1024 // 2MB

	userAgent = "gearsync-tui/" + clientVersion
)

// clientVersion is reported in the User-Agent header.
const clientVersion = "0.1.0"

// sharedHTTPClient pools connections across all API requests.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// TokenSource returns the current bearer token, or "" when unauthenticated.
// It is consulted per request so a token saved or cleared mid-session takes
// effect on the very next call.
type TokenSource func() string

// bearerTransport decorates a RoundTripper with the Authorization header.
// This is the standing request interceptor: no per-call token plumbing.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

// RoundTrip attaches the bearer token when one is present.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.tokens(); token != "" {
		// Clone before mutating: RoundTrippers must not modify the request.
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(req)
}

// Client talks to the GearSync backend REST API.
type Client struct {
	// mu guards baseURL: the config watcher swaps it from its own
	// goroutine while request goroutines read it.
	mu      sync.RWMutex
	baseURL string

	httpClient  *http.Client
	maxRetries  int
	limiter     *rate.Limiter
	logRequests bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the transport (used by tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets the retry budget for transient errors.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRequestLogging enables method/path/status/duration logging. Headers
// and bodies are never logged; they can carry tokens and passwords.
func WithRequestLogging(enabled bool) Option {
	return func(c *Client) { c.logRequests = enabled }
}

// WithRateLimit overrides the client-side request throttle.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// New creates a client for the given backend origin. The TokenSource is
// mandatory; pass a func returning "" for an always-unauthenticated client.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxRetries: DefaultMaxRetries,
		// Keyboard-driven UI: 10 req/s sustained with a small burst is
		// generous headroom while still bounding a runaway loop.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
	}
	for _, opt := range opts {
		opt(c)
	}
	base := c.httpClient
	if base == nil {
		base = sharedHTTPClient
	}
	c.httpClient = &http.Client{
		Transport: &bearerTransport{base: base.Transport, tokens: tokens},
		Timeout:   base.Timeout,
	}
	if c.httpClient.Transport.(*bearerTransport).base == nil {
		c.httpClient.Transport.(*bearerTransport).base = http.DefaultTransport
	}
	return c
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL swaps the backend origin (config live-reload). Requests already
// in flight finish against the old origin.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs one logical API call: marshal, send with retries, classify
// failures, decode into out (out may be nil for calls with ignored bodies).
func (c *Client) do(ctx context.Context, method, path string, body, out any, failures failureMap) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("request throttled: %w", err)
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(attempt)):
			}
		}

		resp, err := c.send(ctx, method, path, payload)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// Transport failure: retryable, and distinct from any 4xx.
			lastErr = fmt.Errorf("%w: %v", ErrNetworkFailure, err)
			continue
		}

		if resp.StatusCode >= 500 {
			body, _ := readResponse(resp)
			resp.Body.Close()
			lastErr = &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(body))}
			continue
		}

		return c.finish(resp, out, failures)
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// send performs a single HTTP round trip.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if c.logRequests {
		if err != nil {
			log.Printf("API %s %s: transport error (%v)", method, path, time.Since(start))
		} else {
			log.Printf("API %s %s: %d (%v)", method, path, resp.StatusCode, time.Since(start))
		}
	}
	return resp, err
}

// finish decodes a non-5xx response.
func (c *Client) finish(resp *http.Response, out any, failures failureMap) error {
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp.StatusCode, body, failures)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// classify maps an error response to the operation's sentinel error.
func classify(status int, body []byte, failures failureMap) error {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)

	apiErr := &APIError{
		Status:  status,
		Code:    parsed.Code,
		Message: parsed.message(),
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	if len(parsed.Errors) > 0 {
		return &ValidationError{Message: apiErr.Message, Fields: parsed.Errors}
	}
	if sentinel, ok := failures[status]; ok {
		if apiErr.Message != "" {
			return fmt.Errorf("%w: %s", sentinel, apiErr.Message)
		}
		return sentinel
	}
	return apiErr
}

// readResponse reads the body with a size limit. Reading one byte past the
// limit distinguishes an oversized body from one that is exactly at it.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// backoff returns the delay before retry attempt n (1-based).
func backoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
