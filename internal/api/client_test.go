// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"golang.org/x/time/rate"

	"github.com/jeranaias/gearsync-tui/internal/model"
)

// newTestClient points a client at the test server with retries and the
// throttle disabled so failure tests finish quickly.
func newTestClient(server *httptest.Server, token string) *Client {
	return New(server.URL, func() string { return token },
		WithMaxRetries(0),
		WithRateLimit(rate.NewLimiter(rate.Inf, 0)),
	)
}

func TestBearerHeaderAttachedWhenAuthenticated(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":1,"name":"A","email":"a@b.c","role":"CUSTOMER"}`))
	}))
	defer server.Close()

	client := newTestClient(server, "tok-abc")
	if _, err := client.Me(context.Background()); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q, want Bearer tok-abc", gotAuth)
	}
}

func TestBearerHeaderOmittedWhenSignedOut(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth, hasAuth = r.Header.Get("Authorization"), r.Header.Get("Authorization") != ""
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server, "")
	if _, err := client.ServiceTypes(context.Background()); err != nil {
		t.Fatalf("ServiceTypes: %v", err)
	}
	if hasAuth {
		t.Errorf("Authorization = %q, want unset", gotAuth)
	}
}

func TestTokenSourceConsultedPerRequest(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	token := "first"
	client := New(server.URL, func() string { return token },
		WithMaxRetries(0),
		WithRateLimit(rate.NewLimiter(rate.Inf, 0)),
	)

	ctx := context.Background()
	client.ServiceTypes(ctx)
	token = ""
	client.ServiceTypes(ctx)

	if len(seen) != 2 || seen[0] != "Bearer first" || seen[1] != "" {
		t.Errorf("Authorization per request = %q, want [Bearer first, \"\"]", seen)
	}
}

func TestLoginMapsRejectionToInvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Bad credentials"}`))
	}))
	defer server.Close()

	client := newTestClient(server, "")
	_, err := client.Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "nope"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticatedCallMapsToUnauthenticated(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		client := newTestClient(server, "expired")
		_, err := client.Me(context.Background())
		server.Close()
		if !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Me with %d = %v, want ErrUnauthenticated", status, err)
		}
	}
}

func TestFieldErrorsBecomeValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Validation failed","errors":{"email":"must be valid","password":"too short"}}`))
	}))
	defer server.Close()

	client := newTestClient(server, "")
	_, err := client.Register(context.Background(), RegisterRequest{})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Register error = %v, want *ValidationError", err)
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Error("ValidationError should unwrap to ErrValidationFailed")
	}
	if vErr.Fields["email"] != "must be valid" {
		t.Errorf("Fields = %v", vErr.Fields)
	}
}

// Transport failures must be distinguishable from backend rejections: the
// session-handling layers clear state on the latter, never the former.
func TestTransportFailureIsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	client := newTestClient(server, "tok")
	_, err := client.Me(context.Background())
	if !errors.Is(err, ErrNetworkFailure) {
		t.Errorf("error = %v, want ErrNetworkFailure", err)
	}
	if errors.Is(err, ErrUnauthenticated) {
		t.Error("a transport failure must never look like a rejected token")
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL, func() string { return "" },
		WithMaxRetries(1),
		WithRateLimit(rate.NewLimiter(rate.Inf, 0)),
	)
	if _, err := client.ServiceTypes(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, func() string { return "tok" },
		WithMaxRetries(3),
		WithRateLimit(rate.NewLimiter(rate.Inf, 0)),
	)
	_, err := client.Project(context.Background(), 42)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("error = %v, want *APIError with status 404", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (4xx is not transient)", calls)
	}
}

func TestVerifyOTPReturnsResetToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/verify-otp" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"resetToken":"rt-1","message":"verified","expiresInMinutes":5}`))
	}))
	defer server.Close()

	client := newTestClient(server, "")
	got, err := client.VerifyOTP(context.Background(), "a@b.c", "123456")
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if got.ResetToken != "rt-1" || got.ExpiresInMinutes != 5 {
		t.Errorf("result = %+v", got)
	}
}

func TestVerifyOTPGoneMapsToInvalidOTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		w.Write([]byte(`{"message":"OTP expired"}`))
	}))
	defer server.Close()

	client := newTestClient(server, "")
	_, err := client.VerifyOTP(context.Background(), "a@b.c", "123456")
	if !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("error = %v, want ErrInvalidOTP", err)
	}
}

// The config watcher swaps the base URL from its own goroutine while
// bubbletea command goroutines issue requests; both sides must be safe
// under the race detector.
func TestSetBaseURLConcurrentWithRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server, "tok")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			client.SetBaseURL(server.URL)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			client.ServiceTypes(context.Background())
		}
	}()
	wg.Wait()

	if client.BaseURL() != server.URL {
		t.Errorf("BaseURL = %q, want %q", client.BaseURL(), server.URL)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/refresh" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer old-tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"token":"new-tok"}`))
	}))
	defer server.Close()

	client := newTestClient(server, "old-tok")
	token, err := client.RefreshToken(context.Background())
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if token != "new-tok" {
		t.Errorf("token = %q, want new-tok", token)
	}
}

// A body of exactly the maximum size is complete, not oversized.
func TestReadResponseAtSizeLimit(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(bytes.NewReader(make([]byte, MaxResponseSize)))}
	body, err := readResponse(resp)
	if err != nil {
		t.Fatalf("readResponse at limit: %v", err)
	}
	if int64(len(body)) != MaxResponseSize {
		t.Errorf("len = %d, want %d", len(body), MaxResponseSize)
	}

	over := &http.Response{Body: io.NopCloser(bytes.NewReader(make([]byte, MaxResponseSize+1)))}
	if _, err := readResponse(over); err == nil {
		t.Error("oversized body accepted")
	}
}

func TestLoginResultDecodesRoleAndFirstLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok","role":"EMPLOYEE","isFirstLogin":true}`))
	}))
	defer server.Close()

	client := newTestClient(server, "")
	got, err := client.Login(context.Background(), LoginRequest{Email: "e@shop.io", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.Role != model.RoleEmployee || !got.IsFirstLogin {
		t.Errorf("result = %+v", got)
	}
}
