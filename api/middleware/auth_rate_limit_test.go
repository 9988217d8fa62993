package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type memoryLimiter struct {
	counts map[string]int64
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{counts: map[string]int64{}}
}

func (m *memoryLimiter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.counts[key]++
	return m.counts[key], nil
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:51234"
	return req
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRateLimitBlocksAfterIPLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 0)
	handler := AuthRateLimit(policy, newMemoryLimiter(), nil)(okHandler())

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, loginRequest(`{}`))
		if resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i+1, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequest(`{}`))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
}

func TestAuthRateLimitBlocksPerUsername(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	handler := AuthRateLimit(policy, newMemoryLimiter(), nil)(okHandler())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequest(`{"username":"amara"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("first attempt: expected 200 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequest(`{"username":"AMARA"}`))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for case-folded username, got %d", resp.Code)
	}

	// A different account is unaffected.
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequest(`{"username":"beatrix"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("other username: expected 200 got %d", resp.Code)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", 0, 0, 0)
	handler := AuthRateLimit(policy, newMemoryLimiter(), nil)(okHandler())

	for i := 0; i < 10; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, loginRequest(`{"username":"amara"}`))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected pass-through, got %d", resp.Code)
		}
	}
}

func TestAuthRateLimitPreservesBodyForNextHandler(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 5, 5)
	var seen string
	handler := AuthRateLimit(policy, newMemoryLimiter(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 64)
		n, _ := r.Body.Read(buf)
		seen = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"username":"amara","password":"pw"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, loginRequest(body))
	if seen != body {
		t.Fatalf("downstream body = %q, want %q", seen, body)
	}
}
