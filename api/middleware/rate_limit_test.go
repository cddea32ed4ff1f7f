package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubLimiterStore struct {
	counts map[string]int64
	err    error
}

func (s *stubLimiterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewRateLimitPolicy("reset", 0, 0, 0)
	handler := RateLimit(policy, &stubLimiterStore{}, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected passthrough, got %d", rec.Code)
	}
}

func TestRateLimitBlocksIPOverLimit(t *testing.T) {
	policy := NewRateLimitPolicy("reset", time.Minute, 2, 0)
	store := &stubLimiterStore{}
	handler := RateLimit(policy, store, nil)(okHandler())

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/reset", nil)
		req.RemoteAddr = "10.1.2.3:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d unexpectedly blocked: %d", i+1, rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.RemoteAddr = "10.1.2.3:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRateLimitBlocksEmailOverLimit(t *testing.T) {
	policy := NewRateLimitPolicy("reset", time.Minute, 0, 1)
	store := &stubLimiterStore{}
	handler := RateLimit(policy, store, nil)(okHandler())

	body := `{"email":"User@Example.com"}`

	req := httptest.NewRequest(http.MethodPost, "/reset", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request blocked: %d", rec.Code)
	}

	// Same address with different casing hits the same normalized counter.
	req = httptest.NewRequest(http.MethodPost, "/reset", strings.NewReader(`{"email":"user@example.com"}`))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}

	for key := range store.counts {
		if strings.Contains(key, "example.com") {
			t.Fatalf("raw email leaked into counter key %q", key)
		}
	}
}

func TestRateLimitPreservesBodyForNextHandler(t *testing.T) {
	policy := NewRateLimitPolicy("reset", time.Minute, 0, 5)
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body downstream: %v", err)
		}
		seen = string(data)
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(policy, &stubLimiterStore{}, nil)(next)

	body := `{"email":"user@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/reset", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != body {
		t.Fatalf("downstream body mismatch: %q", seen)
	}
}
