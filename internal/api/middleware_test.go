package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestTimingMiddlewareSetsHeader(t *testing.T) {
	h := TimingMiddleware(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Header().Get("X-Process-Time") == "" {
		t.Error("expected X-Process-Time header to be set")
	}
}

func TestRateLimitMiddlewareRejectsBurst(t *testing.T) {
	// 2 requests per minute leaves a burst of 1.
	h := RateLimitMiddleware(2, time.Minute)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}
}

func TestRateLimitMiddlewareIsolatesClients(t *testing.T) {
	h := RateLimitMiddleware(2, time.Minute)(okHandler())

	reqA := httptest.NewRequest(http.MethodGet, "/", nil)
	reqA.RemoteAddr = "192.0.2.1:1234"
	reqB := httptest.NewRequest(http.MethodGet, "/", nil)
	reqB.RemoteAddr = "192.0.2.2:1234"

	h.ServeHTTP(httptest.NewRecorder(), reqA)
	h.ServeHTTP(httptest.NewRecorder(), reqA)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, reqB)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected other client to be unaffected, got %d", rr.Code)
	}
}
