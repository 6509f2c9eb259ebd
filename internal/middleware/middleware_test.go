package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	r := newRouter(RequestID())

	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{name: "generated"},
		{name: "propagated", header: map[string]string{RequestIDHeader: "abc-123"}, want: "abc-123"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := get(r, "/ping", tt.header)
			got := w.Header().Get(RequestIDHeader)
			if got == "" {
				t.Fatalf("expected %s header", RequestIDHeader)
			}
			if tt.want != "" && got != tt.want {
				t.Fatalf("expected request id %q, got %q", tt.want, got)
			}
			if w.Body.String() != got {
				t.Fatalf("context id %q does not match header %q", w.Body.String(), got)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, 2)
	r := newRouter(limiter.RateLimit())

	for i := 0; i < 2; i++ {
		if w := get(r, "/ping", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if w := get(r, "/ping", nil); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the burst is spent, got %d", w.Code)
	}
	if w := get(r, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("expected health check to bypass the limiter, got %d", w.Code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	t.Parallel()

	r := newRouter(NewRateLimiter(0, 0).RateLimit())
	for i := 0; i < 50; i++ {
		if w := get(r, "/ping", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
}

func TestRateLimiterSweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(5, 5)
	limiter.now = func() time.Time { return now }

	limiter.getLimiter("10.0.0.1")
	now = now.Add(limiter.idleTTL / 2)
	limiter.getLimiter("10.0.0.2")
	now = now.Add(limiter.idleTTL/2 + time.Second)

	if removed := limiter.sweep(); removed != 1 {
		t.Fatalf("expected 1 idle visitor removed, got %d", removed)
	}
	if _, ok := limiter.visitors["10.0.0.2"]; !ok {
		t.Fatalf("expected recent visitor to be kept")
	}
}

func TestRateLimiterCleanupStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRateLimiter(1, 1).Cleanup(ctx, time.Millisecond)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Cleanup returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Cleanup did not stop after cancel")
	}
}
