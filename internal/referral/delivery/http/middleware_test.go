package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httphandler "go-referral/internal/referral/delivery/http"
	"go-referral/pkg/problemdetails"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func TestRateLimiter_Middleware_WithinLimit_Returns200(t *testing.T) {
	handler := httphandler.NewRateLimiter(100).Middleware(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "Request %d should succeed", i+1)
		assert.Equal(t, "100", rr.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimiter_Middleware_ExceedsLimit_Returns429(t *testing.T) {
	handler := httphandler.NewRateLimiter(2).Middleware(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		if i < 2 {
			assert.Equal(t, http.StatusOK, rr.Code)
			continue
		}
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))

		var problem problemdetails.ProblemDetail
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&problem))
		assert.Equal(t, http.StatusTooManyRequests, problem.Status)
		assert.Contains(t, problem.Type, problemdetails.TypeRateLimitExceeded)
	}
}

func TestRateLimiter_Middleware_PerIPIsolation(t *testing.T) {
	handler := httphandler.NewRateLimiter(1).Middleware(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1", "10.0.0.1:2"} {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if addr == "10.0.0.1:2" {
			assert.Equal(t, http.StatusTooManyRequests, rr.Code, "same IP on another port shares the limit")
		} else {
			assert.Equal(t, http.StatusOK, rr.Code)
		}
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	handler := httphandler.NewRateLimiter(0).Middleware(okHandler())

	for range 20 {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := httphandler.NewRateLimiter(10)
	handler := rl.Middleware(okHandler())
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 1, rl.Cleanup(time.Millisecond))
}

func TestLoggerMiddleware_LogsRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := httphandler.LoggerMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/r/abc123", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http request", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/r/abc123", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
}
