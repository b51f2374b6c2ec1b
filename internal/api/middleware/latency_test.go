package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ewright/todo-backend/internal/api/middleware"
	"github.com/stretchr/testify/assert"
)

func TestLatency_DelaysBeforeHandling(t *testing.T) {
	handled := false
	handler := middleware.Latency(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled = true
	}))

	start := time.Now()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, handled)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLatency_ZeroIsNoOp(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	wrapped := middleware.Latency(0)(inner)

	start := time.Now()
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestLatency_CancellationSkipsHandler(t *testing.T) {
	handled := false
	handler := middleware.Latency(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled = true
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	start := time.Now()
	handler.ServeHTTP(rec, req)

	// Cancelled before the delay elapsed: the handler never ran, so no
	// mutation could have been applied partially
	assert.False(t, handled)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
