package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubHealthChecker struct {
	err error
}

func (c *stubHealthChecker) Health(context.Context) error {
	return c.err
}

func TestHealthz(t *testing.T) {
	t.Run("healthy dependency", func(t *testing.T) {
		rec := httptest.NewRecorder()
		opsRouter(&stubHealthChecker{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing dependency", func(t *testing.T) {
		rec := httptest.NewRecorder()
		checker := &stubHealthChecker{err: errors.New("connection refused")}
		opsRouter(checker).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("no dependency configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		opsRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestOpsRouterServesMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	opsRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
