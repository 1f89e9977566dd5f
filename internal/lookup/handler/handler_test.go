package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"order-gateway/internal/captcha"
	"order-gateway/internal/lookup"
	"order-gateway/internal/lookup/handler/mocks"
	"order-gateway/internal/orders"
	"order-gateway/internal/platform/middleware"
	"order-gateway/internal/ratelimit"
	"order-gateway/internal/trust"
	dErrors "order-gateway/pkg/domain-errors"
)

const (
	allowedOrigin = "https://shop.example.com"
	testSecret    = "test-secret"
	testShop      = "demo-shop.example.com"

	// HMAC-SHA256 over "email=jane@example.comorder=1001shop=demo-shop.example.com"
	// with testSecret.
	validSignature = "19404b08e7e56dab4ff144171abb662c67a38304d185e2fe3fcda6189ca6914e"
)

type stubBackend struct {
	order *orders.Order
	err   error
}

func (b *stubBackend) FindOrder(context.Context, string) (*orders.Order, error) {
	return b.order, b.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// newRouter assembles the full request pipeline around the given trust
// strategy and backend, with CAPTCHA disabled.
func newRouter(t *testing.T, strategy trust.Strategy, limiter *ratelimit.Middleware, backend lookup.Backend) http.Handler {
	t.Helper()
	logger := testLogger()
	verifier := captcha.New("", 0.5, time.Second, logger)
	svc := lookup.NewService(backend, verifier, logger, nil)
	h := New(svc, logger, nil, strategy, limiter)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	h.Register(r)
	return r
}

func originRouter(t *testing.T, backend lookup.Backend) http.Handler {
	return newRouter(t, trust.NewOriginStrategy([]string{allowedOrigin}), nil, backend)
}

func lookupRequest(order, email string) *http.Request {
	params := url.Values{}
	params.Set("order", order)
	params.Set("email", email)
	req := httptest.NewRequest(http.MethodGet, "/lookup?"+params.Encode(), nil)
	req.Header.Set("Origin", allowedOrigin)
	return req
}

func TestLookupFound(t *testing.T) {
	statusURL := "https://demo-shop.example.com/orders/abc/status"
	router := originRouter(t, &stubBackend{order: &orders.Order{
		Name:                     "#1001",
		DisplayFulfillmentStatus: "IN_TRANSIT",
		StatusPageURL:            &statusURL,
		Fulfillments: []orders.Fulfillment{
			{TrackingInfo: []orders.TrackingInfo{
				{Number: "TN-1", URL: "https://carrier.example/TN-1", Company: "UPS"},
			}},
		},
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, lookupRequest("#1001", "jane@example.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{
		"found": true,
		"orderName": "#1001",
		"displayStatus": "In Transit",
		"statusPageUrl": "https://demo-shop.example.com/orders/abc/status",
		"tracking": [
			{"number": "TN-1", "url": "https://carrier.example/TN-1", "company": "UPS"}
		]
	}`, rec.Body.String())
}

func TestLookupNotFoundBody(t *testing.T) {
	router := originRouter(t, &stubBackend{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, lookupRequest("9999", "jane@example.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	// The miss body is exactly this, so callers cannot probe for anything.
	assert.JSONEq(t, `{"found": false}`, rec.Body.String())
}

func TestLookupNullStatusPageURL(t *testing.T) {
	router := originRouter(t, &stubBackend{order: &orders.Order{
		Name:                     "#1001",
		DisplayFulfillmentStatus: "UNFULFILLED",
	}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, lookupRequest("1001", "jane@example.com"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"found": true,
		"orderName": "#1001",
		"displayStatus": "Unfulfilled",
		"statusPageUrl": null,
		"tracking": []
	}`, rec.Body.String())
}

func TestLookupMissingParams(t *testing.T) {
	router := originRouter(t, &stubBackend{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, lookupRequest("", "jane@example.com"))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "order and email are required"}`, rec.Body.String())
}

func TestLookupForbiddenOrigin(t *testing.T) {
	backend := &stubBackend{order: &orders.Order{Name: "#1001"}}
	router := originRouter(t, backend)

	req := lookupRequest("1001", "jane@example.com")
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	router := originRouter(t, &stubBackend{})

	req := httptest.NewRequest(http.MethodOptions, "/lookup", nil)
	req.Header.Set("Origin", allowedOrigin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, allowedOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestLookupRateLimited(t *testing.T) {
	limiter := ratelimit.NewMiddleware(ratelimit.NewMemoryStore(), 2, time.Minute, testLogger(), nil)
	router := newRouter(t, trust.NewOriginStrategy([]string{allowedOrigin}), limiter, &stubBackend{})

	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		rec = httptest.NewRecorder()
		req := lookupRequest("1001", "jane@example.com")
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		router.ServeHTTP(rec, req)
	}

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error": "too many requests"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestLookupSignatureMode(t *testing.T) {
	router := newRouter(t, trust.NewSignatureStrategy(testSecret, testShop), nil,
		&stubBackend{order: &orders.Order{Name: "#1001", DisplayFulfillmentStatus: "FULFILLED"}})

	params := url.Values{}
	params.Set("order", "1001")
	params.Set("email", "jane@example.com")
	params.Set("shop", testShop)
	params.Set("signature", validSignature)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lookup?"+params.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// The same request without its signature is refused.
	params.Del("signature")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/lookup?"+params.Encode(), nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLookupServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockService(ctrl)
	service.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUpstream, "order lookup failed"))

	logger := testLogger()
	h := New(service, logger, nil, trust.NewOriginStrategy([]string{allowedOrigin}), nil)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	h.Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, lookupRequest("1001", "jane@example.com"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// Upstream detail stays out of the response body.
	assert.JSONEq(t, `{"error": "upstream service unavailable"}`, rec.Body.String())
}

func TestLookupPassesQueryToService(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockService(ctrl)
	service.EXPECT().
		Lookup(gomock.Any(), lookup.Request{
			Order:        "#1001",
			Email:        "Jane@Example.com",
			CaptchaToken: "tok-1",
			RemoteIP:     "203.0.113.7",
		}).
		Return(&lookup.Result{Found: false}, nil)

	h := New(service, testLogger(), nil, trust.NewOriginStrategy([]string{allowedOrigin}), nil)
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	h.Register(r)

	params := url.Values{}
	params.Set("order", "#1001")
	params.Set("email", "Jane@Example.com")
	params.Set("captchaToken", "tok-1")
	req := httptest.NewRequest(http.MethodGet, "/lookup?"+params.Encode(), nil)
	req.Header.Set("Origin", allowedOrigin)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
