package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"order-gateway/internal/lookup"
	"order-gateway/internal/platform/metrics"
	"order-gateway/internal/platform/middleware"
	"order-gateway/internal/ratelimit"
	"order-gateway/internal/trust"
	"order-gateway/pkg/platform/httputil"
)

// Service defines the interface for lookup operations.
type Service interface {
	Lookup(ctx context.Context, req lookup.Request) (*lookup.Result, error)
}

// Handler wires the lookup endpoint to the lookup service behind the trust
// and rate limit gates.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
	trust   trust.Strategy
	limiter *ratelimit.Middleware
}

// New constructs a lookup handler with its dependencies.
func New(service Service, logger *slog.Logger, m *metrics.Metrics, strategy trust.Strategy, limiter *ratelimit.Middleware) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: m,
		trust:   strategy,
		limiter: limiter,
	}
}

// Register mounts the lookup endpoint. The trust gate runs before the rate
// limiter so unauthenticated traffic never consumes quota.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(trust.Middleware(h.trust, h.logger, h.metrics))
		r.Use(h.limiter.Limit)
		r.Get("/lookup", h.HandleLookup)
		r.Options("/lookup", h.handlePreflight)
	})
}

// HandleLookup handles GET /lookup requests.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()

	q := r.URL.Query()
	req := lookup.Request{
		Order:        q.Get("order"),
		Email:        q.Get("email"),
		CaptchaToken: q.Get("captchaToken"),
		RemoteIP:     middleware.GetClientIP(ctx),
	}

	result, err := h.service.Lookup(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "lookup rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "lookup served",
		"request_id", requestID,
		"found", result.Found,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, fromResult(result))
}

// handlePreflight exists so OPTIONS routes into the middleware chain; the
// trust gate answers the preflight before this runs.
func (h *Handler) handlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
