package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"order-gateway/internal/platform/metrics"
	"order-gateway/internal/platform/middleware"
	dErrors "order-gateway/pkg/domain-errors"
	"order-gateway/pkg/platform/httputil"
)

// Middleware enforces the per-IP quota in front of the lookup handler.
// A nil *Middleware is a pass-through, used when no counter store is
// configured.
type Middleware struct {
	store   Store
	limit   int
	window  time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewMiddleware(store Store, limit int, window time.Duration, logger *slog.Logger, m *metrics.Metrics) *Middleware {
	return &Middleware{
		store:   store,
		limit:   limit,
		window:  window,
		logger:  logger,
		metrics: m,
	}
}

func (m *Middleware) Limit(next http.Handler) http.Handler {
	if m == nil || m.store == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := middleware.GetClientIP(ctx)

		result, err := m.store.Allow(ctx, "ip:"+ip, m.limit, m.window)
		if err != nil {
			// The counter store erroring is ambiguous; fail closed like every
			// other stage.
			m.logger.ErrorContext(ctx, "rate limit check failed",
				"error", err.Error(),
				"request_id", middleware.GetRequestID(ctx),
			)
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUpstream, "rate limit check failed"))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.metrics.RecordRateLimitDenial()
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"ip", ip,
				"limit", result.Limit,
				"request_id", middleware.GetRequestID(ctx),
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
