// Package trust establishes caller trust before a lookup is processed.
//
// Exactly one Strategy is selected at startup: SignatureStrategy for
// deployments behind a signing front-door proxy, OriginStrategy for direct
// browser access gated by a CORS origin allowlist. The rest of the pipeline is
// identical across modes.
package trust

import (
	"context"
	"log/slog"
	"net/http"

	"order-gateway/internal/platform/metrics"
	"order-gateway/internal/platform/middleware"
	dErrors "order-gateway/pkg/domain-errors"
	"order-gateway/pkg/platform/httputil"
)

// Identity is the outcome of a successful trust check. It lives for the
// duration of one request and is never persisted.
type Identity struct {
	// Tenant is the shop the request was verified for: the signed shop
	// parameter in signature mode, the allowed origin in origin mode.
	Tenant string
}

// Strategy verifies that a request may enter the lookup pipeline.
//
// Verify may set response headers (the CORS echo and Vary signal in origin
// mode) but must not write a body or status; the middleware owns the
// short-circuit.
type Strategy interface {
	Verify(w http.ResponseWriter, r *http.Request) (Identity, error)
}

type contextKeyIdentity struct{}

// WithIdentity stores a verified identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity{}, id)
}

// IdentityFromContext retrieves the verified identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKeyIdentity{}).(Identity)
	return id, ok
}

// Middleware runs the strategy in front of the pipeline. Preflight requests
// short-circuit with 204 once the origin check passed; no further stage runs.
func Middleware(s Strategy, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := s.Verify(w, r)
			if err != nil {
				logger.WarnContext(r.Context(), "trust check rejected request",
					"error", err.Error(),
					"request_id", middleware.GetRequestID(r.Context()),
				)
				m.RecordTrustRejection(string(dErrors.CodeOf(err)))
				httputil.WriteError(w, err)
				return
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
