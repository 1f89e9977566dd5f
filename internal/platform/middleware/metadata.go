package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKeyClientIP struct{}

// loopbackIP stands in when no forwarded-for chain is present; direct
// connections only happen behind the front-door proxy or in tests.
const loopbackIP = "127.0.0.1"

// ClientMetadata extracts the client IP from the request and adds it to the
// context for the rate limiter and CAPTCHA verifier. Apply early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKeyClientIP{}, ClientIPFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIP retrieves the client IP address from the context.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return ip
	}
	return loopbackIP
}

// WithClientIP injects a client IP into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyClientIP{}, ip)
}

// ClientIPFromRequest takes the first entry of the forwarded-for chain,
// trimmed. Requests without one get the loopback placeholder.
func ClientIPFromRequest(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return loopbackIP
	}
	if idx := strings.Index(xff, ","); idx != -1 {
		xff = xff[:idx]
	}
	if ip := strings.TrimSpace(xff); ip != "" {
		return ip
	}
	return loopbackIP
}
