package trust

import (
	"net/http"

	dErrors "order-gateway/pkg/domain-errors"
)

// OriginStrategy trusts browser requests whose Origin header exactly matches
// a configured allowlist entry. No wildcard or pattern matching.
type OriginStrategy struct {
	allowed map[string]struct{}
}

func NewOriginStrategy(origins []string) *OriginStrategy {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &OriginStrategy{allowed: allowed}
}

// Verify checks the Origin header against the allowlist. On success it echoes
// back only that exact origin in the CORS-allow header. Vary: Origin is set on
// every response, allowed or not, so caches never serve one origin's response
// to another.
func (s *OriginStrategy) Verify(w http.ResponseWriter, r *http.Request) (Identity, error) {
	w.Header().Add("Vary", "Origin")

	origin := r.Header.Get("Origin")
	if _, ok := s.allowed[origin]; !ok {
		return Identity{}, dErrors.New(dErrors.CodeForbidden, "origin not allowed")
	}

	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	return Identity{Tenant: origin}, nil
}
