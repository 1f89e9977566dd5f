package trust

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "order-gateway/pkg/domain-errors"
)

const allowedOrigin = "https://shop.example.com"

func newOriginStrategy() *OriginStrategy {
	return NewOriginStrategy([]string{allowedOrigin, "https://other.example.com"})
}

func TestOriginStrategyVerify(t *testing.T) {
	t.Run("allowlisted origin is accepted and echoed exactly", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/lookup", nil)
		r.Header.Set("Origin", allowedOrigin)
		w := httptest.NewRecorder()

		id, err := newOriginStrategy().Verify(w, r)
		require.NoError(t, err)
		assert.Equal(t, allowedOrigin, id.Tenant)
		assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unlisted origin is denied", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/lookup", nil)
		r.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()

		_, err := newOriginStrategy().Verify(w, r)
		require.Error(t, err)
		assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), "denied origins must never be reflected")
		assert.Equal(t, "Origin", w.Header().Get("Vary"), "Vary is set even on denial")
	})

	t.Run("missing origin header is denied", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/lookup", nil)
		w := httptest.NewRecorder()

		_, err := newOriginStrategy().Verify(w, r)
		assert.True(t, dErrors.Is(err, dErrors.CodeForbidden))
	})
}

func TestMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	wrap := func(s Strategy, next http.Handler) http.Handler {
		return Middleware(s, logger, nil)(next)
	}

	t.Run("preflight short-circuits with 204", func(t *testing.T) {
		var reached bool
		h := wrap(newOriginStrategy(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			reached = true
		}))

		r := httptest.NewRequest(http.MethodOptions, "/lookup", nil)
		r.Header.Set("Origin", allowedOrigin)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		assert.False(t, reached, "preflight must not run the pipeline")
	})

	t.Run("denied request gets 403 and never reaches the handler", func(t *testing.T) {
		var reached bool
		h := wrap(newOriginStrategy(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			reached = true
		}))

		r := httptest.NewRequest(http.MethodGet, "/lookup", nil)
		r.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"origin not allowed"}`, w.Body.String())
		assert.False(t, reached)
	})

	t.Run("verified identity lands in the request context", func(t *testing.T) {
		var tenant string
		h := wrap(newOriginStrategy(), http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			if id, ok := IdentityFromContext(r.Context()); ok {
				tenant = id.Tenant
			}
		}))

		r := httptest.NewRequest(http.MethodGet, "/lookup", nil)
		r.Header.Set("Origin", allowedOrigin)
		h.ServeHTTP(httptest.NewRecorder(), r)

		assert.Equal(t, allowedOrigin, tenant)
	})
}
