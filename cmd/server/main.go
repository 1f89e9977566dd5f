package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"order-gateway/internal/captcha"
	"order-gateway/internal/lookup"
	"order-gateway/internal/lookup/handler"
	"order-gateway/internal/orders"
	"order-gateway/internal/platform/config"
	"order-gateway/internal/platform/httpserver"
	"order-gateway/internal/platform/logger"
	"order-gateway/internal/platform/metrics"
	"order-gateway/internal/platform/middleware"
	"order-gateway/internal/platform/redis"
	"order-gateway/internal/ratelimit"
	"order-gateway/internal/trust"
)

// main wires dependencies and owns the listener lifecycle. Business logic
// lives in the internal packages.
func main() {
	log := logger.New()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	limiter := newLimiter(cfg, redisClient, log, m)
	strategy := newTrustStrategy(cfg)

	verifier := captcha.New(cfg.Captcha.Secret, cfg.Captcha.MinScore, cfg.Captcha.Timeout, log,
		captcha.WithMetrics(m))
	backend := orders.NewHTTPClient(cfg.Backend)

	svc := lookup.NewService(backend, verifier, log, m)
	h := handler.New(svc, log, m, strategy, limiter)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.ClientMetadata)
	router.Use(middleware.Logger(log))
	h.Register(router)

	apiServer := httpserver.New(cfg.Addr, router)
	var health healthChecker
	if redisClient != nil {
		health = redisClient
	}
	opsServer := httpserver.New(cfg.OpsAddr, opsRouter(health))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting order gateway", "addr", cfg.Addr, "trust_mode", cfg.TrustMode)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting ops listener", "addr", cfg.OpsAddr)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error("api shutdown failed", "error", err)
		}
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("ops shutdown failed", "error", err)
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Error("redis close failed", "error", err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// newLimiter builds the rate limit gate, preferring redis when configured so
// replicas share one quota. Without a limit the gate is a no-op.
func newLimiter(cfg config.Config, client *redis.Client, log *slog.Logger, m *metrics.Metrics) *ratelimit.Middleware {
	if cfg.RateLimit.Requests <= 0 {
		return nil
	}
	var store ratelimit.Store
	if client != nil {
		store = ratelimit.NewRedisStore(client)
	} else {
		store = ratelimit.NewMemoryStore()
	}
	return ratelimit.NewMiddleware(store, cfg.RateLimit.Requests, cfg.RateLimit.Window, log, m)
}

func newTrustStrategy(cfg config.Config) trust.Strategy {
	if cfg.TrustMode == config.TrustModeSignature {
		return trust.NewSignatureStrategy(cfg.SigningSecret, cfg.TrustedShop)
	}
	return trust.NewOriginStrategy(cfg.AllowedOrigins)
}

// healthChecker reports whether a backing dependency is reachable.
type healthChecker interface {
	Health(ctx context.Context) error
}

// opsRouter serves metrics and health on the private listener. A nil checker
// means no dependency to probe and health is always OK.
func opsRouter(checker healthChecker) http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if checker != nil {
			if err := checker.Health(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}
