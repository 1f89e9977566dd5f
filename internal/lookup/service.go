package lookup

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"order-gateway/internal/orders"
	"order-gateway/internal/platform/metrics"
	dErrors "order-gateway/pkg/domain-errors"
)

// CaptchaVerifier gates a lookup on a challenge token. Implementations return
// nil when the token is acceptable or verification is disabled.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// Backend resolves an order by filter query. A nil order means not found.
type Backend interface {
	FindOrder(ctx context.Context, query string) (*orders.Order, error)
}

// Service runs the lookup pipeline for a single request.
type Service struct {
	backend Backend
	captcha CaptchaVerifier
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(backend Backend, captcha CaptchaVerifier, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		backend: backend,
		captcha: captcha,
		logger:  logger,
		metrics: m,
	}
}

// Lookup validates the request, clears the CAPTCHA gate, queries the backend,
// and projects the record into the public shape.
func (s *Service) Lookup(ctx context.Context, req Request) (*Result, error) {
	order := strings.TrimSpace(req.Order)
	email := strings.TrimSpace(req.Email)
	if order == "" || email == "" {
		s.metrics.RecordLookup("invalid_input")
		return nil, dErrors.New(dErrors.CodeBadRequest, "order and email are required")
	}

	if err := s.captcha.Verify(ctx, req.CaptchaToken, req.RemoteIP); err != nil {
		s.metrics.RecordLookup("captcha_rejected")
		return nil, err
	}

	query := buildQuery(order, email)

	start := time.Now()
	record, err := s.backend.FindOrder(ctx, query)
	s.metrics.ObserveBackendLatency(time.Since(start))
	if err != nil {
		s.logger.ErrorContext(ctx, "backend lookup failed", slog.Any("error", err))
		s.metrics.RecordLookup("backend_error")
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "order lookup failed")
	}

	result := project(record)
	if result.Found {
		s.metrics.RecordLookup("found")
	} else {
		s.metrics.RecordLookup("not_found")
	}
	return result, nil
}
