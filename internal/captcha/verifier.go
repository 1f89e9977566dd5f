// Package captcha gates lookups on a CAPTCHA provider's trust score.
//
// The feature is off unless a provider secret is configured. When on, every
// ambiguous outcome (missing token, provider error, malformed payload) is a
// rejection; a configured CAPTCHA can never be bypassed.
package captcha

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"order-gateway/internal/platform/metrics"
	dErrors "order-gateway/pkg/domain-errors"
)

// DefaultEndpoint is the provider's server-side verification endpoint.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// Verdict is the provider's answer. Score is absent for checkbox-style
// challenges and present for score-based ones.
type Verdict struct {
	Success bool     `json:"success"`
	Score   *float64 `json:"score,omitempty"`
}

// Verifier checks CAPTCHA tokens against the provider.
type Verifier struct {
	secret   string
	minScore float64
	endpoint string
	client   *http.Client
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Verifier)

// WithEndpoint overrides the provider endpoint, used by tests.
func WithEndpoint(endpoint string) Option {
	return func(v *Verifier) { v.endpoint = endpoint }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) { v.metrics = m }
}

// New builds a Verifier. An empty secret disables verification entirely.
func New(secret string, minScore float64, timeout time.Duration, logger *slog.Logger, opts ...Option) *Verifier {
	v := &Verifier{
		secret:   secret,
		minScore: minScore,
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Enabled reports whether a provider secret is configured.
func (v *Verifier) Enabled() bool {
	return v.secret != ""
}

// Verify checks the token. It returns nil when the feature is disabled or the
// provider accepts the token with a sufficient score.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}

	if strings.TrimSpace(token) == "" {
		v.metrics.RecordCaptchaVerdict("missing_token")
		return dErrors.New(dErrors.CodeBadRequest, "captcha token required")
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstream, "captcha verification failed")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.metrics.RecordCaptchaVerdict("provider_error")
		return dErrors.Wrap(err, dErrors.CodeUpstream, "captcha verification failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.metrics.RecordCaptchaVerdict("provider_error")
		return dErrors.New(dErrors.CodeUpstream, "captcha verification failed")
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		// A payload we cannot interpret is treated like a provider failure.
		v.metrics.RecordCaptchaVerdict("provider_error")
		return dErrors.Wrap(err, dErrors.CodeUpstream, "captcha verification failed")
	}

	if !verdict.Success {
		v.metrics.RecordCaptchaVerdict("rejected")
		return dErrors.New(dErrors.CodeBadRequest, "captcha rejected")
	}
	if verdict.Score != nil && *verdict.Score < v.minScore {
		v.metrics.RecordCaptchaVerdict("low_score")
		v.logger.DebugContext(ctx, "captcha score below threshold",
			"score", *verdict.Score,
			"min_score", v.minScore,
		)
		return dErrors.New(dErrors.CodeBadRequest, "captcha rejected")
	}

	v.metrics.RecordCaptchaVerdict("accepted")
	return nil
}
