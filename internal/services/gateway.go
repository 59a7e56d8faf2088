package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"alfredoptarigan/resume-structurer/internal/config"
)

var (
	ErrGateway              = errors.New("extraction gateway failed")
	ErrGatewayTimeout       = fmt.Errorf("%w: timeout", ErrGateway)
	ErrGatewayUnavailable   = fmt.Errorf("%w: unavailable", ErrGateway)
	ErrGatewayQuotaExceeded = fmt.Errorf("%w: quota exceeded", ErrGateway)
)

// ExtractionGateway turns résumé text into a raw JSON-ish payload using an
// external model. Implementations make exactly one call per Extract.
type ExtractionGateway interface {
	Extract(ctx context.Context, resumeText string) (string, error)
	Name() string
}

// NewExtractionGateway picks the provider named in the config and bounds it
// with the configured timeout and rate.
func NewExtractionGateway(ctx context.Context, cfg config.GatewayConfig, log *logrus.Logger) (ExtractionGateway, error) {
	var (
		gw  ExtractionGateway
		err error
	)
	switch cfg.Provider {
	case "gemini":
		gw, err = NewGeminiGateway(ctx, cfg)
	case "claude":
		gw = NewClaudeGateway(cfg)
	default:
		return nil, fmt.Errorf("unsupported gateway provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithLimits(gw, cfg.Timeout, cfg.RatePerMin, log), nil
}

type limitedGateway struct {
	next    ExtractionGateway
	timeout time.Duration
	limiter *rate.Limiter
	log     *logrus.Logger
}

// WithLimits wraps a gateway with a per-call deadline and a process-wide
// token bucket of perMinute calls. The wait for a token counts against the
// deadline. perMinute <= 0 disables the bucket, timeout <= 0 the deadline.
func WithLimits(next ExtractionGateway, timeout time.Duration, perMinute int, log *logrus.Logger) ExtractionGateway {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), 1)
	}
	return &limitedGateway{next: next, timeout: timeout, limiter: limiter, log: log}
}

func (g *limitedGateway) Name() string { return g.next.Name() }

func (g *limitedGateway) Extract(ctx context.Context, resumeText string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		g.log.WithField("provider", g.Name()).WithError(err).Warn("⚠️ Gateway rate limit wait aborted")
		// the limiter refuses early when the next token lands after the deadline
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return "", fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	}

	out, err := g.next.Extract(ctx, resumeText)
	fields := logrus.Fields{"provider": g.Name(), "duration": time.Since(start).String()}
	if err != nil {
		err = classify(ctx, err)
		g.log.WithFields(fields).WithError(err).Error("❌ Extraction gateway call failed")
		return "", err
	}
	g.log.WithFields(fields).Info("🤖 Extraction gateway responded")
	return out, nil
}

// classify maps an error to one of the gateway sentinels, keeping a
// classification the provider already made.
func classify(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrGateway):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
}

// classifyStatus maps a provider HTTP status to a gateway sentinel.
func classifyStatus(status int, err error) error {
	switch {
	case status == 429:
		return fmt.Errorf("%w: %v", ErrGatewayQuotaExceeded, err)
	case status == 408 || status == 504:
		return fmt.Errorf("%w: %v", ErrGatewayTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
}
