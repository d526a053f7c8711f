package healthcheck

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/angeloszaimis/docker-healthcheck/config"
	"github.com/angeloszaimis/docker-healthcheck/internal/metrics"
	"github.com/angeloszaimis/docker-healthcheck/internal/target"
	"github.com/angeloszaimis/docker-healthcheck/pkg/logger"
)

// UserAgent identifies the prober to the target.
const UserAgent = "Docker-HealthCheck/1.0"

// Prober sends health check requests to a target. It keeps per-attempt
// state and must not be used from several goroutines at once.
type Prober struct {
	cfg       config.ProbeConfig
	client    *retryablehttp.Client
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tlsConfig *tls.Config

	attempt      int
	attemptURL   string
	attemptStart time.Time
}

// Option customises a Prober.
type Option func(*Prober)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = l
	}
}

// WithMetrics records every attempt into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Prober) {
		p.metrics = m
	}
}

// WithTLSConfig replaces the TLS settings used for https targets.
func WithTLSConfig(c *tls.Config) Option {
	return func(p *Prober) {
		p.tlsConfig = c
	}
}

// New creates a Prober. Zero fields in cfg take their defaults; a negative
// interval is treated as no pause.
func New(cfg config.ProbeConfig, opts ...Option) *Prober {
	def := config.Default().Probe
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = def.TimeoutMS
	}
	if cfg.Retries <= 0 {
		cfg.Retries = def.Retries
	}
	if cfg.IntervalMS < 0 {
		cfg.IntervalMS = 0
	}

	p := &Prober{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Discard()
	}
	if p.metrics == nil {
		p.metrics = metrics.NewMetrics()
	}

	p.client = p.newRetryClient(p.newHTTPClient())
	return p
}

// newHTTPClient returns a client that bounds each attempt by the timeout,
// opens a fresh connection per attempt and never follows redirects.
func (p *Prober) newHTTPClient() *http.Client {
	transport := cleanhttp.DefaultTransport()
	transport.Proxy = nil
	if p.tlsConfig != nil {
		transport.TLSClientConfig = p.tlsConfig
	}

	return &http.Client{
		Transport: transport,
		Timeout:   p.cfg.Timeout(),
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Config returns the effective probe configuration.
func (p *Prober) Config() config.ProbeConfig {
	return p.cfg
}

// Metrics returns the attempt recorder.
func (p *Prober) Metrics() *metrics.Metrics {
	return p.metrics
}

// Probe makes one attempt against t. Every failure, including a timeout,
// is reported as false.
func (p *Prober) Probe(ctx context.Context, t *target.Target) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL(), nil)
	if err != nil {
		p.logger.Debug("failed to build request",
			slog.String("url", t.String()),
			slog.Any("err", err))
		return false
	}
	req.Header.Set("User-Agent", UserAgent)
	p.logger.Debug("checking target", targetAttr(t), slog.Int("retries", 1))

	start := time.Now()
	res, err := p.client.HTTPClient.Do(req)
	p.record(t.URL(), 1, time.Since(start), res, err)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return IsHealthy(res.StatusCode)
}

func (p *Prober) record(url string, attempt int, d time.Duration, res *http.Response, err error) {
	if err != nil {
		p.metrics.RecordAttempt(d, 0, err)
		p.logger.Debug("attempt failed",
			slog.String("url", url),
			slog.Int("attempt", attempt),
			slog.Duration("duration", d),
			slog.Any("err", err))
		return
	}

	p.metrics.RecordAttempt(d, res.StatusCode, nil)
	p.logger.Debug("attempt completed",
		slog.String("url", url),
		slog.Int("attempt", attempt),
		slog.Duration("duration", d),
		slog.Int("status", res.StatusCode),
		slog.Bool("healthy", IsHealthy(res.StatusCode)))
}

func targetAttr(t *target.Target) slog.Attr {
	return slog.Group("target",
		slog.String("scheme", t.Scheme()),
		slog.String("host", t.Host()),
		slog.String("port", t.Port()),
		slog.String("addr", t.Addr()),
		slog.String("path", t.Path()),
		slog.Bool("tls", t.IsTLS()))
}

// IsHealthy reports whether code is in [200, 400).
func IsHealthy(code int) bool {
	return code >= http.StatusOK && code < http.StatusBadRequest
}
