package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/angeloszaimis/docker-healthcheck/internal/target"
)

// ProbeWithRetry probes t up to the configured number of times and returns
// true on the first healthy response. A failed attempt is followed by the
// configured interval only when another attempt remains. Cancelling ctx
// stops further attempts and reports false.
func (p *Prober) ProbeWithRetry(ctx context.Context, t *target.Target) bool {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, t.URL(), nil)
	if err != nil {
		p.logger.Debug("failed to build request",
			slog.String("url", t.String()),
			slog.Any("err", err))
		return false
	}
	req.Header.Set("User-Agent", UserAgent)
	p.logger.Debug("checking target", targetAttr(t), slog.Int("retries", p.cfg.Retries))

	res, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("health check gave up",
			slog.String("url", t.String()),
			slog.Int("retries", p.cfg.Retries),
			slog.Any("err", err))
		return false
	}
	defer res.Body.Close()

	return IsHealthy(res.StatusCode)
}

func (p *Prober) newRetryClient(httpClient *http.Client) *retryablehttp.Client {
	interval := p.cfg.Interval()

	rc := retryablehttp.NewClient()
	rc.HTTPClient = httpClient
	rc.Logger = retryLogger{p.logger}
	rc.RetryMax = p.cfg.Retries - 1
	rc.RetryWaitMin = interval
	rc.RetryWaitMax = interval
	rc.Backoff = constantBackoff(interval)
	rc.RequestLogHook = p.onAttempt
	rc.CheckRetry = p.checkRetry

	return rc
}

func (p *Prober) onAttempt(_ retryablehttp.Logger, req *http.Request, attempt int) {
	p.attempt = attempt + 1
	p.attemptURL = req.URL.String()
	p.attemptStart = time.Now()
}

// checkRetry retries on any transport error or unhealthy status.
func (p *Prober) checkRetry(ctx context.Context, res *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	p.record(p.attemptURL, p.attempt, time.Since(p.attemptStart), res, err)

	if err != nil {
		return true, nil
	}

	return !IsHealthy(res.StatusCode), nil
}

func constantBackoff(d time.Duration) retryablehttp.Backoff {
	return func(_, _ time.Duration, _ int, _ *http.Response) time.Duration {
		return d
	}
}

// retryLogger routes retryablehttp's own messages to debug level so a failing
// target does not write to stderr unless diagnostics were asked for.
type retryLogger struct {
	logger *slog.Logger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}
