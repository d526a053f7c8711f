package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/angeloszaimis/docker-healthcheck/config"
	"github.com/angeloszaimis/docker-healthcheck/internal/healthcheck"
	"github.com/angeloszaimis/docker-healthcheck/internal/metrics"
	"github.com/angeloszaimis/docker-healthcheck/internal/target"
	"github.com/angeloszaimis/docker-healthcheck/pkg/logger"
)

const (
	exitHealthy   = 0
	exitUnhealthy = 1
)

const usage = "Usage: healthcheck <url> [timeout] [retries]"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes one health check and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}

	var healthy bool
	cmd := newRootCmd(&healthy)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, config.ErrMissingURL) {
			fmt.Fprintln(stderr, usage)
		} else {
			fmt.Fprintf(stderr, "❌ Health check error: %v\n", err)
		}
		return exitUnhealthy
	}

	if !healthy {
		return exitUnhealthy
	}
	return exitHealthy
}

func newRootCmd(healthy *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck <url> [timeout_ms] [retries]",
		Short: "Probe an HTTP(S) endpoint and exit 0 when it is healthy",
		Long: `Sends GET requests to the URL until one answers with a status in [200, 400)
or the retries are used up. Attempts are one second apart.

Exit status is 0 when healthy and 1 otherwise.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("unexpected panic: %v", r)
				}
			}()

			probe, err := config.ParseArgs(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Health checking: %s\n", probe.URL)
			fmt.Fprintf(out, "Timeout: %dms, Retries: %d\n", probe.TimeoutMS, probe.Retries)

			cfg, err := config.Load(args)
			if err != nil {
				return err
			}

			*healthy, err = check(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}
}

func check(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) (bool, error) {
	log := logger.New(stderr, cfg.Logging.Level, false, cfg.Logging.Environment)

	t, err := target.Parse(cfg.Probe.URL)
	if err != nil {
		return false, err
	}

	m := metrics.NewMetrics()
	prober := healthcheck.New(cfg.Probe,
		healthcheck.WithLogger(log),
		healthcheck.WithMetrics(m))

	healthy := prober.ProbeWithRetry(ctx, t)

	snap := m.Snapshot()
	log.Debug("health check finished",
		slog.String("url", t.String()),
		slog.Bool("healthy", healthy),
		slog.Int64("attempts", snap.Attempts),
		slog.Int64("failures", snap.Failures),
		slog.Duration("elapsed", snap.Elapsed),
		slog.Duration("avg_response", snap.AvgResponse),
		slog.Duration("p50_response", snap.P50Response),
		slog.Duration("p95_response", snap.P95Response),
		slog.Duration("p99_response", snap.P99Response))

	if healthy {
		fmt.Fprintln(stdout, "✅ Health check passed")
	} else {
		fmt.Fprintln(stdout, "❌ Health check failed")
	}

	return healthy, nil
}
