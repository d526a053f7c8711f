package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
	"golang.org/x/net/idna"

	"github.com/angeloszaimis/docker-healthcheck/internal/target"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const (
	DefaultTimeoutMS  = 5000
	DefaultRetries    = 3
	DefaultIntervalMS = 1000
)

// MaxDurationMS is the largest millisecond count a time.Duration can hold.
const MaxDurationMS int64 = math.MaxInt64 / int64(time.Millisecond)

const (
	EnvLogLevel    = "HEALTHCHECK_LOG_LEVEL"
	EnvEnvironment = "HEALTHCHECK_ENV"
)

// ErrMissingURL is returned by Load when no target URL was given.
var ErrMissingURL = errors.New("missing target URL")

type ProbeConfig struct {
	URL        string `mapstructure:"url"`
	TimeoutMS  int    `mapstructure:"timeout_ms"`
	Retries    int    `mapstructure:"retries"`
	IntervalMS int    `mapstructure:"interval_ms"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
}

type Config struct {
	Probe   ProbeConfig   `mapstructure:"probe"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Timeout is the per-attempt deadline.
func (p ProbeConfig) Timeout() time.Duration {
	return millis(p.TimeoutMS)
}

// Interval is the pause between a failed attempt and the next one.
func (p ProbeConfig) Interval() time.Duration {
	return millis(p.IntervalMS)
}

// millis converts ms to a Duration, saturating instead of overflowing.
func millis(ms int) time.Duration {
	if int64(ms) > MaxDurationMS {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Probe: ProbeConfig{
			TimeoutMS:  DefaultTimeoutMS,
			Retries:    DefaultRetries,
			IntervalMS: DefaultIntervalMS,
		},
		Logging: LoggingConfig{
			Level:       LogLevelError,
			Environment: EnvDev,
		},
	}
}

// ParseArgs reads the positional arguments <url> [timeout_ms] [retries]
// without validating them. Numeric arguments are parsed permissively and
// fall back to their defaults.
func ParseArgs(args []string) (ProbeConfig, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return ProbeConfig{}, ErrMissingURL
	}

	probe := Default().Probe
	probe.URL = strings.TrimSpace(args[0])
	if len(args) > 1 {
		probe.TimeoutMS = ParseIntOr(args[1], DefaultTimeoutMS)
	}
	if len(args) > 2 {
		probe.Retries = ParseIntOr(args[2], DefaultRetries)
	}

	return probe, nil
}

// Load builds and validates the configuration from positional arguments.
func Load(args []string) (*Config, error) {
	probe, err := ParseArgs(args)
	if err != nil {
		return nil, err
	}

	v := newViper()
	v.Set("probe.url", probe.URL)
	v.Set("probe.timeout_ms", probe.TimeoutMS)
	v.Set("probe.retries", probe.Retries)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func newViper() *viper.Viper {
	def := Default()

	v := viper.New()
	v.SetDefault("probe.timeout_ms", def.Probe.TimeoutMS)
	v.SetDefault("probe.retries", def.Probe.Retries)
	v.SetDefault("probe.interval_ms", def.Probe.IntervalMS)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.environment", def.Logging.Environment)

	// Only logging settings are read from the environment.
	_ = v.BindEnv("logging.level", EnvLogLevel)
	_ = v.BindEnv("logging.environment", EnvEnvironment)

	return v
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Probe),
		validation.Field(&c.Logging),
	)
}

func (p ProbeConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.URL,
			validation.Required,
			validation.By(validateTargetURL),
		),
		validation.Field(&p.TimeoutMS,
			validation.Required,
			validation.Min(1),
			validation.Max(MaxDurationMS),
		),
		validation.Field(&p.Retries,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&p.IntervalMS,
			validation.Min(0),
			validation.Max(MaxDurationMS),
		),
	)
}

func (l LoggingConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level,
			validation.Required,
			validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
		),
		validation.Field(&l.Environment,
			validation.Required,
			validation.In(EnvDev, EnvStaging, EnvProd),
		),
	)
}

func validateTargetURL(value interface{}) error {
	rawURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	t, err := target.Parse(rawURL)
	switch {
	case errors.Is(err, target.ErrUnsupportedScheme):
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	case errors.Is(err, target.ErrMissingHost):
		return validation.NewError("validation_missing_host", "URL must have a host")
	case err != nil:
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	// net/http sends internationalized hosts in their ASCII form.
	host := t.Host()
	if ascii, err := idna.Punycode.ToASCII(host); err == nil {
		host = ascii
	}

	if err := is.Host.Validate(host); err != nil {
		return validation.NewError("validation_invalid_host", "invalid host")
	}

	return nil
}
