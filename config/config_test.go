package config_test

import (
	"math"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/docker-healthcheck/config"
)

var _ = Describe("Config", func() {
	AfterEach(func() {
		os.Unsetenv(config.EnvLogLevel)
		os.Unsetenv(config.EnvEnvironment)
		os.Unsetenv("PROBE_TIMEOUT_MS")
	})

	Describe("Load", func() {
		Context("with only a URL", func() {
			It("should use the defaults", func() {
				cfg, err := config.Load([]string{"http://localhost:8080/health"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Probe.URL).To(Equal("http://localhost:8080/health"))
				Expect(cfg.Probe.TimeoutMS).To(Equal(5000))
				Expect(cfg.Probe.Retries).To(Equal(3))
				Expect(cfg.Probe.IntervalMS).To(Equal(1000))
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelError))
				Expect(cfg.Logging.Environment).To(Equal(config.EnvDev))
			})

			It("should expose durations", func() {
				cfg, err := config.Load([]string{"http://localhost"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Probe.Timeout()).To(Equal(5 * time.Second))
				Expect(cfg.Probe.Interval()).To(Equal(time.Second))
			})
		})

		Context("with positional overrides", func() {
			It("should apply timeout and retries", func() {
				cfg, err := config.Load([]string{"http://localhost", "2000", "5"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Probe.TimeoutMS).To(Equal(2000))
				Expect(cfg.Probe.Retries).To(Equal(5))
				Expect(cfg.Probe.IntervalMS).To(Equal(1000))
			})

			It("should fall back to defaults for non-numeric values", func() {
				cfg, err := config.Load([]string{"http://localhost", "fast", "many"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Probe.TimeoutMS).To(Equal(5000))
				Expect(cfg.Probe.Retries).To(Equal(3))
			})

			It("should fall back to defaults for zero values", func() {
				cfg, err := config.Load([]string{"http://localhost", "0", "0"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Probe.TimeoutMS).To(Equal(5000))
				Expect(cfg.Probe.Retries).To(Equal(3))
			})

			It("should ignore extra arguments", func() {
				cfg, err := config.Load([]string{"http://localhost", "100", "1", "extra"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Probe.TimeoutMS).To(Equal(100))
				Expect(cfg.Probe.Retries).To(Equal(1))
			})
		})

		Context("without a URL", func() {
			It("should return ErrMissingURL for no arguments", func() {
				cfg, err := config.Load(nil)
				Expect(err).To(MatchError(config.ErrMissingURL))
				Expect(cfg).To(BeNil())
			})

			It("should return ErrMissingURL for a blank URL", func() {
				_, err := config.Load([]string{"   "})
				Expect(err).To(MatchError(config.ErrMissingURL))
			})
		})

		Context("with an invalid URL", func() {
			It("should reject unsupported schemes", func() {
				_, err := config.Load([]string{"ftp://localhost"})
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("http or https"))
			})

			It("should reject URLs without a host", func() {
				_, err := config.Load([]string{"http://"})
				Expect(err).To(HaveOccurred())
			})

			It("should reject plain words", func() {
				_, err := config.Load([]string{"localhost"})
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with a non-ASCII host", func() {
			It("should accept an internationalized domain name", func() {
				cfg, err := config.Load([]string{"http://bücher.example/health"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Probe.URL).To(Equal("http://bücher.example/health"))
			})

			It("should accept a service name with an underscore", func() {
				_, err := config.Load([]string{"http://my_service:8080/health"})
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("with a timeout beyond the duration range", func() {
			It("should reject it instead of overflowing", func() {
				_, err := config.Load([]string{"http://localhost", "9300000000000"})
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("TimeoutMS"))
			})
		})

		Context("with environment variables", func() {
			It("should read the log level", func() {
				os.Setenv(config.EnvLogLevel, "debug")
				cfg, err := config.Load([]string{"http://localhost"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Logging.Level).To(Equal(config.LogLevelDebug))
			})

			It("should read the environment", func() {
				os.Setenv(config.EnvEnvironment, "prod")
				cfg, err := config.Load([]string{"http://localhost"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Logging.Environment).To(Equal(config.EnvProd))
			})

			It("should reject an unknown log level", func() {
				os.Setenv(config.EnvLogLevel, "verbose")
				_, err := config.Load([]string{"http://localhost"})
				Expect(err).To(HaveOccurred())
			})

			It("should not read probe settings from the environment", func() {
				os.Setenv("PROBE_TIMEOUT_MS", "10")
				cfg, err := config.Load([]string{"http://localhost"})
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Probe.TimeoutMS).To(Equal(5000))
			})
		})
	})

	Describe("ParseArgs", func() {
		It("should return the raw settings without validating the URL", func() {
			probe, err := config.ParseArgs([]string{"ftp://example.com", "100", "2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(probe.URL).To(Equal("ftp://example.com"))
			Expect(probe.TimeoutMS).To(Equal(100))
			Expect(probe.Retries).To(Equal(2))
			Expect(probe.IntervalMS).To(Equal(config.DefaultIntervalMS))
		})

		It("should return ErrMissingURL for no arguments", func() {
			_, err := config.ParseArgs(nil)
			Expect(err).To(MatchError(config.ErrMissingURL))
		})
	})

	Describe("Durations", func() {
		It("should saturate instead of wrapping negative", func() {
			probe := config.ProbeConfig{TimeoutMS: 9300000000000, IntervalMS: 9300000000000}
			Expect(probe.Timeout()).To(Equal(time.Duration(math.MaxInt64)))
			Expect(probe.Interval()).To(BeNumerically(">", 0))
		})

		It("should convert values at the cap exactly", func() {
			probe := config.ProbeConfig{TimeoutMS: int(config.MaxDurationMS)}
			Expect(probe.Timeout()).To(Equal(time.Duration(config.MaxDurationMS) * time.Millisecond))
		})
	})

	Describe("Validate", func() {
		var cfg config.Config

		BeforeEach(func() {
			cfg = config.Default()
			cfg.Probe.URL = "https://api.example.com/health"
		})

		It("should accept the defaults", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should accept a zero interval", func() {
			cfg.Probe.IntervalMS = 0
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject a negative interval", func() {
			cfg.Probe.IntervalMS = -1
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject zero retries", func() {
			cfg.Probe.Retries = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a zero timeout", func() {
			cfg.Probe.TimeoutMS = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an unknown environment", func() {
			cfg.Logging.Environment = "qa"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject a timeout larger than a duration can hold", func() {
			cfg.Probe.TimeoutMS = 9300000000000
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should reject an interval larger than a duration can hold", func() {
			cfg.Probe.IntervalMS = 9300000000000
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("should accept a timeout at the cap", func() {
			cfg.Probe.TimeoutMS = int(config.MaxDurationMS)
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should accept IP hosts", func() {
			cfg.Probe.URL = "http://127.0.0.1:3000/health"
			Expect(cfg.Validate()).To(Succeed())
		})
	})

	Describe("ParseIntOr", func() {
		DescribeTable("lenient integer parsing",
			func(input string, expected int) {
				Expect(config.ParseIntOr(input, 42)).To(Equal(expected))
			},
			Entry("plain number", "2500", 2500),
			Entry("leading whitespace", "  7", 7),
			Entry("leading plus sign", "+9", 9),
			Entry("trailing garbage", "250ms", 250),
			Entry("decimal is truncated", "3.7", 3),
			Entry("non-numeric", "abc", 42),
			Entry("empty", "", 42),
			Entry("sign only", "-", 42),
			Entry("zero", "0", 42),
			Entry("negative", "-5", 42),
			Entry("overflow", "99999999999999999999999", 42),
			Entry("hex prefix", "0x1F4", 500),
			Entry("upper-case hex prefix", "0XfF", 255),
			Entry("hex with trailing garbage", "0x10ms", 16),
			Entry("hex prefix without digits", "0xZZ", 42),
			Entry("bare hex prefix", "0x", 42),
			Entry("negative hex", "-0x10", 42),
		)
	})
})
