package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/akontos/hello-balancer/config"
)

var _ = Describe("Config", func() {
	var (
		tempDir  string
		origWD   string
		validYML = `
server:
  address: ":8080"
  environment: "dev"

health_check:
  interval: "10s"
  timeout: "2s"
  path: "/health"
  unhealthy_threshold: 3
  healthy_threshold: 2

strategy:
  type: "round-robin"

backends:
  - url: "http://localhost:8081"
  - url: "http://localhost:8082"

logging:
  level: "info"
`
	)

	writeConfig := func(content string) {
		configPath := filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(configPath, []byte(content), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		viper.Reset()

		var err error
		origWD, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tempDir)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.Chdir(origWD)).To(Succeed())
		os.RemoveAll(tempDir)
		os.Unsetenv("STRATEGY_TYPE")
		os.Unsetenv("HEALTH_CHECK_INTERVAL")
	})

	Describe("Load", func() {
		Context("with a valid config file", func() {
			BeforeEach(func() {
				writeConfig(validYML)
			})

			It("loads the configuration", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Server.Address).To(Equal(":8080"))
				Expect(cfg.Backends).To(HaveLen(2))
				Expect(cfg.HealthCheck.UnhealthyThreshold).To(Equal(3))
				Expect(cfg.HealthCheck.HealthyThreshold).To(Equal(2))
			})

			It("parses probe durations", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ProbeInterval()).To(Equal(10 * time.Second))
				Expect(cfg.ProbeTimeout()).To(Equal(2 * time.Second))
			})

			It("lets environment variables override the file", func() {
				os.Setenv("HEALTH_CHECK_INTERVAL", "5s")
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ProbeInterval()).To(Equal(5 * time.Second))
			})
		})

		Context("without a config file", func() {
			It("fails validation because no backends are configured", func() {
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("defaults", func() {
			It("applies probe defaults when the file omits them", func() {
				writeConfig(`
server:
  address: ":8080"
  environment: "dev"

backends:
  - url: "http://localhost:8081"
`)
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ProbeInterval()).To(Equal(30 * time.Second))
				Expect(cfg.ProbeTimeout()).To(Equal(3 * time.Second))
				Expect(cfg.HealthCheck.Path).To(Equal("/health"))
				Expect(cfg.HealthCheck.UnhealthyThreshold).To(Equal(3))
				Expect(cfg.HealthCheck.HealthyThreshold).To(Equal(2))
				Expect(cfg.Strategy.Type).To(Equal("round-robin"))
			})

			It("applies the forward timeout default", func() {
				writeConfig(`
server:
  address: ":8080"
  environment: "dev"

backends:
  - url: "http://localhost:8081"
`)
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.ForwardTimeout()).To(Equal(30 * time.Second))
			})
		})
	})

	Describe("Validate", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = &config.Config{
				Server: config.ServerConfig{
					Address:        ":8080",
					Environment:    "dev",
					ForwardTimeout: "30s",
				},
				HealthCheck: config.HealthCheckConfig{
					Interval:           "30s",
					Timeout:            "3s",
					Path:               "/health",
					UnhealthyThreshold: 3,
					HealthyThreshold:   2,
				},
				Strategy: config.StrategyConfig{Type: "round-robin"},
				Backends: []config.BackendConfig{
					{URL: "http://localhost:8081"},
				},
				Logging: config.LoggingConfig{Level: "info"},
			}
		})

		It("accepts a complete config", func() {
			Expect(cfg.Validate()).To(Succeed())
		})

		It("rejects an empty backends list", func() {
			cfg.Backends = nil
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects a backend URL without a scheme", func() {
			cfg.Backends = []config.BackendConfig{{URL: "localhost:8081"}}
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects an unknown strategy", func() {
			cfg.Strategy.Type = "consistent-hash"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects a malformed forward timeout", func() {
			cfg.Server.ForwardTimeout = "eventually"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects a malformed probe interval", func() {
			cfg.HealthCheck.Interval = "soon"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects a zero unhealthy threshold", func() {
			cfg.HealthCheck.UnhealthyThreshold = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects a zero healthy threshold", func() {
			cfg.HealthCheck.HealthyThreshold = 0
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects an unknown environment", func() {
			cfg.Server.Environment = "qa"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects a server address without a port", func() {
			cfg.Server.Address = "localhost"
			Expect(cfg.Validate()).NotTo(Succeed())
		})

		It("rejects an invalid log level", func() {
			cfg.Logging.Level = "verbose"
			Expect(cfg.Validate()).NotTo(Succeed())
		})
	})
})
