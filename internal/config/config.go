// Package config loads the agent service configuration from the process
// environment, optionally seeded from a .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read on Load when present in the working directory.
const DefaultEnvFile = ".env"

// Config holds all configuration for the agent service.
type Config struct {
	Server     ServerConfig
	SignalWire SignalWireConfig
	Agent      AgentConfig
	Log        LogConfig
	Telemetry  TelemetryConfig
	Tokens     TokenConfig
}

type ServerConfig struct {
	Host    string `envconfig:"HOST" default:"0.0.0.0"`
	Port    int    `envconfig:"PORT" default:"5000"`
	Version string `envconfig:"APP_VERSION" default:"0.1.0"`
	// WebDir is served at / when it exists.
	WebDir string `envconfig:"WEB_DIR" default:"web"`
}

// SignalWireConfig holds the credentials for the vendor REST API.
type SignalWireConfig struct {
	SpaceName string        `envconfig:"SIGNALWIRE_SPACE_NAME"`
	ProjectID string        `envconfig:"SIGNALWIRE_PROJECT_ID"`
	Token     string        `envconfig:"SIGNALWIRE_TOKEN"`
	Timeout   time.Duration `envconfig:"SIGNALWIRE_TIMEOUT" default:"30s"`
}

type AgentConfig struct {
	Name  string `envconfig:"AGENT_NAME" default:"example"`
	Route string `envconfig:"AGENT_ROUTE"`

	// ProxyURLBase wins over AppURL, which Dokku and Heroku set for us.
	ProxyURLBase string `envconfig:"SWML_PROXY_URL_BASE"`
	AppURL       string `envconfig:"APP_URL"`

	BasicAuthUser     string `envconfig:"SWML_BASIC_AUTH_USER" default:"signalwire"`
	BasicAuthPassword string `envconfig:"SWML_BASIC_AUTH_PASSWORD"`

	PostPromptURL string `envconfig:"POST_PROMPT_URL"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"true"`
}

type TelemetryConfig struct {
	Enabled      bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	// Insecure disables TLS towards the collector, usually a local sidecar.
	Insecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	ServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"example-agent"`
	SampleRatio float64 `envconfig:"OTEL_TRACES_SAMPLE_RATIO" default:"1"`
}

// TokenConfig rate-limits guest token issuance.
type TokenConfig struct {
	RatePerMinute int `envconfig:"TOKEN_RATE_PER_MINUTE" default:"60"`
	Burst         int `envconfig:"TOKEN_BURST" default:"10"`
}

// Load reads configuration from DefaultEnvFile (if present) and the
// environment.
func Load() (*Config, error) {
	return LoadFrom(DefaultEnvFile)
}

// LoadFrom reads configuration after exporting envFile into the
// environment. A missing envFile is not an error.
func LoadFrom(envFile string) (*Config, error) {
	if envFile != "" {
		if err := exportEnvironmentIfExists(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	// Tags are full variable names and no prefix is passed, so envconfig
	// has no bare-tag fallback to read (TOKEN, ENABLED, LEVEL...).
	cfg := &Config{}
	sections := []any{&cfg.Server, &cfg.SignalWire, &cfg.Agent, &cfg.Log, &cfg.Telemetry, &cfg.Tokens}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("process env: %w", err)
		}
	}

	if cfg.Agent.Route == "" {
		cfg.Agent.Route = cfg.Agent.Name
	}
	cfg.Agent.Route = strings.Trim(cfg.Agent.Route, "/")

	return cfg, nil
}

// Host returns the vendor API host. A bare space name gets the
// signalwire.com domain appended; anything with a dot is used as is.
func (c SignalWireConfig) Host() string {
	space := strings.TrimSpace(c.SpaceName)
	if space == "" {
		return ""
	}
	if strings.Contains(space, ".") {
		return space
	}
	return space + ".signalwire.com"
}

// Configured reports whether host, project and token are all present.
func (c SignalWireConfig) Configured() bool {
	return c.Host() != "" && c.ProjectID != "" && c.Token != ""
}

// PublicURL is the externally reachable base URL of this service, without
// a trailing slash. Empty when neither SWML_PROXY_URL_BASE nor APP_URL is set.
func (c AgentConfig) PublicURL() string {
	base := c.ProxyURLBase
	if base == "" {
		base = c.AppURL
	}
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

// EnsureBasicAuthPassword fills in a random password when none was
// configured. It reports whether one was generated.
func (c *AgentConfig) EnsureBasicAuthPassword() bool {
	if c.BasicAuthPassword != "" {
		return false
	}
	c.BasicAuthPassword = strings.ReplaceAll(uuid.NewString(), "-", "")
	return true
}

func exportEnvironmentIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(path)
}

// exportEnvironment copies the keys of a dotenv file into the process
// environment. Variables that are already set keep their value.
func exportEnvironment(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}
	return nil
}
