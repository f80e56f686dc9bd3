package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceagent/example-agent/internal/config"
)

var configKeys = []string{
	"HOST", "PORT", "APP_VERSION", "WEB_DIR",
	"SIGNALWIRE_SPACE_NAME", "SIGNALWIRE_PROJECT_ID", "SIGNALWIRE_TOKEN", "SIGNALWIRE_TIMEOUT",
	"AGENT_NAME", "AGENT_ROUTE", "SWML_PROXY_URL_BASE", "APP_URL",
	"SWML_BASIC_AUTH_USER", "SWML_BASIC_AUTH_PASSWORD", "POST_PROMPT_URL",
	"LOG_LEVEL", "LOG_PRETTY",
	"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
	"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLE_RATIO",
	"TOKEN_RATE_PER_MINUTE", "TOKEN_BURST",
}

// clearEnv unsets every config key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "web", cfg.Server.WebDir)
	assert.Equal(t, "example", cfg.Agent.Name)
	assert.Equal(t, "example", cfg.Agent.Route)
	assert.Equal(t, "signalwire", cfg.Agent.BasicAuthUser)
	assert.Equal(t, 30*time.Second, cfg.SignalWire.Timeout)
	assert.Equal(t, 60, cfg.Tokens.RatePerMinute)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.InDelta(t, 1.0, cfg.Telemetry.SampleRatio, 0.0001)
	assert.False(t, cfg.SignalWire.Configured())
	assert.Empty(t, cfg.Agent.PublicURL())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SIGNALWIRE_SPACE_NAME", "myspace")
	t.Setenv("SIGNALWIRE_PROJECT_ID", "proj")
	t.Setenv("SIGNALWIRE_TOKEN", "tok")
	t.Setenv("AGENT_NAME", "support")
	t.Setenv("AGENT_ROUTE", "/voice/")
	t.Setenv("APP_URL", "https://app.example.com/")

	cfg, err := config.LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.True(t, cfg.SignalWire.Configured())
	assert.Equal(t, "myspace.signalwire.com", cfg.SignalWire.Host())
	assert.Equal(t, "voice", cfg.Agent.Route)
	assert.Equal(t, "https://app.example.com", cfg.Agent.PublicURL())
}

func TestLoad_IgnoresUnprefixedVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("SIGNALWIRE_SPACE_NAME", "myspace")
	t.Setenv("SIGNALWIRE_PROJECT_ID", "proj")
	t.Setenv("TOKEN", "ci-github-token")
	t.Setenv("ENABLED", "true")
	t.Setenv("LEVEL", "trace")
	t.Setenv("BURST", "999")
	t.Setenv("TIMEOUT", "1s")

	cfg, err := config.LoadFrom("")
	require.NoError(t, err)

	assert.Empty(t, cfg.SignalWire.Token)
	assert.False(t, cfg.SignalWire.Configured())
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Tokens.Burst)
	assert.Equal(t, 30*time.Second, cfg.SignalWire.Timeout)
}

func TestAgentConfig_ProxyURLWinsOverAppURL(t *testing.T) {
	c := config.AgentConfig{ProxyURLBase: "https://tunnel.example.net", AppURL: "https://app.example.com"}
	assert.Equal(t, "https://tunnel.example.net", c.PublicURL())
}

func TestSignalWireConfig_Host(t *testing.T) {
	tests := []struct {
		space string
		want  string
	}{
		{"", ""},
		{"myspace", "myspace.signalwire.com"},
		{"myspace.signalwire.com", "myspace.signalwire.com"},
		{"  other.example.org ", "other.example.org"},
	}
	for _, tt := range tests {
		got := config.SignalWireConfig{SpaceName: tt.space}.Host()
		assert.Equal(t, tt.want, got, "space %q", tt.space)
	}
}

func TestLoadFrom_EnvFileDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("AGENT_NAME", "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	content := "SIGNALWIRE_SPACE_NAME=filespace\nAGENT_NAME=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "filespace.signalwire.com", cfg.SignalWire.Host())
	assert.Equal(t, "from-env", cfg.Agent.Name)
}

func TestLoadFrom_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := config.LoadFrom(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestEnsureBasicAuthPassword(t *testing.T) {
	c := config.AgentConfig{}
	require.True(t, c.EnsureBasicAuthPassword())
	assert.Len(t, c.BasicAuthPassword, 32)

	generated := c.BasicAuthPassword
	assert.False(t, c.EnsureBasicAuthPassword())
	assert.Equal(t, generated, c.BasicAuthPassword)
}
