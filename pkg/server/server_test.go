package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voiceagent/example-agent/internal/config"
	"github.com/voiceagent/example-agent/internal/fabric"
	"github.com/voiceagent/example-agent/pkg/server"
)

// fakeFabric stands in for the vendor API on both the registration and the
// token side.
type fakeFabric struct {
	listErr error
	tokens  []fabric.GuestTokenRequest
}

func (f *fakeFabric) ListHandlers(ctx context.Context) ([]fabric.Handler, error) {
	return nil, f.listErr
}

func (f *fakeFabric) CreateHandler(ctx context.Context, req fabric.CreateHandlerRequest) (*fabric.Handler, error) {
	return &fabric.Handler{ID: "h1"}, nil
}

func (f *fakeFabric) UpdateHandler(ctx context.Context, id string, req fabric.UpdateHandlerRequest) error {
	return nil
}

func (f *fakeFabric) ListAddresses(ctx context.Context, handlerID string) ([]fabric.Address, error) {
	return []fabric.Address{{ID: "addr-1", Channels: fabric.AddressChannels{Audio: "/public/example"}}}, nil
}

func (f *fakeFabric) CreateGuestToken(ctx context.Context, req fabric.GuestTokenRequest) (string, error) {
	f.tokens = append(f.tokens, req)
	return "guest-jwt", nil
}

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 5000, Version: "test", WebDir: t.TempDir()},
		SignalWire: config.SignalWireConfig{
			SpaceName: "myspace", ProjectID: "p", Token: "t",
		},
		Agent: config.AgentConfig{
			Name:          "example",
			Route:         "example",
			AppURL:        "https://app.example.com",
			BasicAuthUser: "signalwire",
		},
		Tokens: config.TokenConfig{RatePerMinute: 60, Burst: 10},
	}
}

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]string) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestNewWithConfig_RegistersBeforeServing(t *testing.T) {
	api := &fakeFabric{}
	srv, err := server.NewWithConfig(context.Background(), newConfig(t), server.Options{HandlerAPI: api, Tokens: api})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:5000", srv.Addr)
	require.NotNil(t, srv.Registration)
	assert.Equal(t, "addr-1", srv.Registration.AddressID)
	// A password was generated and embedded in the callback URL.
	assert.NotEmpty(t, srv.Config.Agent.BasicAuthPassword)
	assert.Contains(t, srv.Registration.CallbackURL, "signalwire:"+srv.Config.Agent.BasicAuthPassword+"@app.example.com/example")

	_, ready := getJSON(t, srv.Handler, "/ready")
	assert.Equal(t, "ready", ready["status"])

	code, tok := getJSON(t, srv.Handler, "/get_token")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "guest-jwt", tok["token"])
	assert.Equal(t, "/public/example", tok["address"])
	require.Len(t, api.tokens, 1)
	assert.Equal(t, []string{"addr-1"}, api.tokens[0].AllowedAddresses)
}

func TestNewWithConfig_RegistrationFailureIsNotFatal(t *testing.T) {
	api := &fakeFabric{listErr: errors.New("unreachable")}
	srv, err := server.NewWithConfig(context.Background(), newConfig(t), server.Options{HandlerAPI: api, Tokens: api})
	require.NoError(t, err)
	assert.Nil(t, srv.Registration)

	code, health := getJSON(t, srv.Handler, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", health["status"])

	_, ready := getJSON(t, srv.Handler, "/ready")
	assert.Equal(t, "initializing", ready["status"])

	code, _ = getJSON(t, srv.Handler, "/get_token")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Empty(t, api.tokens)
}

func TestNewWithConfig_WithoutCredentials(t *testing.T) {
	cfg := newConfig(t)
	cfg.SignalWire = config.SignalWireConfig{}

	srv, err := server.NewWithConfig(context.Background(), cfg, server.Options{})
	require.NoError(t, err)
	assert.Nil(t, srv.Registration)

	code, body := getJSON(t, srv.Handler, "/get_token")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "SignalWire credentials not configured", body["error"])
}
