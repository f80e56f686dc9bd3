// Package fabric is a small client for the vendor's Fabric REST API: external
// SWML handler resources, their addresses and guest tokens.
package fabric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voiceagent/example-agent/internal/metrics"
)

const (
	handlersPath    = "/api/fabric/resources/external_swml_handlers"
	guestTokensPath = "/api/fabric/guests/tokens"

	defaultMaxPages = 50
)

var tracer = otel.Tracer("example-agent/fabric")

// ErrTooManyPages is returned when a list call keeps returning next links
// past the configured page limit.
var ErrTooManyPages = errors.New("fabric: page limit exceeded")

// APIError is a non-2xx response from the Fabric API.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fabric %s returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client talks to one space's Fabric API using project/token basic auth.
type Client struct {
	baseURL    *url.URL
	projectID  string
	token      string
	maxPages   int
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL points the client at another server (tests, proxies).
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if u, err := url.Parse(strings.TrimRight(raw, "/")); err == nil {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxPages bounds how many pages a list call will follow.
func WithMaxPages(n int) Option {
	return func(c *Client) { c.maxPages = n }
}

// NewClient creates a client for https://{host}.
func NewClient(host, projectID, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    &url.URL{Scheme: "https", Host: host},
		projectID:  projectID,
		token:      token,
		maxPages:   defaultMaxPages,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Wire types ──────────────────────────────────────────────

// Handler is an external SWML handler resource.
type Handler struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name,omitempty"`
	Webhook     SWMLWebhook `json:"swml_webhook"`
}

type SWMLWebhook struct {
	Name                 string `json:"name,omitempty"`
	PrimaryRequestURL    string `json:"primary_request_url,omitempty"`
	PrimaryRequestMethod string `json:"primary_request_method,omitempty"`
}

// Name is the webhook name, falling back to the display name.
func (h Handler) Name() string {
	if h.Webhook.Name != "" {
		return h.Webhook.Name
	}
	return h.DisplayName
}

// Address is a dialable address attached to a resource.
type Address struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Channels AddressChannels `json:"channels"`
}

type AddressChannels struct {
	Audio     string `json:"audio,omitempty"`
	Video     string `json:"video,omitempty"`
	Messaging string `json:"messaging,omitempty"`
}

type CreateHandlerRequest struct {
	Name                 string `json:"name"`
	UsedFor              string `json:"used_for"`
	PrimaryRequestURL    string `json:"primary_request_url"`
	PrimaryRequestMethod string `json:"primary_request_method"`
}

type UpdateHandlerRequest struct {
	PrimaryRequestURL    string `json:"primary_request_url"`
	PrimaryRequestMethod string `json:"primary_request_method"`
}

type GuestTokenRequest struct {
	AllowedAddresses []string `json:"allowed_addresses"`
	ExpireAt         int64    `json:"expire_at"`
}

type listResponse[T any] struct {
	Data  []T `json:"data"`
	Links struct {
		Next string `json:"next,omitempty"`
	} `json:"links"`
}

type guestTokenResponse struct {
	Token string `json:"token"`
}

// ── Operations ──────────────────────────────────────────────

// ListHandlers returns every external SWML handler in the project,
// following next links up to the page limit.
func (c *Client) ListHandlers(ctx context.Context) ([]Handler, error) {
	return listAll[Handler](ctx, c, "list_handlers", c.endpoint(handlersPath))
}

// CreateHandler creates a new external SWML handler.
func (c *Client) CreateHandler(ctx context.Context, req CreateHandlerRequest) (*Handler, error) {
	var h Handler
	if err := c.do(ctx, "create_handler", http.MethodPost, c.endpoint(handlersPath), req, &h); err != nil {
		return nil, err
	}
	if h.ID == "" {
		return nil, fmt.Errorf("create handler: response has no id")
	}
	return &h, nil
}

// UpdateHandler changes the callback URL of an existing handler.
func (c *Client) UpdateHandler(ctx context.Context, id string, req UpdateHandlerRequest) error {
	return c.do(ctx, "update_handler", http.MethodPut, c.endpoint(handlersPath+"/"+url.PathEscape(id)), req, nil)
}

// ListAddresses returns the addresses attached to a handler.
func (c *Client) ListAddresses(ctx context.Context, handlerID string) ([]Address, error) {
	return listAll[Address](ctx, c, "list_addresses", c.endpoint(handlersPath+"/"+url.PathEscape(handlerID)+"/addresses"))
}

// CreateGuestToken mints a guest token allowed to dial only the given
// addresses until expireAt.
func (c *Client) CreateGuestToken(ctx context.Context, req GuestTokenRequest) (string, error) {
	var resp guestTokenResponse
	if err := c.do(ctx, "create_guest_token", http.MethodPost, c.endpoint(guestTokensPath), req, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("create guest token: response has no token")
	}
	return resp.Token, nil
}

func listAll[T any](ctx context.Context, c *Client, op, first string) ([]T, error) {
	var out []T
	next := first
	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			return nil, fmt.Errorf("%s: %w (%d)", op, ErrTooManyPages, c.maxPages)
		}
		var resp listResponse[T]
		if err := c.do(ctx, op, http.MethodGet, next, nil, &resp); err != nil {
			return nil, err
		}
		out = append(out, resp.Data...)

		n, err := c.resolveNext(resp.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		next = n
	}
	return out, nil
}

// resolveNext turns a next link into an absolute URL on our host. Links to
// another host or over another scheme are refused: credentials only go to
// the configured origin.
func (c *Client) resolveNext(link string) (string, error) {
	if link == "" {
		return "", nil
	}
	u, err := c.baseURL.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse next link: %w", err)
	}
	if u.Host != c.baseURL.Host {
		return "", fmt.Errorf("next link points at foreign host %q", u.Host)
	}
	if u.Scheme != c.baseURL.Scheme {
		return "", fmt.Errorf("next link changes scheme from %s to %s", c.baseURL.Scheme, u.Scheme)
	}
	return u.String(), nil
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

func (c *Client) do(ctx context.Context, op, method, target string, in, out any) (err error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "fabric."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("fabric.operation", op),
		),
	)
	defer func() {
		metrics.ObserveFabricCall(op, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.projectID, c.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: http request: %w", op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: unmarshal response: %w", op, err)
	}
	return nil
}
