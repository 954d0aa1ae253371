// Package client talks to the NetSentinel backend HTTP API.
//
// Basic usage:
//
//	c := client.New("http://localhost:8000")
//	inc, err := c.Incident(ctx, "INC-REAL-1234")
//
// All requests target the single configured base address. There is no
// authentication, retry, or backoff; callers rely on the transport timeout.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/netsentinel/sentryview/internal/model"
)

// Simulation kinds accepted by POST /simulate/{kind}.
const (
	SimPortScan = "portscan"
	SimUDPFlood = "udpflood"
)

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// Client sends requests to the NetSentinel backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTracing wraps the transport with OpenTelemetry HTTP instrumentation.
func WithTracing() Option {
	return func(c *Client) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient.Transport = otelhttp.NewTransport(base)
	}
}

// WithHTTPClient replaces the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Incident fetches the full record for an incident by id.
func (c *Client) Incident(ctx context.Context, incidentID string) (*model.FullIncident, error) {
	if incidentID == "" {
		return nil, fmt.Errorf("incident id is empty")
	}
	endpoint := "/incident/" + url.PathEscape(incidentID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching incident: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}

	var inc model.FullIncident
	if err := json.NewDecoder(resp.Body).Decode(&inc); err != nil {
		return nil, fmt.Errorf("decoding incident: %w", err)
	}
	return &inc, nil
}

// Simulate triggers a synthetic attack of the given kind against the backend
// (digital twin mode). Kind must be one of the Sim* constants.
func (c *Client) Simulate(ctx context.Context, kind string) error {
	switch kind {
	case SimPortScan, SimUDPFlood:
	default:
		return fmt.Errorf("unknown simulation kind %q", kind)
	}
	return c.post(ctx, "/simulate/"+kind)
}

// Mitigate asks the backend to redirect the given source address to the
// honeypot. No meaningful response body is expected.
func (c *Client) Mitigate(ctx context.Context, ip string) error {
	if ip == "" {
		return fmt.Errorf("mitigation ip is empty")
	}
	return c.post(ctx, "/mitigate/block_ip/"+url.PathEscape(ip))
}

func (c *Client) post(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	// Body content is not meaningful; drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
	}
	return nil
}
