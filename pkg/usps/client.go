// Package usps provides the USPS Addresses v3 API client: OAuth2
// client-credentials token acquisition and single-record address validation
// with total failure capture.
package usps

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for USPS API operations.
var (
	uspsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usps_requests_total",
		Help: "Total USPS address verification requests by status",
	}, []string{"status"})

	uspsRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "usps_request_duration_seconds",
		Help:    "USPS address verification request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	uspsErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usps_errors_total",
		Help: "Total failed USPS address verification requests by class",
	}, []string{"class"})

	uspsTokenRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "usps_token_requests_total",
		Help: "Total token endpoint calls by outcome",
	}, []string{"outcome"})
)

// Client is the USPS API client. Validation failures never surface as
// errors from Client methods; they are captured into Result rows so that
// one bad address cannot abort a batch.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// OAuth2 client credentials from the USPS developer portal.
	ClientID     string
	ClientSecret string

	// TokenURL is the OAuth2 token endpoint.
	TokenURL string

	// AddressAPIURL is the Addresses v3 verification endpoint.
	AddressAPIURL string

	// Timeout is the per-request timeout (default 30s).
	Timeout time.Duration
}

// New creates a new USPS client.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client secret is required")
	}

	if cfg.TokenURL == "" {
		return nil, fmt.Errorf("token url is required")
	}

	if cfg.AddressAPIURL == "" {
		return nil, fmt.Errorf("address api url is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "usps-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
