package client

import (
	"net/http"
	"strings"
	"time"

	"brandpulse/config"
)

// AnalysisClient is a thin HTTP client for the analysis service API
type AnalysisClient struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes an AnalysisClient
type Option func(*AnalysisClient)

// WithHTTPClient replaces the underlying HTTP client (tests, proxies)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *AnalysisClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *AnalysisClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewAnalysisClient creates a client for the service at baseURL
func NewAnalysisClient(baseURL string, opts ...Option) *AnalysisClient {
	if baseURL == "" {
		baseURL = config.DefaultAPIURL
	}
	c := &AnalysisClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service address the client talks to
func (c *AnalysisClient) BaseURL() string {
	return c.baseURL
}
