package analyzer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"brandpulse/config"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"
)

// CohereAnalyzer implements Analyzer using the Cohere Chat API (v2)
// SDK: github.com/cohere-ai/cohere-go/v2
type CohereAnalyzer struct {
	client *cohereclient.Client
	model  string
}

// CohereOption configures a CohereAnalyzer
type CohereOption func(*cohereOptions)

type cohereOptions struct {
	baseURL    string
	httpClient *http.Client
}

// WithCohereBaseURL points the client at another Cohere-compatible endpoint
func WithCohereBaseURL(u string) CohereOption {
	return func(o *cohereOptions) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithCohereHTTPClient overrides the HTTP client
func WithCohereHTTPClient(c *http.Client) CohereOption {
	return func(o *cohereOptions) { o.httpClient = c }
}

// NewCohereAnalyzer creates a chat based analyzer. An empty model selects the default.
// The SDK makes a single attempt per call; rate limits are retried by Retrying.
func NewCohereAnalyzer(apiKey, model string, opts ...CohereOption) (*CohereAnalyzer, error) {
	if apiKey == "" {
		return nil, errors.New("COHERE_API_KEY is not set")
	}
	if model == "" {
		model = config.DefaultCohereModel
	}

	o := cohereOptions{
		// Force HTTP/1.1 to avoid HTTP/2 protocol errors
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
				ForceAttemptHTTP2: false,
			},
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	clientOpts := []option.RequestOption{
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(o.httpClient),
		cohereclient.WithMaxAttempts(1),
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, cohereclient.WithBaseURL(o.baseURL))
	}
	return &CohereAnalyzer{client: cohereclient.NewClient(clientOpts...), model: model}, nil
}

// Model returns the chat model name
func (c *CohereAnalyzer) Model() string { return c.model }

// Analyze implements Analyzer
func (c *CohereAnalyzer) Analyze(ctx context.Context, prompt, input string) (string, error) {
	temperature := config.Temperature
	maxTokens := config.MaxTokens

	resp, err := c.client.V2.Chat(ctx, &cohere.V2ChatRequest{
		Model: c.model,
		Messages: cohere.ChatMessages{
			{
				Role: "user",
				User: &cohere.UserMessageV2{Content: &cohere.UserMessageV2Content{
					String: BuildPrompt(prompt, input),
				}},
			},
		},
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		var tooMany *cohere.TooManyRequestsError
		if errors.As(err, &tooMany) {
			return "", rateLimitError{err: err}
		}
		return "", fmt.Errorf("cohere chat error: %w", err)
	}
	if resp == nil || resp.Message == nil {
		return "", errors.New("cohere chat returned empty response")
	}

	var b strings.Builder
	for _, item := range resp.Message.Content {
		if item != nil && item.Text != nil {
			b.WriteString(item.Text.Text)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

type rateLimitError struct{ err error }

func (e rateLimitError) Error() string     { return "rate_limit: " + e.err.Error() }
func (e rateLimitError) Unwrap() error     { return e.err }
func (e rateLimitError) RateLimited() bool { return true }
