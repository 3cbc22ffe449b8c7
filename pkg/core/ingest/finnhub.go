// Package ingest fetches reported financials from Finnhub and normalizes them
// into FinancialRecords.
// API Documentation: https://finnhub.io/docs/api/financials-reported
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"financial_insights/pkg/core/utils"

	"golang.org/x/time/rate"
)

const (
	DefaultFinnhubBaseURL = "https://finnhub.io/api/v1"
	DefaultTimeout        = 30 * time.Second

	// FrequencyAnnual requests yearly (10-K) filings.
	FrequencyAnnual = "annual"

	financialsReportedPath = "/stock/financials-reported"
)

// StatusError is returned when the provider answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
	Symbol     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("finnhub returned status %d for %s: %s", e.StatusCode, e.Symbol, e.Body)
}

// FinnhubClient handles Finnhub REST requests. Safe for concurrent use.
type FinnhubClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the FinnhubClient.
type ClientOption func(*FinnhubClient)

// WithBaseURL sets a custom base URL (tests point this at httptest servers).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *FinnhubClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout bounds each request. A timed-out request fails only its symbol.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *FinnhubClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *FinnhubClient) {
		c.httpClient = httpClient
	}
}

// WithRateLimit spaces requests from this client. Zero or negative disables it.
func WithRateLimit(requestsPerSecond float64) ClientOption {
	return func(c *FinnhubClient) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// NewFinnhubClient creates a new Finnhub API client.
func NewFinnhubClient(apiKey string, opts ...ClientOption) *FinnhubClient {
	c := &FinnhubClient{
		baseURL: DefaultFinnhubBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FinancialsReported retrieves the reported financials for a symbol.
// A successful call with an empty Data slice is a valid "no data" answer.
func (c *FinnhubClient) FinancialsReported(ctx context.Context, symbol, freq string) (*FinancialsReported, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("freq", freq)
	reqURL := c.baseURL + financialsReportedPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Finnhub-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finnhub request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200), Symbol: symbol}
	}

	return DecodeFinancials(body)
}

// DecodeFinancials parses a provider payload, repairing slightly malformed JSON
// when possible. An "error" field in the payload is reported as a failure.
func DecodeFinancials(body []byte) (*FinancialsReported, error) {
	var out FinancialsReported
	if _, err := utils.SmartParse(string(body), &out); err != nil {
		return nil, fmt.Errorf("malformed provider payload: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("finnhub error: %s", out.Error)
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
