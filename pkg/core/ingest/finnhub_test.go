package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinnhubClient_FinancialsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/financials-reported", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "annual", r.URL.Query().Get("freq"))
		assert.Equal(t, "test-key", r.Header.Get("X-Finnhub-Token"))
		_, _ = w.Write([]byte(`{"symbol":"AAPL","cik":"320193","data":[{"year":2023,"report":{"ic":[{"label":"Revenues","value":10}]}}]}`))
	}))
	defer srv.Close()

	c := NewFinnhubClient("test-key", WithBaseURL(srv.URL+"/"), WithRateLimit(0))
	raw, err := c.FinancialsReported(context.Background(), "AAPL", FrequencyAnnual)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", raw.Symbol)
	require.Len(t, raw.Data, 1)
	assert.Equal(t, int64(10), *FindValue(raw.Data[0].Report.IC, "Revenues"))
}

type countingTransport struct {
	calls int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.calls++
	return http.DefaultTransport.RoundTrip(req)
}

func TestFinnhubClient_WithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"GOOGL","data":[]}`))
	}))
	defer srv.Close()

	transport := &countingTransport{}
	c := NewFinnhubClient("k", WithBaseURL(srv.URL), WithHTTPClient(&http.Client{Transport: transport}), WithRateLimit(0))

	raw, err := c.FinancialsReported(context.Background(), "GOOGL", FrequencyAnnual)
	require.NoError(t, err)
	assert.Equal(t, "GOOGL", raw.Symbol)
	assert.Equal(t, 1, transport.calls)
}

func TestFinnhubClient_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"API limit reached"}`))
	}))
	defer srv.Close()

	c := NewFinnhubClient("k", WithBaseURL(srv.URL))
	_, err := c.FinancialsReported(context.Background(), "MSFT", FrequencyAnnual)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, "MSFT", statusErr.Symbol)
}

func TestFinnhubClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewFinnhubClient("k", WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := c.FinancialsReported(context.Background(), "AAPL", FrequencyAnnual)
	assert.Error(t, err)
}

func TestFinnhubClient_RateLimitHonorsContext(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewFinnhubClient("k", WithBaseURL(srv.URL), WithRateLimit(0.01))
	_, err := c.FinancialsReported(context.Background(), "AAPL", FrequencyAnnual)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.FinancialsReported(ctx, "MSFT", FrequencyAnnual)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDecodeFinancials(t *testing.T) {
	t.Run("trailing comma repaired", func(t *testing.T) {
		raw, err := DecodeFinancials([]byte(`{"symbol":"AAPL","data":[{"year":2023,"report":{}},],}`))
		require.NoError(t, err)
		assert.Len(t, raw.Data, 1)
	})

	t.Run("error field", func(t *testing.T) {
		_, err := DecodeFinancials([]byte(`{"error":"You don't have access to this resource."}`))
		assert.Error(t, err)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := DecodeFinancials([]byte(`[1, 2, 3]`))
		assert.Error(t, err)
	})
}
