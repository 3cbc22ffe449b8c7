package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"financial_insights/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompanies struct{}

func (stubCompanies) List(ctx context.Context) ([]models.FinancialRecord, error) {
	return []models.FinancialRecord{{ID: 1, Symbol: "MSFT", Year: 2023}}, nil
}

type stubRecommendations struct{}

func (stubRecommendations) List(ctx context.Context) ([]models.Recommendation, error) {
	return []models.Recommendation{{ID: 1, CompanyID: 1, Recommendation: "Hold"}}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	opts.Companies = stubCompanies{}
	opts.Recommendations = stubRecommendations{}
	srv := httptest.NewServer(NewServer(opts).Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string, header map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_DataWithCORS(t *testing.T) {
	srv := newTestServer(t, Options{})

	resp, body := get(t, srv.URL+"/api/data", map[string]string{"Origin": "http://localhost:3000"})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, body, `"symbol":"MSFT"`)
	assert.Contains(t, body, `"recommendation":"Hold"`)
}

func TestServer_Health(t *testing.T) {
	t.Run("no database configured", func(t *testing.T) {
		srv := newTestServer(t, Options{})
		resp, body := get(t, srv.URL+"/healthz", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"status":"ok"}`, body)
	})

	t.Run("database down", func(t *testing.T) {
		srv := newTestServer(t, Options{DB: stubPinger{err: errors.New("dial tcp: refused")}})
		resp, _ := get(t, srv.URL+"/healthz", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestServer_StaticFrontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Insights</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.js"), []byte("fetch('/api/data')"), 0o644))

	srv := newTestServer(t, Options{StaticDir: dir})

	resp, body := get(t, srv.URL+"/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Insights")

	resp, body = get(t, srv.URL+"/script.js", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "/api/data")

	resp, _ = get(t, srv.URL+"/api/data", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_MissingStaticDir(t *testing.T) {
	srv := newTestServer(t, Options{StaticDir: filepath.Join(t.TempDir(), "missing")})

	resp, _ := get(t, srv.URL+"/", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServer(Options{Companies: stubCompanies{}, Recommendations: stubRecommendations{}}).ListenAndServe(ctx, "127.0.0.1:0")
	}()

	cancel()
	assert.NoError(t, <-done)
}
