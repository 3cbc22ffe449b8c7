package insight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider implements llm.Provider for testing
type MockProvider struct {
	GenerateFunc func(ctx context.Context, prompt, systemPrompt string) (string, error)
	prompts      []string
	systems      []string
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.systems = append(m.systems, systemPrompt)
	return m.GenerateFunc(ctx, prompt, systemPrompt)
}

func int64Ptr(v int64) *int64 { return &v }

func sampleRecord() models.FinancialRecord {
	cik := "320193"
	start := time.Date(2022, 9, 25, 0, 0, 0, 0, time.UTC)
	end := time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)
	return models.FinancialRecord{
		ID:          1,
		Symbol:      "AAPL",
		CIK:         &cik,
		Year:        2023,
		StartDate:   &start,
		EndDate:     &end,
		Revenue:     int64Ptr(383285000000),
		NetIncome:   int64Ptr(96995000000),
		Assets:      int64Ptr(352583000000),
		Liabilities: nil,
	}
}

func TestGenerate_Success(t *testing.T) {
	mock := &MockProvider{GenerateFunc: func(ctx context.Context, prompt, systemPrompt string) (string, error) {
		return "Strong margins.", nil
	}}
	g := NewGenerator(mock, nil, nil)

	res := g.Generate(context.Background(), sampleRecord())

	assert.False(t, res.Failed())
	assert.Equal(t, "Strong margins.", res.Recommendation())
	require.Len(t, mock.prompts, 1)
	assert.Equal(t, "You are a business analyst providing company performance insights.", mock.systems[0])

	p := mock.prompts[0]
	assert.Contains(t, p, "Generate performance insights and recommendations based on this data:\n")
	for _, want := range []string{"AAPL", "320193", "2023", "2022-09-25", "2023-09-30", "383285000000", "96995000000", "352583000000", "Total liabilities: n/a"} {
		assert.Contains(t, p, want)
	}
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := &MockProvider{GenerateFunc: func(ctx context.Context, prompt, systemPrompt string) (string, error) {
		return "", errors.New("connection refused")
	}}
	res := NewGenerator(mock, nil, nil).Generate(context.Background(), sampleRecord())

	assert.True(t, res.Failed())
	assert.Equal(t, "❌ LLM API error: connection refused", res.Recommendation())
}

func TestGenerate_Panic(t *testing.T) {
	mock := &MockProvider{GenerateFunc: func(ctx context.Context, prompt, systemPrompt string) (string, error) {
		panic("boom")
	}}
	res := NewGenerator(mock, nil, nil).Generate(context.Background(), sampleRecord())

	assert.True(t, res.Failed())
	assert.Contains(t, res.Recommendation(), ErrorPrefix)
}

func TestGenerate_AgainstChatServer(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantFailed bool
		wantText   string
	}{
		{
			name:     "verbatim content",
			status:   http.StatusOK,
			body:     `{"choices":[{"message":{"role":"assistant","content":"  Keep investing.\n"}}]}`,
			wantText: "  Keep investing.\n",
		},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantFailed: true},
		{name: "malformed body", status: http.StatusOK, body: `{"choices":`, wantFailed: true},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantFailed: true},
		{name: "choice without content", status: http.StatusOK, body: `{"choices":[{}]}`, wantFailed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := llm.NewChatProvider("groq", srv.URL, "key", "", 0.7, 1024, 5*time.Second)
			res := NewGenerator(p, nil, nil).Generate(context.Background(), sampleRecord())

			assert.Equal(t, tt.wantFailed, res.Failed())
			if tt.wantFailed {
				assert.Contains(t, res.Recommendation(), ErrorPrefix)
			} else {
				assert.Equal(t, tt.wantText, res.Recommendation())
			}
		})
	}
}

func TestNewPromptData_AllMissing(t *testing.T) {
	d := NewPromptData(models.FinancialRecord{Symbol: "MSFT"})

	assert.Equal(t, "n/a", d.CIK)
	assert.Equal(t, "n/a", d.Year)
	assert.Equal(t, "n/a", d.StartDate)
	assert.Equal(t, "n/a", d.EndDate)
	assert.Equal(t, "n/a", d.Revenue)
	assert.Contains(t, d.Summary, "Symbol: MSFT")
}
