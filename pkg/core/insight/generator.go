// Package insight turns one stored financial record into a recommendation text
// using an LLM provider and the prompt library.
package insight

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/core/prompt"
	"financial_insights/pkg/models"

	"github.com/ternarybob/arbor"
)

// ErrorPrefix marks a stored recommendation whose generation failed.
const ErrorPrefix = "❌ LLM API error: "

// Result is the outcome of one generation call.
type Result struct {
	Text string
	Err  error
}

// Failed reports whether generation failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Recommendation returns the string to store: the generated text verbatim, or
// the error-marked cause.
func (r Result) Recommendation() string {
	if r.Err != nil {
		return ErrorPrefix + r.Err.Error()
	}
	return r.Text
}

// Generator produces recommendations for financial records.
type Generator struct {
	provider llm.Provider
	prompts  *prompt.Registry
	logger   arbor.ILogger
}

// NewGenerator creates a generator. A nil registry uses the built-in prompts.
func NewGenerator(provider llm.Provider, prompts *prompt.Registry, logger arbor.ILogger) *Generator {
	if prompts == nil {
		prompts = prompt.NewRegistry()
	}
	if logger == nil {
		logger = arbor.NewNoOpLogger()
	}
	return &Generator{provider: provider, prompts: prompts, logger: logger}
}

// Generate asks the provider for insights on rec. It never returns an error or
// panics; failures are carried in the Result.
func (g *Generator) Generate(ctx context.Context, rec models.FinancialRecord) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("panic during generation: %v", r)}
		}
	}()

	pt, err := g.prompts.GetPrompt(prompt.InsightCompanyPerformance)
	if err != nil {
		return Result{Err: err}
	}

	userPrompt, err := prompt.RenderUserPrompt(pt, NewPromptData(rec))
	if err != nil {
		return Result{Err: fmt.Errorf("failed to render prompt: %w", err)}
	}

	text, err := g.provider.GenerateResponse(ctx, userPrompt, pt.SystemPrompt)
	if err != nil {
		g.logger.Warn().Str("symbol", rec.Symbol).Str("provider", g.provider.Name()).Err(err).Msg("Generation failed")
		return Result{Err: err}
	}

	g.logger.Debug().Str("symbol", rec.Symbol).Int("chars", len(text)).Msg("Generated recommendation")
	return Result{Text: text}
}

// PromptData is the template context for insight prompts.
type PromptData struct {
	Symbol      string
	CIK         string
	Year        string
	StartDate   string
	EndDate     string
	Revenue     string
	NetIncome   string
	Assets      string
	Liabilities string
	Summary     string
}

// NewPromptData renders every field of rec, with "n/a" for missing values.
func NewPromptData(rec models.FinancialRecord) PromptData {
	d := PromptData{
		Symbol:      rec.Symbol,
		CIK:         naString(rec.CIK),
		Year:        "n/a",
		StartDate:   naDate(rec.StartDate),
		EndDate:     naDate(rec.EndDate),
		Revenue:     naInt(rec.Revenue),
		NetIncome:   naInt(rec.NetIncome),
		Assets:      naInt(rec.Assets),
		Liabilities: naInt(rec.Liabilities),
	}
	if rec.Year != 0 {
		d.Year = strconv.Itoa(rec.Year)
	}
	d.Summary = FormatRecord(d)
	return d
}

// FormatRecord renders the record as the summary block embedded in the prompt.
func FormatRecord(d PromptData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company financials:\n")
	fmt.Fprintf(&b, "- Symbol: %s\n", d.Symbol)
	fmt.Fprintf(&b, "- CIK: %s\n", d.CIK)
	fmt.Fprintf(&b, "- Fiscal year: %s\n", d.Year)
	fmt.Fprintf(&b, "- Period: %s to %s\n", d.StartDate, d.EndDate)
	fmt.Fprintf(&b, "- Revenue: %s\n", d.Revenue)
	fmt.Fprintf(&b, "- Net income: %s\n", d.NetIncome)
	fmt.Fprintf(&b, "- Total assets: %s\n", d.Assets)
	fmt.Fprintf(&b, "- Total liabilities: %s", d.Liabilities)
	return b.String()
}

func naString(s *string) string {
	if s == nil || *s == "" {
		return "n/a"
	}
	return *s
}

func naInt(v *int64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatInt(*v, 10)
}

func naDate(t *time.Time) string {
	if s := models.FormatDate(t); s != nil {
		return *s
	}
	return "n/a"
}
