package ingest

import (
	"errors"
	"strings"

	"financial_insights/pkg/models"
)

// ErrNoData means the provider returned no filings for the symbol.
// It is a declared outcome: callers skip persistence for the symbol.
var ErrNoData = errors.New("no financial data available")

// Labels of the line items pulled from the latest report.
const (
	LabelRevenue          = "Revenues"
	LabelNetIncome        = "Net income"
	LabelTotalAssets      = "Total assets"
	LabelTotalLiabilities = "Total liabilities"
)

// Extract normalizes the latest filing of a provider response into a FinancialRecord.
//
// The first entry of Data is taken as the latest report. Each metric is looked up
// by case-insensitive exact label in its statement; a missing label leaves that
// field nil without failing the record. The symbol hint is used when the provider
// omits the symbol.
func Extract(raw *FinancialsReported, symbolHint string) (models.FinancialRecord, error) {
	if raw == nil || len(raw.Data) == 0 {
		return models.FinancialRecord{}, ErrNoData
	}

	latest := raw.Data[0]
	bs := latest.Report.BS
	ic := latest.Report.IC

	symbol := strings.TrimSpace(raw.Symbol)
	if symbol == "" {
		symbol = strings.TrimSpace(symbolHint)
	}

	return models.FinancialRecord{
		Symbol:      symbol,
		CIK:         firstNonEmpty(raw.CIK, latest.CIK),
		Year:        latest.Year,
		StartDate:   parseDate(latest.StartDate),
		EndDate:     parseDate(latest.EndDate),
		Revenue:     FindValue(ic, LabelRevenue),
		NetIncome:   FindValue(ic, LabelNetIncome),
		Assets:      FindValue(bs, LabelTotalAssets),
		Liabilities: FindValue(bs, LabelTotalLiabilities),
	}, nil
}

// FindValue returns the value of the first item whose label matches, ignoring case.
func FindValue(items []ReportItem, label string) *int64 {
	for _, item := range items {
		if strings.EqualFold(item.Label, label) {
			return item.Value.Int64()
		}
	}
	return nil
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return &v
		}
	}
	return nil
}
