package ingest

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FinancialsReported is the provider response for one symbol's reported financials.
// Data is ordered most-recent-first; an absent or empty Data means "no data".
type FinancialsReported struct {
	Symbol string   `json:"symbol"`
	CIK    string   `json:"cik"`
	Data   []Filing `json:"data"`
	Error  string   `json:"error,omitempty"`
}

// Filing is one yearly (or quarterly) report.
type Filing struct {
	AccessNumber string `json:"accessNumber"`
	Symbol       string `json:"symbol"`
	CIK          string `json:"cik"`
	Year         int    `json:"year"`
	Quarter      int    `json:"quarter"`
	Form         string `json:"form"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	FiledDate    string `json:"filedDate"`
	Report       Report `json:"report"`
}

// Report holds the labeled line items per statement.
type Report struct {
	BS []ReportItem `json:"bs"` // balance sheet
	IC []ReportItem `json:"ic"` // income statement
	CF []ReportItem `json:"cf"` // cash flow
}

type ReportItem struct {
	Label   string      `json:"label"`
	Concept string      `json:"concept"`
	Unit    string      `json:"unit"`
	Value   ReportValue `json:"value"`
}

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// ReportValue is a line-item amount. The provider sends JSON numbers (integral or
// fractional) and occasionally strings; anything non-numeric decodes as invalid
// rather than failing the whole payload.
type ReportValue struct {
	Decimal decimal.Decimal
	Valid   bool
}

func (v *ReportValue) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" || s == "null" {
		*v = ReportValue{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		*v = ReportValue{}
		return nil
	}
	*v = ReportValue{Decimal: d, Valid: true}
	return nil
}

func (v ReportValue) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Decimal)
}

// Int64 truncates toward zero. Values outside the int64 range are treated as missing.
func (v ReportValue) Int64() *int64 {
	if !v.Valid {
		return nil
	}
	d := v.Decimal.Truncate(0)
	if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return nil
	}
	n := d.IntPart()
	return &n
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// parseDate returns the calendar date of a provider timestamp, or nil when unparsable.
func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
