package models

import (
	"time"
)

// FinancialRecord is one fiscal-year filing for one symbol, as stored in companies_raw.
// Symbol is the natural key: a later fetch for the same symbol overwrites every other field.
type FinancialRecord struct {
	ID        int64      `json:"id"`
	Symbol    string     `json:"symbol"`
	CIK       *string    `json:"cik"`
	Year      int        `json:"year"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	// Nil when the labeled line item was not found in the report.
	Revenue     *int64 `json:"revenue"`
	NetIncome   *int64 `json:"net_income"`
	Assets      *int64 `json:"assets"`
	Liabilities *int64 `json:"liabilities"`
}

// Recommendation is one generated insight tied to a FinancialRecord.
// The text may be an error-marked string when generation failed.
type Recommendation struct {
	ID             int64  `json:"id"`
	CompanyID      int64  `json:"company_id"`
	Recommendation string `json:"recommendation"`
}

// DateLayout is the calendar-date rendering used for start_date/end_date.
const DateLayout = "2006-01-02"

// FormatDate renders a nullable date, returning nil when absent.
func FormatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
