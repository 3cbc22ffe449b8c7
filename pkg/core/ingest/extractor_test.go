package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) *FinancialsReported {
	t.Helper()
	raw, err := DecodeFinancials([]byte(body))
	require.NoError(t, err)
	return raw
}

func TestExtract_LatestFiling(t *testing.T) {
	raw := decode(t, `{
		"symbol": "AAPL",
		"cik": "320193",
		"data": [
			{"year": 2023, "startDate": "2022-09-25 00:00:00", "endDate": "2023-09-30 00:00:00",
			 "report": {
				"bs": [{"label": "Total assets", "value": 352583000000}, {"label": "Total liabilities", "value": 290437000000}],
				"ic": [{"label": "Revenues", "value": 383285000000}, {"label": "Net income", "value": 96995000000}]
			 }},
			{"year": 2022, "report": {"ic": [{"label": "Revenues", "value": 1}]}}
		]
	}`)

	rec, err := Extract(raw, "ignored")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", rec.Symbol)
	require.NotNil(t, rec.CIK)
	assert.Equal(t, "320193", *rec.CIK)
	assert.Equal(t, 2023, rec.Year)
	assert.Equal(t, time.Date(2022, 9, 25, 0, 0, 0, 0, time.UTC), *rec.StartDate)
	assert.Equal(t, time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC), *rec.EndDate)
	assert.Equal(t, int64(383285000000), *rec.Revenue)
	assert.Equal(t, int64(96995000000), *rec.NetIncome)
	assert.Equal(t, int64(352583000000), *rec.Assets)
	assert.Equal(t, int64(290437000000), *rec.Liabilities)
}

func TestExtract_NoData(t *testing.T) {
	tests := []struct {
		name string
		raw  *FinancialsReported
	}{
		{"nil payload", nil},
		{"absent data", decode(t, `{"symbol":"AAPL"}`)},
		{"empty data", decode(t, `{"symbol":"AAPL","data":[]}`)},
		{"empty object", decode(t, `{}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.raw, "AAPL")
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestExtract_MissingLabelLeavesNil(t *testing.T) {
	raw := decode(t, `{"symbol":"MSFT","data":[{"year":2023,"report":{"bs":[{"label":"Total liabilities","value":5}],"ic":[]}}]}`)

	rec, err := Extract(raw, "MSFT")
	require.NoError(t, err)

	assert.Nil(t, rec.Assets)
	assert.Nil(t, rec.Revenue)
	assert.Nil(t, rec.NetIncome)
	assert.Equal(t, int64(5), *rec.Liabilities)
	assert.Nil(t, rec.CIK)
	assert.Nil(t, rec.StartDate)
}

func TestExtract_SymbolFallsBackToHint(t *testing.T) {
	raw := decode(t, `{"data":[{"year":2021,"cik":"789019","report":{}}]}`)

	rec, err := Extract(raw, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "MSFT", rec.Symbol)
	assert.Equal(t, "789019", *rec.CIK)
}

func TestFindValue(t *testing.T) {
	items := decode(t, `{"data":[{"report":{"ic":[
		{"label":"NET INCOME","value":7},
		{"label":"Net income","value":9},
		{"label":"Revenues ","value":3},
		{"label":"Revenues","value":"12.9"},
		{"label":"Total assets","value":"n/a"},
		{"label":"Total liabilities","value":1e30}
	]}}]}`).Data[0].Report.IC

	assert.Equal(t, int64(7), *FindValue(items, "Net income"), "case-insensitive, first match wins")
	assert.Equal(t, int64(12), *FindValue(items, "revenues"), "exact match only, truncated toward zero")
	assert.Nil(t, FindValue(items, "Total assets"), "non-numeric value")
	assert.Nil(t, FindValue(items, "Total liabilities"), "out of int64 range")
	assert.Nil(t, FindValue(items, "Gross profit"))
	assert.Nil(t, FindValue(nil, "Revenues"))
}

func TestReportValue_Negative(t *testing.T) {
	items := decode(t, `{"data":[{"report":{"ic":[{"label":"Net income","value":-42.7},{"label":"Revenues","value":null}]}}]}`).Data[0].Report.IC

	assert.Equal(t, int64(-42), *FindValue(items, "Net income"))
	assert.Nil(t, FindValue(items, "Revenues"))
}

func TestParseDate(t *testing.T) {
	assert.Equal(t, time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC), *parseDate("2023-09-30"))
	assert.Equal(t, time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC), *parseDate("2023-09-30 00:00:00"))
	assert.Nil(t, parseDate(""))
	assert.Nil(t, parseDate("30/09/2023"))
}
