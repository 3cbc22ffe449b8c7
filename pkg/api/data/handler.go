package data

import (
	"context"
	"encoding/json"
	"net/http"

	"financial_insights/pkg/core/utils"
	"financial_insights/pkg/models"

	"github.com/ternarybob/arbor"
)

// CompanyLister lists stored financial records.
type CompanyLister interface {
	List(ctx context.Context) ([]models.FinancialRecord, error)
}

// RecommendationLister lists stored recommendations.
type RecommendationLister interface {
	List(ctx context.Context) ([]models.Recommendation, error)
}

// Company is the wire form of a FinancialRecord. Dates are YYYY-MM-DD or null.
type Company struct {
	ID          int64   `json:"id"`
	Symbol      string  `json:"symbol"`
	CIK         *string `json:"cik"`
	Year        int     `json:"year"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Revenue     *int64  `json:"revenue"`
	NetIncome   *int64  `json:"net_income"`
	Assets      *int64  `json:"assets"`
	Liabilities *int64  `json:"liabilities"`
}

type Recommendation struct {
	CompanyID          int64  `json:"company_id"`
	Recommendation     string `json:"recommendation"`
	RecommendationHTML string `json:"recommendation_html,omitempty"`
}

type Response struct {
	Companies       []Company        `json:"companies"`
	Recommendations []Recommendation `json:"recommendations"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the combined company and recommendation view.
type Handler struct {
	companies       CompanyLister
	recommendations RecommendationLister
	logger          arbor.ILogger
}

// NewHandler creates a data handler
func NewHandler(companies CompanyLister, recommendations RecommendationLister, logger arbor.ILogger) *Handler {
	if logger == nil {
		logger = arbor.NewNoOpLogger()
	}
	return &Handler{companies: companies, recommendations: recommendations, logger: logger}
}

// HandleData returns every stored company and recommendation.
// With ?format=html each recommendation also carries its rendered markdown.
func (h *Handler) HandleData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companies, err := h.companies.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list companies")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch data"})
		return
	}

	recs, err := h.recommendations.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list recommendations")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch data"})
		return
	}

	withHTML := r.URL.Query().Get("format") == "html"

	resp := Response{
		Companies:       make([]Company, 0, len(companies)),
		Recommendations: make([]Recommendation, 0, len(recs)),
	}
	for _, c := range companies {
		resp.Companies = append(resp.Companies, Company{
			ID:          c.ID,
			Symbol:      c.Symbol,
			CIK:         c.CIK,
			Year:        c.Year,
			StartDate:   models.FormatDate(c.StartDate),
			EndDate:     models.FormatDate(c.EndDate),
			Revenue:     c.Revenue,
			NetIncome:   c.NetIncome,
			Assets:      c.Assets,
			Liabilities: c.Liabilities,
		})
	}
	for _, rec := range recs {
		out := Recommendation{CompanyID: rec.CompanyID, Recommendation: rec.Recommendation}
		if withHTML {
			html, err := utils.RenderHTML(rec.Recommendation)
			if err != nil {
				h.logger.Warn().Int64("company_id", rec.CompanyID).Err(err).Msg("Failed to render recommendation")
			}
			out.RecommendationHTML = html
		}
		resp.Recommendations = append(resp.Recommendations, out)
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
