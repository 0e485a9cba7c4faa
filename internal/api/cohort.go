package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/edihlab/maturity/internal/cohort"
	"github.com/edihlab/maturity/internal/panel"
)

type CohortHandler struct {
	merged       []cohort.MergedEntity
	after        *panel.Panel
	significance *cohort.SignificanceResult
	sigNote      string
}

// NewCohortHandler serves the merged cohort. significance may be nil when the
// cohort is too small to test; note then carries the reason.
func NewCohortHandler(merged []cohort.MergedEntity, after *panel.Panel, significance *cohort.SignificanceResult, note string) *CohortHandler {
	return &CohortHandler{merged: merged, after: after, significance: significance, sigNote: note}
}

type SummaryResponse struct {
	cohort.Summary
	Significance     *cohort.SignificanceResult `json:"significance,omitempty"`
	SignificanceNote string                     `json:"significance_note,omitempty"`
}

// Summary handles GET /api/v1/cohort/summary
func (h *CohortHandler) Summary(w http.ResponseWriter, r *http.Request) {
	resp := SummaryResponse{
		Summary:          cohort.Summarize(h.merged),
		Significance:     h.significance,
		SignificanceNote: h.sigNote,
	}
	writeJSON(w, http.StatusOK, resp)
}

// Sectors handles GET /api/v1/cohort/sectors
func (h *CohortHandler) Sectors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cohort.SectorGrowthMeans(h.merged))
}

type LeaderboardResponse struct {
	Limit  int                   `json:"limit"`
	Top    []cohort.MergedEntity `json:"top"`
	Bottom []cohort.MergedEntity `json:"bottom"`
}

// Leaderboard handles GET /api/v1/cohort/leaderboard
func (h *CohortHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	resp := LeaderboardResponse{
		Limit:  limit,
		Top:    cohort.TopPerformers(h.merged, limit),
		Bottom: cohort.BottomPerformers(h.merged, limit),
	}
	writeJSON(w, http.StatusOK, resp)
}

// Correlations handles GET /api/v1/cohort/correlations
func (h *CohortHandler) Correlations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cohort.Correlations(h.after))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
