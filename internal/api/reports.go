package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edihlab/maturity/internal/cohort"
	"github.com/edihlab/maturity/internal/report"
)

type ReportsHandler struct {
	merged []cohort.MergedEntity
	byID   map[string]cohort.MergedEntity
	ranks  map[string]int
}

func NewReportsHandler(merged []cohort.MergedEntity) *ReportsHandler {
	byID := make(map[string]cohort.MergedEntity, len(merged))
	for _, e := range merged {
		byID[e.CompanyID] = e
	}
	return &ReportsHandler{merged: merged, byID: byID, ranks: report.Rankings(merged)}
}

// Report handles GET /api/v1/companies/{id}/report
func (h *ReportsHandler) Report(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, ok := h.byID[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "company not found"})
		return
	}
	writeJSON(w, http.StatusOK, report.Build(e, h.ranks[id], len(h.merged)))
}
