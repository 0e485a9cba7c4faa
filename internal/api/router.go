package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edihlab/maturity/internal/cohort"
	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/predict"
)

func NewRouter(merged []cohort.MergedEntity, after *panel.Panel, significance *cohort.SignificanceResult, sigNote string, model *predict.Model, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(120))

	ch := NewCohortHandler(merged, after, significance, sigNote)
	ph := NewPredictHandler(model)
	rh := NewReportsHandler(merged)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/cohort/summary", ch.Summary)
		r.Get("/cohort/sectors", ch.Sectors)
		r.Get("/cohort/leaderboard", ch.Leaderboard)
		r.Get("/cohort/correlations", ch.Correlations)

		r.Post("/predict", ph.Predict)
		r.Get("/model/impact", ph.Impact)

		r.Get("/companies/{id}/report", rh.Report)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
