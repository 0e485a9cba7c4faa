package api

import (
	"encoding/json"
	"net/http"

	"github.com/edihlab/maturity/internal/predict"
	"github.com/edihlab/maturity/internal/scoring"
)

type PredictHandler struct {
	model *predict.Model
}

// NewPredictHandler serves the fitted linear model. model may be nil when the
// cohort was too small to fit; the endpoints then answer 503.
func NewPredictHandler(model *predict.Model) *PredictHandler {
	return &PredictHandler{model: model}
}

type PredictRequest struct {
	Dimensions map[string]float64 `json:"dimensions"`
}

type PredictResponse struct {
	PredictedOverallMaturity float64 `json:"predicted_overall_maturity"`
	TrainedOn                int     `json:"trained_on"`
}

// Predict handles POST /api/v1/predict
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if h.model == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "predictor unavailable"})
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	values := make([]float64, scoring.NumDimensions)
	for name, v := range req.Dimensions {
		d := scoring.DimensionIndex(name)
		if d < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown dimension " + name})
			return
		}
		values[d] = v
	}
	for _, name := range scoring.Dimensions {
		if _, ok := req.Dimensions[name]; !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing dimension " + name})
			return
		}
	}

	pred, err := h.model.Predict(values)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, PredictResponse{PredictedOverallMaturity: pred, TrainedOn: h.model.TrainedOn})
}

// Impact handles GET /api/v1/model/impact
func (h *PredictHandler) Impact(w http.ResponseWriter, r *http.Request) {
	if h.model == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "predictor unavailable"})
		return
	}

	order := predict.Descending
	switch v := r.URL.Query().Get("order"); v {
	case "", "desc":
	case "asc":
		order = predict.Ascending
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "order must be asc or desc"})
		return
	}

	writeJSON(w, http.StatusOK, h.model.RankImpact(order))
}
