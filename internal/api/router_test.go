package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edihlab/maturity/internal/cohort"
	"github.com/edihlab/maturity/internal/panel"
	"github.com/edihlab/maturity/internal/predict"
	"github.com/edihlab/maturity/internal/scoring"
)

func testCohort(t *testing.T, n int) ([]cohort.MergedEntity, *panel.Panel) {
	t.Helper()
	cfg := panel.DefaultGeneratorConfig()
	weights := scoring.DefaultWeights()
	before, err := panel.Generate(n, panel.SnapshotBefore, 42, cfg, weights)
	if err != nil {
		t.Fatalf("Generate before failed: %v", err)
	}
	after, err := panel.Generate(n, panel.SnapshotAfter, 24, cfg, weights)
	if err != nil {
		t.Fatalf("Generate after failed: %v", err)
	}
	panel.EnforceImprovementFloor(before, after, 5)
	return cohort.Merge(before, after), after
}

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	merged, after := testCohort(t, 30)

	sig, err := cohort.PairedTTest(merged)
	if err != nil {
		t.Fatalf("PairedTTest failed: %v", err)
	}
	model, err := predict.Fit(after)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(merged, after, &sig, "", model, logger)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCohortSummary(t *testing.T) {
	router := setupTestRouter(t)

	w := get(t, router, "/api/v1/cohort/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp SummaryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Companies != 30 {
		t.Errorf("expected 30 companies, got %d", resp.Companies)
	}
	if resp.MeanAfter <= resp.MeanBefore {
		t.Errorf("expected mean after > mean before, got %f vs %f", resp.MeanAfter, resp.MeanBefore)
	}
	if resp.Significance == nil {
		t.Fatal("expected significance result")
	}
	if resp.Significance.Pairs != 30 {
		t.Errorf("expected 30 pairs, got %d", resp.Significance.Pairs)
	}
}

func TestCohortSummaryWithoutSignificance(t *testing.T) {
	merged, after := testCohort(t, 30)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(merged, after, nil, "cohort too small for a paired test", nil, logger)

	w := get(t, router, "/api/v1/cohort/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp SummaryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Significance != nil {
		t.Error("expected no significance result")
	}
	if resp.SignificanceNote == "" {
		t.Error("expected a significance note")
	}
}

func TestCohortSectors(t *testing.T) {
	router := setupTestRouter(t)

	w := get(t, router, "/api/v1/cohort/sectors")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var sectors []cohort.SectorGrowth
	if err := json.NewDecoder(w.Body).Decode(&sectors); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(sectors) == 0 {
		t.Fatal("expected at least one sector")
	}
	total := 0
	for _, s := range sectors {
		total += s.Companies
	}
	if total != 30 {
		t.Errorf("sector company counts sum to %d, expected 30", total)
	}
}

func TestCohortLeaderboard(t *testing.T) {
	router := setupTestRouter(t)

	w := get(t, router, "/api/v1/cohort/leaderboard?limit=5")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp LeaderboardResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Limit != 5 || len(resp.Top) != 5 || len(resp.Bottom) != 5 {
		t.Fatalf("unexpected leaderboard sizes: %d top, %d bottom", len(resp.Top), len(resp.Bottom))
	}
	for i := 1; i < len(resp.Top); i++ {
		if resp.Top[i].OverallAfter > resp.Top[i-1].OverallAfter {
			t.Error("top performers not sorted by overall maturity after")
		}
	}
	if resp.Top[0].OverallAfter < resp.Bottom[0].OverallAfter {
		t.Error("best performer scores below worst performer")
	}
}

func TestCohortLeaderboardDefaultLimit(t *testing.T) {
	router := setupTestRouter(t)

	w := get(t, router, "/api/v1/cohort/leaderboard")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp LeaderboardResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Limit != 10 {
		t.Errorf("expected default limit 10, got %d", resp.Limit)
	}
}

func TestCohortLeaderboardRejectsBadLimit(t *testing.T) {
	router := setupTestRouter(t)

	for _, q := range []string{"limit=0", "limit=-3", "limit=ten"} {
		w := get(t, router, "/api/v1/cohort/leaderboard?"+q)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestCohortCorrelations(t *testing.T) {
	router := setupTestRouter(t)

	w := get(t, router, "/api/v1/cohort/correlations")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var m cohort.CorrelationMatrix
	if err := json.NewDecoder(w.Body).Decode(&m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(m.Columns) != scoring.NumDimensions+1 {
		t.Fatalf("expected %d columns, got %d", scoring.NumDimensions+1, len(m.Columns))
	}
	for i := range m.Values {
		if math.Abs(m.Values[i][i]-1.0) > 1e-9 {
			t.Errorf("diagonal entry %d is %f, expected 1", i, m.Values[i][i])
		}
	}
}

func TestPredict(t *testing.T) {
	router := setupTestRouter(t)

	body := `{"dimensions":{"Strategy":70,"Infrastructure":70,"Human_Centric":70,"Data_Mgmt":70,"Automation_AI":70,"Green_Digital":70}}`
	req := httptest.NewRequest("POST", "/api/v1/predict", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp PredictResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Uniform inputs mean the prediction lands near the input level itself.
	if math.Abs(resp.PredictedOverallMaturity-70) > 5 {
		t.Errorf("prediction %f far from expected 70", resp.PredictedOverallMaturity)
	}
	if resp.TrainedOn != 30 {
		t.Errorf("expected trained_on 30, got %d", resp.TrainedOn)
	}
}

func TestPredictRejectsBadRequests(t *testing.T) {
	router := setupTestRouter(t)

	cases := map[string]string{
		"not json":          `{"dimensions":`,
		"missing dimension": `{"dimensions":{"Strategy":70}}`,
		"unknown dimension": `{"dimensions":{"Strategy":70,"Infrastructure":70,"Human_Centric":70,"Data_Mgmt":70,"Automation_AI":70,"Green_Digital":70,"Blockchain":70}}`,
	}
	for name, body := range cases {
		req := httptest.NewRequest("POST", "/api/v1/predict", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
	}
}

func TestPredictUnavailableWithoutModel(t *testing.T) {
	merged, after := testCohort(t, 30)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(merged, after, nil, "", nil, logger)

	req := httptest.NewRequest("POST", "/api/v1/predict", bytes.NewBufferString(`{"dimensions":{}}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}

	if w := get(t, router, "/api/v1/model/impact"); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestModelImpact(t *testing.T) {
	router := setupTestRouter(t)

	w := get(t, router, "/api/v1/model/impact")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var desc []predict.Impact
	if err := json.NewDecoder(w.Body).Decode(&desc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(desc) != scoring.NumDimensions {
		t.Fatalf("expected %d impacts, got %d", scoring.NumDimensions, len(desc))
	}
	for i := 1; i < len(desc); i++ {
		if math.Abs(desc[i].Coefficient) > math.Abs(desc[i-1].Coefficient) {
			t.Error("default impact ranking not in descending magnitude order")
		}
	}

	w = get(t, router, "/api/v1/model/impact?order=asc")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var asc []predict.Impact
	if err := json.NewDecoder(w.Body).Decode(&asc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if asc[0].Dimension != desc[len(desc)-1].Dimension {
		t.Error("ascending order does not reverse descending order")
	}
}

func TestModelImpactRejectsBadOrder(t *testing.T) {
	router := setupTestRouter(t)

	if w := get(t, router, "/api/v1/model/impact?order=sideways"); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCompanyReport(t *testing.T) {
	router := setupTestRouter(t)

	w := get(t, router, "/api/v1/companies/Company_0001/report")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		CompanyID   string    `json:"company_id"`
		Rank        int       `json:"rank"`
		CohortSize  int       `json:"cohort_size"`
		RadarAxes   []string  `json:"radar_axes"`
		RadarBefore []float64 `json:"radar_before"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.CompanyID != "Company_0001" {
		t.Errorf("unexpected company id %s", resp.CompanyID)
	}
	if resp.Rank < 1 || resp.Rank > resp.CohortSize {
		t.Errorf("rank %d outside [1, %d]", resp.Rank, resp.CohortSize)
	}
	if len(resp.RadarAxes) != scoring.NumDimensions+1 {
		t.Errorf("expected closed radar polygon, got %d axes", len(resp.RadarAxes))
	}
	if resp.RadarBefore[0] != resp.RadarBefore[len(resp.RadarBefore)-1] {
		t.Error("radar series not closed")
	}
}

func TestCompanyReportNotFound(t *testing.T) {
	router := setupTestRouter(t)

	if w := get(t, router, "/api/v1/companies/Company_9999/report"); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestMetricsRouter(t *testing.T) {
	router := NewMetricsRouter()

	if w := get(t, router, "/health"); w.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", w.Code)
	}
	if w := get(t, router, "/metrics"); w.Code != http.StatusOK {
		t.Errorf("metrics: expected 200, got %d", w.Code)
	}
}
